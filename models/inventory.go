package models

// Inventory holds the on-hand quantity of a part in a warehouse.
// Rows are only ever changed through a delta upsert keyed on (warehouse_id, part_id).
type Inventory struct {
	WarehouseId int `gorm:"primaryKey;autoIncrement:false" json:"warehouse_id"`
	PartId      int `gorm:"primaryKey;autoIncrement:false" json:"part_id"`
	Quantity    int `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
}

func (Inventory) TableName() string { return "inventory" }
