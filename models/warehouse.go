package models

type Warehouse struct {
	WarehouseId int         `gorm:"primaryKey" json:"warehouse_id"`
	Name        string      `gorm:"size:100;not null" json:"name"`
	Location    string      `gorm:"size:255" json:"location"`
	Inventories []Inventory `gorm:"foreignKey:WarehouseId;references:WarehouseId" json:"-"`
}

func (Warehouse) TableName() string { return "warehouse" }
