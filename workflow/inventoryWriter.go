package workflow

import (
	"bitbucket.org/mmdatafocus/scm_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryWriter applies stock deltas with a single upsert statement, so concurrent
// receipts for the same (warehouse, part) never lose an increment.
type InventoryWriter struct{}

func (InventoryWriter) AddInventory(tx *gorm.DB, warehouseId, partId, delta int) error {
	row := models.Inventory{WarehouseId: warehouseId, PartId: partId, Quantity: delta}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "warehouse_id"}, {Name: "part_id"}},
		DoUpdates: clause.Set{{Column: clause.Column{Name: "quantity"}, Value: inventoryMergeExpr(tx)}},
	}).Create(&row).Error
}

func inventoryMergeExpr(tx *gorm.DB) clause.Expr {
	if tx.Dialector.Name() == "mysql" {
		return gorm.Expr("quantity + VALUES(quantity)")
	}
	return gorm.Expr("inventory.quantity + excluded.quantity")
}
