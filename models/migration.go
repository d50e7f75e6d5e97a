package models

import "gorm.io/gorm"

// MigrateTable creates or updates every table the order pipeline touches.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Project{}, &Supplier{}, &Part{}, &Warehouse{},
		&PurchaseOrder{}, &PurchaseOrderLine{},
		&Delivery{}, &DeliveryLine{},
		&Inventory{},
		&OrderRequest{},
		&CarbonEmissionRecord{},
	)
}
