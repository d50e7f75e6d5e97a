package models

type Supplier struct {
	SupplierId     int             `gorm:"primaryKey" json:"supplier_id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Country        string          `gorm:"size:100" json:"country"`
	ContactEmail   string          `gorm:"size:100" json:"contact_email"`
	PurchaseOrders []PurchaseOrder `gorm:"foreignKey:SupplierId;references:SupplierId" json:"-"`
}

func (Supplier) TableName() string { return "supplier" }
