package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder header. POID is assigned by the sequence generator, never by the database.
type PurchaseOrder struct {
	POID         int                 `gorm:"column:poid;primaryKey;autoIncrement:false" json:"poid"`
	OrderDate    time.Time           `gorm:"type:date;not null" json:"order_date"`
	Status       string              `gorm:"size:50;not null" json:"status"`
	EngineerName string              `gorm:"size:100" json:"engineer_name"`
	ProjectId    int                 `gorm:"index;not null" json:"project_id"`
	SupplierId   int                 `gorm:"index;not null" json:"supplier_id"`
	Lines        []PurchaseOrderLine `gorm:"foreignKey:POID;references:POID" json:"lines,omitempty"`
	Deliveries   []Delivery          `gorm:"foreignKey:POID;references:POID" json:"deliveries,omitempty"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (PurchaseOrder) TableName() string { return "purchase_order" }

type PurchaseOrderLine struct {
	POID             int             `gorm:"column:poid;primaryKey;autoIncrement:false" json:"poid"`
	LineNo           int             `gorm:"primaryKey;autoIncrement:false" json:"line_no"`
	PartId           int             `gorm:"index;not null" json:"part_id"`
	Quantity         int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPriceAtOrder decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price_at_order"`
	RequestedDueDate *time.Time      `gorm:"type:date" json:"requested_due_date"`
}

func (PurchaseOrderLine) TableName() string { return "purchase_order_line" }
