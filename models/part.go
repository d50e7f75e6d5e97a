package models

import "github.com/shopspring/decimal"

type Part struct {
	PartId      int                 `gorm:"primaryKey" json:"part_id"`
	Name        string              `gorm:"size:100;not null" json:"name"`
	Unit        string              `gorm:"size:20" json:"unit"`
	UnitWeight  decimal.NullDecimal `gorm:"type:decimal(10,3)" json:"unit_weight"`
	OrderLines  []PurchaseOrderLine `gorm:"foreignKey:PartId;references:PartId" json:"-"`
	Inventories []Inventory         `gorm:"foreignKey:PartId;references:PartId" json:"-"`
}

func (Part) TableName() string { return "part" }
