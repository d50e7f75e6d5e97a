package models

import "time"

type Project struct {
	ProjectId      int             `gorm:"primaryKey" json:"project_id"`
	ShipName       string          `gorm:"size:100;not null" json:"ship_name"`
	ShipType       string          `gorm:"size:50" json:"ship_type"`
	ContractDate   *time.Time      `gorm:"type:date" json:"contract_date"`
	Status         string          `gorm:"size:50" json:"status"`
	PurchaseOrders []PurchaseOrder `gorm:"foreignKey:ProjectId;references:ProjectId" json:"-"`
}

func (Project) TableName() string { return "project" }
