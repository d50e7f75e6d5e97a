package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CarbonEmissionRecord ids share the allocator with orders and deliveries.
type CarbonEmissionRecord struct {
	RecordId   int             `gorm:"primaryKey;autoIncrement:false" json:"record_id"`
	ProjectId  int             `gorm:"index;not null" json:"project_id"`
	RecordDate time.Time       `gorm:"type:date;not null" json:"record_date"`
	Source     string          `gorm:"size:50" json:"source"`
	Co2eKg     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"co2e_kg"`
	CalcMethod string          `gorm:"size:100" json:"calc_method"`
}

func (CarbonEmissionRecord) TableName() string { return "carbon_emission_record" }
