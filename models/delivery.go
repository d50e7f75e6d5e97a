package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery is one shipment against a purchase order.
type Delivery struct {
	DeliveryId        int                 `gorm:"primaryKey;autoIncrement:false" json:"delivery_id"`
	POID              int                 `gorm:"column:poid;index;not null" json:"poid"`
	ActualArrivalDate time.Time           `gorm:"type:date;not null" json:"actual_arrival_date"`
	TransportMode     string              `gorm:"size:50;not null" json:"transport_mode"`
	DistanceKm        decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"distance_km"`
	Status            string              `gorm:"size:50;not null" json:"status"`
	Lines             []DeliveryLine      `gorm:"foreignKey:DeliveryId;references:DeliveryId" json:"lines,omitempty"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (Delivery) TableName() string { return "delivery" }

// DeliveryLine mirrors the purchase order line with the same LineNo.
type DeliveryLine struct {
	DeliveryId       int    `gorm:"primaryKey;autoIncrement:false" json:"delivery_id"`
	POID             int    `gorm:"column:poid;primaryKey;autoIncrement:false" json:"poid"`
	LineNo           int    `gorm:"primaryKey;autoIncrement:false" json:"line_no"`
	ReceivedQty      int    `gorm:"not null;check:received_qty >= 0" json:"received_qty"`
	InspectionResult string `gorm:"size:50" json:"inspection_result"`
}

func (DeliveryLine) TableName() string { return "delivery_line" }
