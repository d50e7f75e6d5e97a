package models

import "time"

// OrderRequest remembers which order a client request key produced.
// It is written in the same transaction as the order, so a key exists only for committed orders.
type OrderRequest struct {
	RequestKey string    `gorm:"primaryKey;size:255" json:"request_key"`
	POID       int       `gorm:"column:poid;not null;index" json:"poid"`
	DeliveryId int       `gorm:"not null" json:"delivery_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (OrderRequest) TableName() string { return "order_request" }
