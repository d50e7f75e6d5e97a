package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

// AllocatorKey names one "Entity.Column" pair the sequence generator may number.
type AllocatorKey string

const (
	AllocatorKeyPurchaseOrder        AllocatorKey = "PurchaseOrder.POID"
	AllocatorKeyDelivery             AllocatorKey = "Delivery.DeliveryID"
	AllocatorKeyCarbonEmissionRecord AllocatorKey = "CarbonEmissionRecord.RecordID"
)

type allocatorTarget struct {
	table  string
	column string
}

// Only these identifiers are ever interpolated into SQL.
var allocatorTargets = map[AllocatorKey]allocatorTarget{
	AllocatorKeyPurchaseOrder:        {table: "purchase_order", column: "poid"},
	AllocatorKeyDelivery:             {table: "delivery", column: "delivery_id"},
	AllocatorKeyCarbonEmissionRecord: {table: "carbon_emission_record", column: "record_id"},
}

// NextID returns MAX(column)+1 for the allow-listed key, or 1 for an empty table.
// It must run on the transaction that will insert the row. The value is not reserved:
// two concurrent transactions can read the same maximum and one of them will then
// fail on the primary key.
func NextID(tx *gorm.DB, key AllocatorKey) (int, error) {
	target, ok := allocatorTargets[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAllocatorKey, string(key))
	}

	var next int
	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", target.column, target.table)
	if err := tx.Raw(query).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
