package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderLineInput struct {
	PartId           int
	Quantity         int
	UnitPrice        decimal.Decimal
	RequestedDueDate *time.Time
}

// OrderCommitInput is everything one order commit needs. Status may be blank.
type OrderCommitInput struct {
	ProjectId     int
	SupplierId    int
	EngineerName  string
	Status        string
	Lines         []OrderLineInput
	WarehouseId   int
	TransportMode string
	DistanceKm    decimal.NullDecimal
	// RequestKey makes a resubmission return the first commit's result; blank disables it.
	RequestKey string
}

type OrderCommitResult struct {
	POID       int
	DeliveryId int
	Attempts   int
	// Replayed is set when RequestKey matched an earlier commit and nothing was written.
	Replayed bool
}

// Validate applies the checks callers run before committing. Commit itself only rejects
// an order without lines; everything else is left to the database constraints.
func (in OrderCommitInput) Validate() error {
	if in.ProjectId <= 0 {
		return fmt.Errorf("%w: project id must be positive", ErrInvalidInput)
	}
	if in.SupplierId <= 0 {
		return fmt.Errorf("%w: supplier id must be positive", ErrInvalidInput)
	}
	if in.WarehouseId <= 0 {
		return fmt.Errorf("%w: warehouse id must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(in.TransportMode) == "" {
		return fmt.Errorf("%w: transport mode is required", ErrInvalidInput)
	}
	if in.DistanceKm.Valid && in.DistanceKm.Decimal.IsNegative() {
		return fmt.Errorf("%w: distance must not be negative", ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: order has no lines", ErrInvalidInput)
	}
	if _, err := normalizeRequestKey(in.RequestKey); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for i, line := range in.Lines {
		if line.PartId <= 0 {
			return fmt.Errorf("%w: line %d: part id must be positive", ErrInvalidInput, i+1)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d: quantity must be at least 1", ErrInvalidInput, i+1)
		}
		if line.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: line %d: unit price must not be negative", ErrInvalidInput, i+1)
		}
	}
	return nil
}

// InitialReceiptQty is the quantity booked by the automatic first delivery: half the
// ordered quantity rounded half up, so any positive order receives at least one unit.
func InitialReceiptQty(ordered int) int {
	if ordered <= 0 {
		return 0
	}
	return (ordered + 1) / 2
}
