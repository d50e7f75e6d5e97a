package workflow

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInitialReceiptQty(t *testing.T) {
	tests := []struct {
		ordered, want int
	}{
		{-3, 0},
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{10, 5},
		{11, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InitialReceiptQty(tt.ordered), "ordered=%d", tt.ordered)
	}
}

func TestOrderCommitInputValidate(t *testing.T) {
	valid := sampleInput(2, 3)
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(in *OrderCommitInput)
		wantMsg string
	}{
		{"project", func(in *OrderCommitInput) { in.ProjectId = 0 }, "project id must be positive"},
		{"supplier", func(in *OrderCommitInput) { in.SupplierId = -1 }, "supplier id must be positive"},
		{"warehouse", func(in *OrderCommitInput) { in.WarehouseId = 0 }, "warehouse id must be positive"},
		{"transport", func(in *OrderCommitInput) { in.TransportMode = "  " }, "transport mode is required"},
		{"distance", func(in *OrderCommitInput) {
			in.DistanceKm = decimal.NewNullDecimal(decimal.NewFromInt(-1))
		}, "distance must not be negative"},
		{"no lines", func(in *OrderCommitInput) { in.Lines = nil }, "order has no lines"},
		{"part", func(in *OrderCommitInput) { in.Lines[1].PartId = 0 }, "line 2: part id must be positive"},
		{"quantity", func(in *OrderCommitInput) { in.Lines[0].Quantity = 0 }, "line 1: quantity must be at least 1"},
		{"price", func(in *OrderCommitInput) { in.Lines[1].UnitPrice = decimal.NewFromInt(-5) }, "line 2: unit price must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput(2, 3)
			tt.mutate(&in)
			err := in.Validate()
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestOrderCommitInputValidate_ZeroPriceAllowed(t *testing.T) {
	in := sampleInput(1)
	in.Lines[0].UnitPrice = decimal.Zero
	assert.NoError(t, in.Validate())
}
