package models

import (
	"path/filepath"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/scm_backend/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(config.DatabaseSettings{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "scm.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, MigrateTable(db))
	return db
}

func TestMigrateTable_CreatesTables(t *testing.T) {
	db := newMigratedDB(t)

	for _, table := range []string{
		"project", "supplier", "part", "warehouse",
		"purchase_order", "purchase_order_line", "delivery", "delivery_line",
		"inventory", "order_request", "carbon_emission_record",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	// idempotent
	require.NoError(t, MigrateTable(db))
}

func TestSeedReferenceData_KeepsExistingRows(t *testing.T) {
	db := newMigratedDB(t)
	data := SampleReferenceData()
	require.NoError(t, SeedReferenceData(db, data))

	require.NoError(t, db.Model(&Supplier{}).Where("supplier_id = ?", 1).Update("name", "Renamed").Error)
	require.NoError(t, SeedReferenceData(db, data))

	var suppliers []Supplier
	require.NoError(t, db.Order("supplier_id").Find(&suppliers).Error)
	require.Len(t, suppliers, len(data.Suppliers))
	assert.Equal(t, "Renamed", suppliers[0].Name)

	var parts []Part
	require.NoError(t, db.Order("part_id").Find(&parts).Error)
	require.Len(t, parts, len(data.Parts))
	assert.True(t, parts[0].UnitWeight.Valid)
	assert.Equal(t, "480", parts[0].UnitWeight.Decimal.String())
	// weightless part in the same batch is stored as NULL
	assert.False(t, parts[2].UnitWeight.Valid)
}

func TestConstraints(t *testing.T) {
	db := newMigratedDB(t)
	require.NoError(t, SeedReferenceData(db, SampleReferenceData()))
	today := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	err := db.Create(&PurchaseOrder{POID: 1, OrderDate: today, Status: PurchaseOrderStatusRequested, ProjectId: 99, SupplierId: 1}).Error
	assert.Error(t, err, "unknown project")

	require.NoError(t, db.Create(&PurchaseOrder{POID: 1, OrderDate: today, Status: PurchaseOrderStatusRequested, ProjectId: 1, SupplierId: 1}).Error)

	err = db.Create(&PurchaseOrderLine{POID: 1, LineNo: 1, PartId: 1, Quantity: 0, UnitPriceAtOrder: decimal.NewFromInt(1)}).Error
	assert.Error(t, err, "quantity must be positive")

	err = db.Create(&PurchaseOrderLine{POID: 2, LineNo: 1, PartId: 1, Quantity: 1, UnitPriceAtOrder: decimal.NewFromInt(1)}).Error
	assert.Error(t, err, "unknown order")

	err = db.Create(&Inventory{WarehouseId: 1, PartId: 1, Quantity: -1}).Error
	assert.Error(t, err, "inventory never negative")

	err = db.Create(&PurchaseOrder{POID: 1, OrderDate: today, Status: PurchaseOrderStatusRequested, ProjectId: 1, SupplierId: 1}).Error
	assert.Error(t, err, "duplicate poid")
}
