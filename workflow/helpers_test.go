package workflow

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/scm_backend/config"
	"bitbucket.org/mmdatafocus/scm_backend/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// newTestDB returns a migrated sqlite database seeded with the sample reference data.
func newTestDB(t *testing.T) *gorm.DB {
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
	require.NoError(t, models.MigrateTable(db))
	require.NoError(t, models.SeedReferenceData(db, models.SampleReferenceData()))
	return db
}

func newTestCommitter(t *testing.T, db *gorm.DB) (*OrderCommitter, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c := NewOrderCommitter(db, logger)
	c.BaseDelay = time.Millisecond
	c.Now = func() time.Time { return fixedNow }
	return c, hook
}

func sampleInput(quantities ...int) OrderCommitInput {
	in := OrderCommitInput{
		ProjectId:     1,
		SupplierId:    1,
		EngineerName:  "J. Park",
		WarehouseId:   1,
		TransportMode: models.TransportModeTruck,
	}
	for i, q := range quantities {
		in.Lines = append(in.Lines, OrderLineInput{
			PartId:    i%3 + 1,
			Quantity:  q,
			UnitPrice: decimal.NewFromInt(100),
		})
	}
	return in
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func inventoryQty(t *testing.T, db *gorm.DB, warehouseId, partId int) int {
	t.Helper()
	var inv models.Inventory
	err := db.Where("warehouse_id = ? AND part_id = ?", warehouseId, partId).Take(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	require.NoError(t, err)
	return inv.Quantity
}

func countMessages(hook *test.Hook, msg string) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			n++
		}
	}
	return n
}

func countMessagePrefix(hook *test.Hook, prefix string) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if len(e.Message) >= len(prefix) && e.Message[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func deadlockError() error {
	return &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
}

// flakyInventory fails the first failures calls with err, then delegates to InventoryWriter.
type flakyInventory struct {
	failures int
	err      error
	calls    int
}

func (f *flakyInventory) AddInventory(tx *gorm.DB, warehouseId, partId, delta int) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return InventoryWriter{}.AddInventory(tx, warehouseId, partId, delta)
}
