package config

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/scm_backend/appctx"
	"bitbucket.org/mmdatafocus/scm_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	s := DatabaseSettings{Host: "db", Port: "5432", User: "scm", Name: "scm", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=scm dbname=scm sslmode=disable", postgresDSN(s))

	s.Password = "pw"
	assert.Equal(t, "host=db port=5432 user=scm password=pw dbname=scm sslmode=disable", postgresDSN(s))

	s.URL = "postgres://u:p@h/db"
	assert.Equal(t, "postgres://u:p@h/db", postgresDSN(s))
}

func TestMySQLDSN(t *testing.T) {
	s := DatabaseSettings{Host: "db", Port: "3306", User: "scm", Password: "pw", Name: "scm"}
	assert.Equal(t, "scm:pw@tcp(db:3306)/scm?parseTime=true", mysqlDSN(s))

	s.Host = "/cloudsql/proj:region:inst"
	assert.Equal(t, "scm:pw@unix(/cloudsql/proj:region:inst)/scm?parseTime=true", mysqlDSN(s))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "scm.db?_foreign_keys=on&_busy_timeout=5000", sqliteDSN("scm.db"))
	assert.Equal(t, "file:scm.db?cache=shared&_foreign_keys=on&_busy_timeout=5000", sqliteDSN("file:scm.db?cache=shared"))
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, err := OpenDatabase(DatabaseSettings{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported DB_DRIVER "oracle"`)
}

func TestConnectDatabaseWithRetry_GivesUp(t *testing.T) {
	_, err := ConnectDatabaseWithRetry(DatabaseSettings{Driver: "oracle"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 attempts")
}

func TestAppendOnlyGuard(t *testing.T) {
	db, err := OpenDatabase(DatabaseSettings{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "scm.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, models.MigrateTable(db))
	require.NoError(t, models.SeedReferenceData(db, models.SampleReferenceData()))
	require.NoError(t, db.Create(&models.PurchaseOrder{
		POID: 1, OrderDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Status: models.PurchaseOrderStatusRequested, ProjectId: 1, SupplierId: 1,
	}).Error)

	err = db.Model(&models.PurchaseOrder{}).Where("poid = ?", 1).Update("status", models.PurchaseOrderStatusConfirmed).Error
	assert.True(t, errors.Is(err, ErrAppendOnlyTable), err)

	err = db.Where("poid = ?", 1).Delete(&models.PurchaseOrder{}).Error
	assert.True(t, errors.Is(err, ErrAppendOnlyTable), err)

	// reference data stays editable
	require.NoError(t, db.Model(&models.Supplier{}).Where("supplier_id = ?", 1).Update("country", "JP").Error)

	ctx := appctx.Set(context.Background(), appctx.ContextKeySkipAppendOnlyGuard, true)
	require.NoError(t, db.WithContext(ctx).Model(&models.PurchaseOrder{}).Where("poid = ?", 1).Update("status", models.PurchaseOrderStatusCancelled).Error)

	var po models.PurchaseOrder
	require.NoError(t, db.Take(&po, "poid = ?", 1).Error)
	assert.Equal(t, models.PurchaseOrderStatusCancelled, po.Status)
}
