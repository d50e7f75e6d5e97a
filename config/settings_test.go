package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadSettings_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "PORT", "ORDER_COMMIT_MAX_ATTEMPTS", "ORDER_COMMIT_RETRY_BASE_MS", "ALLOCATION_LOCK", "API_SECRET", "PUBSUB_TOPIC", "GO_ENV"} {
		t.Setenv(key, "")
	}

	s := LoadSettings()
	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, DriverPostgres, s.Database.Driver)
	assert.Equal(t, 3, s.OrderCommitMaxAttempts)
	assert.Equal(t, 200*time.Millisecond, s.OrderCommitRetryBase)
	assert.Equal(t, AllocationLockNone, s.AllocationLock)
	assert.Empty(t, s.ApiSecret)
	assert.False(t, s.PubSub.Enabled())
	assert.False(t, s.IsProduction())
}

func TestLoadSettings_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/orders.db")
	t.Setenv("ORDER_COMMIT_MAX_ATTEMPTS", "5")
	t.Setenv("ORDER_COMMIT_RETRY_BASE_MS", "50")
	t.Setenv("ALLOCATION_LOCK", " Redis ")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("GO_ENV", "Production")
	t.Setenv("PUBSUB_TOPIC", "order-events")
	t.Setenv("PUBSUB_PROJECT_ID", "scm-dev")

	s := LoadSettings()
	assert.Equal(t, DriverSQLite, s.Database.Driver)
	assert.Equal(t, "/tmp/orders.db", s.Database.SQLitePath)
	assert.Equal(t, 5, s.OrderCommitMaxAttempts)
	assert.Equal(t, 50*time.Millisecond, s.OrderCommitRetryBase)
	assert.Equal(t, AllocationLockRedis, s.AllocationLock)
	assert.True(t, s.RateLimitEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, s.CorsAllowedOrigins)
	assert.True(t, s.IsProduction())
	assert.True(t, s.PubSub.Enabled())
	assert.Equal(t, "scm-dev", s.PubSub.ProjectID)
}

func TestLoadSettings_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("ORDER_COMMIT_MAX_ATTEMPTS", "three")
	t.Setenv("ORDER_COMMIT_RETRY_BASE_MS", "")

	s := LoadSettings()
	assert.Equal(t, 3, s.OrderCommitMaxAttempts)
	assert.Equal(t, 200*time.Millisecond, s.OrderCommitRetryBase)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, SplitAndTrim(""))
	assert.Nil(t, SplitAndTrim("   "))
	assert.Equal(t, []string{"a"}, SplitAndTrim(" a ,"))
	assert.Equal(t, []string{"a", "b"}, SplitAndTrim("a,,b"))
}
