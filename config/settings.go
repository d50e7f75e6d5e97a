package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Settings is the process configuration read from .env and the environment.
type Settings struct {
	Port   string
	GoEnv  string
	LogLvl string
	LogFmt string

	Database DatabaseSettings

	RedisAddress string
	PubSub       PubSubSettings

	OrderCommitMaxAttempts int
	OrderCommitRetryBase   time.Duration
	AllocationLock         string

	RateLimitEnabled     bool
	RateLimitMaxRequests int64
	RateLimitWindow      time.Duration
	CorsAllowedOrigins   []string

	SkipMigrations bool

	// ApiSecret signs API bearer tokens; empty disables authentication.
	ApiSecret string
}

type DatabaseSettings struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	SQLitePath string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadSettings loads .env (if present) and returns the resolved settings.
func LoadSettings() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	s := Settings{
		Port:   getEnv("PORT", "8080"),
		GoEnv:  getEnv("GO_ENV", "development"),
		LogLvl: getEnv("LOG_LEVEL", "info"),
		LogFmt: getEnv("LOG_FORMAT", "json"),
		Database: DatabaseSettings{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "scm"),
			Password:        os.Getenv("DB_PASSWORD"),
			Name:            getEnv("DB_NAME", "scm"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			SQLitePath:      getEnv("SQLITE_PATH", "scm.db"),
			MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second,
		},
		RedisAddress:           getEnv("REDIS_ADDRESS", "localhost:6379"),
		PubSub:                 loadPubSubSettings(),
		OrderCommitMaxAttempts: intFromEnv("ORDER_COMMIT_MAX_ATTEMPTS", 3),
		OrderCommitRetryBase:   time.Duration(intFromEnv("ORDER_COMMIT_RETRY_BASE_MS", 200)) * time.Millisecond,
		AllocationLock:         AllocationLockMode(),
		RateLimitEnabled:       boolFromEnv("RATE_LIMIT_ENABLED"),
		RateLimitMaxRequests:   int64(intFromEnv("RATE_LIMIT_MAX_REQUESTS", 600)),
		RateLimitWindow:        time.Duration(intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		CorsAllowedOrigins:     SplitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SkipMigrations:         boolFromEnv("SKIP_MIGRATIONS"),
		ApiSecret:              os.Getenv("API_SECRET"),
	}
	return s
}

// IsProduction reports whether GO_ENV is "production".
func (s Settings) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(s.GoEnv), "production")
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// SplitAndTrim splits a comma separated list, dropping blank entries.
func SplitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
