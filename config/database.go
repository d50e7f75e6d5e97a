package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// ConnectDatabaseWithRetry opens the configured database, retrying with capped exponential
// backoff. maxAttempts <= 0 retries forever.
func ConnectDatabaseWithRetry(s DatabaseSettings, maxAttempts int) (*gorm.DB, error) {
	var attempt int
	for {
		attempt++
		db, err := OpenDatabase(s)
		if err == nil {
			log.Printf("connected to database (driver=%s attempt=%d)", s.Driver, attempt)
			return db, nil
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			return nil, fmt.Errorf("failed to connect database after %d attempts: %w", attempt, err)
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

// OpenDatabase opens one gorm handle for the configured driver and tunes its pool.
func OpenDatabase(s DatabaseSettings) (*gorm.DB, error) {
	dialector, err := dialectorFor(s)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, initConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if s.Driver == DriverSQLite {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		if s.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(s.MaxOpenConns)
		}
		if s.MaxIdleConns >= 0 {
			sqlDB.SetMaxIdleConns(s.MaxIdleConns)
		}
		if s.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(s.ConnMaxLifetime)
		}
		if s.ConnMaxIdleTime > 0 {
			sqlDB.SetConnMaxIdleTime(s.ConnMaxIdleTime)
		}
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
		log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
	}
	if err := db.Use(NewAppendOnlyGuardPlugin(AppendOnlyTables...)); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// AppendOnlyTables are written once by the order commit and never amended.
var AppendOnlyTables = []string{"purchase_order", "purchase_order_line", "delivery", "delivery_line", "order_request"}

func dialectorFor(s DatabaseSettings) (gorm.Dialector, error) {
	switch s.Driver {
	case DriverPostgres:
		return postgres.Open(postgresDSN(s)), nil
	case DriverMySQL:
		return mysql.Open(mysqlDSN(s)), nil
	case DriverSQLite:
		return sqlite.Open(sqliteDSN(s.SQLitePath)), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", s.Driver)
	}
}

func postgresDSN(s DatabaseSettings) string {
	if s.URL != "" {
		return s.URL
	}
	if s.Password == "" {
		return fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
			s.Host, s.Port, s.User, s.Name, s.SSLMode)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		s.Host, s.Port, s.User, s.Password, s.Name, s.SSLMode)
}

func mysqlDSN(s DatabaseSettings) string {
	if s.URL != "" {
		return s.URL
	}
	network := "tcp"
	address := fmt.Sprintf("%s:%s", s.Host, s.Port)

	// Cloud SQL: DB_HOST=/cloudsql/<CONNECTION_NAME> connects over the proxy's unix socket.
	if strings.HasPrefix(s.Host, "/cloudsql/") {
		network = "unix"
		address = s.Host
	}
	return fmt.Sprintf("%s:%s@%s(%s)/%s?parseTime=true",
		s.User,
		s.Password,
		network,
		address,
		s.Name,
	)
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         WriteGormLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:                  false,
			LogLevel:                  logger.Error,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		},
	)
	return newLogger
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: true,
		TablePrefix:   "",
	}
}

// WriteGormLog logs every statement to GORM_LOG when set, otherwise errors only to stdout.
func WriteGormLog() logger.Interface {
	logFile := os.Getenv("GORM_LOG")
	if logFile == "" {
		return initLog()
	}
	f, err := os.Create(logFile)
	if err != nil {
		return initLog()
	}
	newLogger := logger.New(log.New(io.MultiWriter(f), "\r\n", log.LstdFlags), logger.Config{
		Colorful:      false,
		LogLevel:      logger.Info,
		SlowThreshold: time.Second,
	})
	return newLogger
}
