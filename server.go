package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/scm_backend/config"
	"bitbucket.org/mmdatafocus/scm_backend/handlers"
	"bitbucket.org/mmdatafocus/scm_backend/middlewares"
	"bitbucket.org/mmdatafocus/scm_backend/models"
	"bitbucket.org/mmdatafocus/scm_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func getRedisClient(redisAddress string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
	return client
}

func corsConfig(settings config.Settings) cors.Config {
	corsConfig := cors.DefaultConfig()
	// Production requires an explicit allowlist; elsewhere every origin is allowed.
	if settings.IsProduction() {
		if len(settings.CorsAllowedOrigins) == 0 {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = settings.CorsAllowedOrigins
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationIdHeader, handlers.IdempotencyKeyHeader)
	corsConfig.AddExposeHeaders("Content-Length", middlewares.CorrelationIdHeader)
	corsConfig.AllowCredentials = true
	return corsConfig
}

func main() {
	settings := config.LoadSettings()
	logger := config.NewLogger(settings.LogLvl, settings.LogFmt)
	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Handlers get their dependencies once the database is up; until then the
	// readiness gate answers 503.
	var ready atomic.Bool
	orders := &handlers.OrderHandler{Logger: logger, Timeout: 30 * time.Second}
	health := &handlers.HealthHandler{}

	r := gin.New()
	r.Use(middlewares.RequestContextMiddleware())
	r.Use(middlewares.ReadinessMiddleware(ready.Load))
	r.Use(cors.New(corsConfig(settings)))
	if settings.RateLimitEnabled {
		rateLimiter := middlewares.NewRateLimiter(getRedisClient(settings.RedisAddress), settings.RateLimitMaxRequests, settings.RateLimitWindow)
		r.Use(rateLimiter.RateLimitMiddleware)
	}
	r.Use(middlewares.ErrorLogger(logger))
	r.Use(gin.Recovery())
	handlers.RegisterRoutes(r, orders, health, middlewares.AuthMiddleware(settings.ApiSecret))

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	db, err := config.ConnectDatabaseWithRetry(settings.Database, 0)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Fatal(err.Error())
	}
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can block tables with DDL; run it as a separate job when SKIP_MIGRATIONS=true.
	if !settings.SkipMigrations {
		if err := models.MigrateTable(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Fatal(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	committer, closeLock := newOrderCommitter(sigCtx, settings, db, logger)
	defer closeLock()
	if settings.PubSub.Enabled() {
		publisher, err := config.ConnectPubSubWithRetry(sigCtx, settings.PubSub, 5)
		if err != nil {
			logger.WithFields(logrus.Fields{"field": "pubsub"}).Fatal(err.Error())
		}
		defer func() { _ = publisher.Close() }()
		committer.Events = publisher
	}

	orders.Committer = committer
	health.DB = db
	ready.Store(true)

	logger.WithFields(logrus.Fields{
		"field":           "http",
		"port":            settings.Port,
		"driver":          settings.Database.Driver,
		"allocation_lock": settings.AllocationLock,
		"events_topic":    settings.PubSub.Topic,
	}).Info("server started")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}

// newOrderCommitter builds the committer from settings; the returned func closes the
// allocation lock's redis client, if one was opened.
func newOrderCommitter(ctx context.Context, settings config.Settings, db *gorm.DB, logger *logrus.Logger) (*workflow.OrderCommitter, func()) {
	committer := workflow.NewOrderCommitter(db, logger)
	if settings.OrderCommitMaxAttempts > 0 {
		committer.MaxAttempts = settings.OrderCommitMaxAttempts
	}
	if settings.OrderCommitRetryBase > 0 {
		committer.BaseDelay = settings.OrderCommitRetryBase
	}

	if settings.AllocationLock != config.AllocationLockRedis {
		return committer, func() {}
	}
	rdb, locker, err := config.ConnectRedisWithRetry(ctx, settings.RedisAddress, 0)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "redis"}).Fatal(err.Error())
	}
	committer.Lock = workflow.NewRedisAllocationLock(locker, logger)
	return committer, func() { _ = rdb.Close() }
}
