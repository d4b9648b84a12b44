package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/barberops/booking-platform/internal/api/router"
	"github.com/barberops/booking-platform/internal/appointments"
	"github.com/barberops/booking-platform/internal/booklock"
	"github.com/barberops/booking-platform/internal/catalog"
	"github.com/barberops/booking-platform/internal/civiltime"
	appconfig "github.com/barberops/booking-platform/internal/config"
	"github.com/barberops/booking-platform/internal/dashboard"
	"github.com/barberops/booking-platform/internal/notify"
	"github.com/barberops/booking-platform/internal/observability/metrics"
	"github.com/barberops/booking-platform/internal/schedule"
	"github.com/barberops/booking-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	defer pool.Close()

	sqlDB := openSQLDB(cfg.DatabaseURL, logger)
	if sqlDB == nil {
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, booking lock disabled", "error", err)
			redisClient = nil
		}
	}

	clock := civiltime.New(cfg.UTCOffsetHours)
	window := schedule.Window{
		StartHour:       cfg.OpeningHour,
		EndHour:         cfg.ClosingHour,
		IntervalMinutes: cfg.SlotIntervalMinutes,
	}

	metricsHandler, bookingMetrics := setupMetrics()

	catalogRepo := catalog.NewRepository(sqlDB)
	notifySvc := notify.NewService(newEmailSender(ctx, cfg, logger), clock, logger)

	apptSvc := appointments.NewService(appointments.ServiceDeps{
		Repo:     appointments.NewRepository(pool),
		Catalog:  catalogRepo,
		Notifier: notifySvc,
		Locker:   booklock.New(redisClient, cfg.BookingLockTTL, logger),
		Clock:    clock,
		Window:   window,
		Metrics:  bookingMetrics,
		ShopName: cfg.ShopName,
		Logger:   logger,
	})

	r := router.New(&router.Config{
		Logger:              logger,
		CatalogHandler:      catalog.NewHandler(catalogRepo, logger),
		AppointmentsHandler: appointments.NewHandler(apptSvc, clock, logger),
		StatsHandler:        dashboard.NewStatsHandler(dashboard.NewStatsRepository(pool), clock, logger),
		MetricsHandler:      metricsHandler,
		AuthJWTSecret:       cfg.AuthJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupMetrics registers the booking metrics on a dedicated registry and
// returns the scrape handler alongside them.
func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return handler, bookingMetrics
}

// connectPostgresPool opens the pgx pool used by the appointment and
// dashboard repositories. Returns nil when no URL is configured.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// openSQLDB opens the database/sql handle the catalog repository uses.
func openSQLDB(databaseURL string, logger *logging.Logger) *sql.DB {
	if databaseURL == "" {
		return nil
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil
	}
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		_ = db.Close()
		return nil
	}
	return db
}

// newEmailSender picks the configured email provider. Unknown or unconfigured
// providers fall back to the logging stub so bookings never depend on email.
func newEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid not configured, using stub email sender")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Warn("failed to load AWS config, using stub email sender", "error", err)
			break
		}
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}
