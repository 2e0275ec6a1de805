package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-admin-platform/cmd/mainconfig"
	"github.com/wolfman30/clinic-admin-platform/internal/api/router"
	"github.com/wolfman30/clinic-admin-platform/internal/app/bootstrap"
	"github.com/wolfman30/clinic-admin-platform/internal/audit"
	"github.com/wolfman30/clinic-admin-platform/internal/auth"
	appconfig "github.com/wolfman30/clinic-admin-platform/internal/config"
	"github.com/wolfman30/clinic-admin-platform/internal/http/handlers"
	"github.com/wolfman30/clinic-admin-platform/internal/observability/metrics"
	"github.com/wolfman30/clinic-admin-platform/internal/passwords"
	"github.com/wolfman30/clinic-admin-platform/internal/staff"
	"github.com/wolfman30/clinic-admin-platform/internal/validation"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting clinic-admin API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := bootstrap.ConnectPostgres(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := bootstrap.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	handler, cleanup, err := buildHandler(ctx, cfg, pool, logger)
	if err != nil {
		logger.Error("failed to wire application", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Create HTTP server
	srv := newServer(cfg, handler)

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type appMetrics struct {
	http  *metrics.HTTPMetrics
	auth  *metrics.AuthMetrics
	staff *metrics.StaffMetrics
}

// setupMetrics builds a private registry so tests can construct it repeatedly.
func setupMetrics() (http.Handler, *appMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &appMetrics{
		http:  metrics.NewHTTPMetrics(reg),
		auth:  metrics.NewAuthMetrics(reg),
		staff: metrics.NewStaffMetrics(reg),
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// buildHandler wires stores, services and handlers into the router. The
// returned cleanup releases everything it opened.
func buildHandler(ctx context.Context, cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) (http.Handler, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	repo := staff.NewRepository(pool)
	hasher := passwords.NewBcrypt(cfg.BcryptCost)
	if err := bootstrap.SeedAdmin(ctx, repo, hasher, cfg, logger); err != nil {
		return nil, nil, err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	auditor := audit.NewService(sqlDB)

	var closers []func()
	closers = append(closers, func() { _ = sqlDB.Close() })

	var denylist auth.Denylist
	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		denylist = auth.NewRedisDenylist(redisClient)
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	sesClient, err := mainconfig.NewSESClient(ctx, cfg)
	if err != nil {
		logger.Warn("failed to load AWS config for SES", "error", err)
	}
	welcomer := bootstrap.BuildWelcomeNotifier(cfg, sesClient, logger)

	metricsHandler, m := setupMetrics()
	validator := validation.New()
	exposeErrors := !cfg.IsProduction()

	authSvc := auth.NewService(repo, hasher, auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL), auth.ServiceOptions{
		Denylist: denylist,
		Auditor:  auditor,
		Metrics:  m.auth,
		Logger:   logger,
	})
	staffSvc := staff.NewService(repo, hasher, staff.NewClock(loc, logger), staff.Options{
		Auditor:  auditor,
		Welcomer: welcomer,
		Metrics:  m.staff,
		Logger:   logger,
	})

	handler := router.New(&router.Config{
		Logger:             logger,
		Session:            handlers.NewAdminSessionHandler(authSvc, validator, cfg.IsProduction(), logger),
		Doctors:            handlers.NewAdminDoctorsHandler(staffSvc, validator, exposeErrors, logger),
		Receptionists:      handlers.NewAdminReceptionistsHandler(staffSvc, validator, exposeErrors, logger),
		Verifier:           authSvc,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Health:             pool,
		MetricsHandler:     metricsHandler,
		HTTPMetrics:        m.http,
		LoginRateRPS:       cfg.LoginRateLimitRPS,
		LoginBurst:         cfg.LoginRateLimitBurst,
	})

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return handler, cleanup, nil
}
