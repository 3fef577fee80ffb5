package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"turfdesk/internal/api"
	"turfdesk/internal/backend"
	"turfdesk/internal/config"
	"turfdesk/internal/database"
	"turfdesk/internal/domain"
	"turfdesk/internal/events"
	"turfdesk/internal/logging"
	"turfdesk/internal/metrics"
	"turfdesk/internal/repository"
	"turfdesk/internal/service"
	"turfdesk/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	carts, cartDB, err := initCartStore(cfg, redisClient, logger)
	if err != nil {
		return err
	}
	if cartDB != nil {
		defer cartDB.Close()
	}

	data := initBackend(ctx, cfg, redisClient, logger)
	eventBus := initEventBus(logger)

	reports := service.NewReportService(data, cfg.Business, cfg.Exports.Path, logging.Component(logger, "reports"))
	svc := api.Services{
		Desk: service.NewDeskService(data, carts, eventBus, cfg.Billing.SearchLimit, cfg.Billing.DefaultPaymentMode,
			logging.Component(logger, "desk")),
		Spaces:   service.NewSpaceService(data, logging.Component(logger, "spaces")),
		Expenses: service.NewExpenseService(data, logging.Component(logger, "expenses")),
		Reports:  reports,
		Account:  service.NewAccountService(data, reports, logging.Component(logger, "account")),
		Checks:   readinessChecks(redisClient, cartDB),
	}

	if err := startScheduler(ctx, cfg, reports, cartDB, logger); err != nil {
		return err
	}
	startMetrics(ctx, cfg, logger)

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config; running background jobs only")
		<-ctx.Done()
		return nil
	}
	httpServer := api.NewHTTPServer(cfg.API, svc, logger)
	return serve(ctx, httpServer, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, "main"), closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initCartStore picks the configured cart store. A redis store falls back to
// memory when redis is down; the sqlite store is returned separately so the
// scheduler can purge it.
func initCartStore(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) (domain.CartStore, *database.DB, error) {
	ttl := time.Duration(cfg.Cart.TTLMinutes) * time.Minute
	storeLogger := logging.Component(logger, "carts")

	switch cfg.Cart.Store {
	case config.CartStoreSQLite:
		db, err := database.NewDB(cfg.Cart.SQLitePath, ttl, storeLogger)
		if err != nil {
			logger.Error().Err(err).Str("path", cfg.Cart.SQLitePath).Msg("init cart database")
			return nil, nil, err
		}
		return db, db, nil
	case config.CartStoreRedis:
		memory := repository.NewMemoryCartStore(ttl)
		if redisClient == nil {
			logger.Warn().Msg("redis cart store requested but redis is unavailable, using memory")
			return memory, nil, nil
		}
		primary := repository.NewRedisCartStore(redisClient, ttl)
		return repository.NewFailoverCartStore(primary, memory, storeLogger), nil, nil
	default:
		return repository.NewMemoryCartStore(ttl), nil, nil
	}
}

func initBackend(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) *backend.Client {
	client := backend.New(cfg.Backend, logging.Component(logger, "backend"))
	if redisClient != nil {
		client.UseRedisCache(redisClient, time.Duration(cfg.Backend.CacheTTLSeconds)*time.Second)
	}
	if err := client.EnsureSession(ctx); err != nil {
		logger.Warn().Err(err).Msg("data service session not established; log in through the API")
	}
	return client
}

func readinessChecks(redisClient *redis.Client, cartDB *database.DB) map[string]func(context.Context) error {
	checks := make(map[string]func(context.Context) error)
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return repository.Ping(ctx, redisClient) }
	}
	if cartDB != nil {
		checks["cart_db"] = cartDB.PingContext
	}
	return checks
}

// initEventBus wires the audit log: every committed change is logged once.
func initEventBus(logger *zerolog.Logger) *events.EventBus {
	auditLogger := logging.Component(logger, "audit")
	bus := events.NewEventBus(auditLogger)

	audit := events.AuditHandler(auditLogger)
	for _, t := range []string{events.EventBookingCreated, events.EventPaymentRecorded, events.EventBookingCancelled} {
		bus.Subscribe(t, audit)
	}
	return bus
}

func startScheduler(ctx context.Context, cfg *config.Config, reports *service.ReportService, cartDB *database.DB, logger *zerolog.Logger) error {
	var purger worker.CartPurger
	if cartDB != nil {
		purger = cartDB
	}
	scheduler := worker.NewScheduler(reports, purger, worker.RetryPolicy{}, time.Local, logging.Component(logger, "scheduler"))
	if err := scheduler.Start(ctx, cfg.Exports.Schedule); err != nil {
		logger.Error().Err(err).Msg("start scheduler")
		return err
	}
	return nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("turfdesk stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	logger.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
