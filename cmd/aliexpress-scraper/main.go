package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maltedev/aliexpress-scraper/internal/aliexpress-scraper/api"
	"github.com/maltedev/aliexpress-scraper/internal/aliexpress-scraper/config"
	"github.com/maltedev/aliexpress-scraper/internal/aliexpress-scraper/events"
	"github.com/maltedev/aliexpress-scraper/internal/aliexpress-scraper/scraper"
	"github.com/maltedev/aliexpress-scraper/internal/browser"
	"github.com/maltedev/aliexpress-scraper/internal/database"
	"github.com/maltedev/aliexpress-scraper/internal/extract"
	"github.com/maltedev/aliexpress-scraper/internal/metrics"
	"github.com/maltedev/aliexpress-scraper/internal/ratelimit"
	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = cfg.Browser.Headless
	browserOpts.Timeout = cfg.Scraper.Timeout
	browserOpts.MaxRetries = cfg.Scraper.MaxRetries
	browserOpts.ExecutablePath = cfg.Browser.ExecutablePath
	browserOpts.Locale = cfg.Browser.Locale
	browserOpts.AcceptLanguage = cfg.Browser.AcceptLanguage
	browserOpts.TimezoneID = cfg.Browser.TimezoneID
	browserOpts.ProxyServer = cfg.Browser.ProxyServer

	b, err := browser.New(browserOpts, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer b.Close()

	m := metrics.New()
	extractor := extract.NewOrchestrator(extract.Config{
		CaptureTimeout:  cfg.Scraper.CaptureWait,
		DefaultCurrency: cfg.Scraper.DefaultCurrency,
	}, logger)

	opts := []scraper.Option{
		scraper.WithLimiter(ratelimit.NewAdaptiveRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)),
		scraper.WithMetrics(m),
	}

	var outboxStats api.OutboxStats
	if cfg.Database.Enabled {
		db, outbox, cleanup, err := startPersistence(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		store := database.NewPriceObservationRepository(db, outbox)
		opts = append(opts, scraper.WithPublisher(events.NewPublisher(store, cfg.Redis.Stream, logger)))
		outboxStats = outbox
	}

	service := scraper.NewService(scraper.BrowserOpener(b), extractor, cfg.Scraper.ProductURL, logger, opts...)
	handlers := api.NewHandlers(service, outboxStats, logger)

	routerCfg := api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Scraper.Timeout + cfg.Scraper.CaptureWait + 30*time.Second,
	}
	if cfg.Server.MetricsEnabled {
		routerCfg.Metrics = m.Handler()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(handlers, routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: routerCfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting",
		"port", cfg.Server.Port,
		"persistence", cfg.Database.Enabled,
		"default_currency", cfg.Scraper.DefaultCurrency)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// startPersistence connects Postgres and Redis and runs the outbox relay
// until ctx is cancelled.
func startPersistence(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*database.DB, *database.OutboxRepository, func(), error) {
	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	outbox := database.NewOutboxRepository(db, cfg.Redis.Stream)
	relay := database.NewRelay(outbox, redisClient, logger, database.RelayConfig{
		PollInterval: cfg.Relay.PollInterval,
		BatchSize:    cfg.Relay.BatchSize,
	})

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("relay stopped with error", "error", err)
		}
	}()

	cleanup := func() {
		<-relayDone
		redisClient.Close()
		db.Close()
	}
	return db, outbox, cleanup, nil
}
