package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-clan/readiness-engine/internal/api"
	"github.com/terra-clan/readiness-engine/internal/catalog"
	"github.com/terra-clan/readiness-engine/internal/config"
	"github.com/terra-clan/readiness-engine/internal/events"
	"github.com/terra-clan/readiness-engine/internal/generation"
	"github.com/terra-clan/readiness-engine/internal/ingestion"
	"github.com/terra-clan/readiness-engine/internal/services"
	"github.com/terra-clan/readiness-engine/internal/simulator"
	"github.com/terra-clan/readiness-engine/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("starting readiness-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Load seed catalog
	store := catalog.NewStore()
	if err := store.LoadFromDir(cfg.Catalog.Dir); err != nil {
		slog.Warn("failed to load catalog from dir", "dir", cfg.Catalog.Dir, "error", err)
	}
	stats := store.Stats()
	slog.Info("catalog loaded", "scenarios", stats.Scenarios, "resources", stats.Resources)

	registry := services.NewRegistry()
	opts := []simulator.Option{
		simulator.WithThresholds(cfg.Assessment.HeuristicThreshold, cfg.Assessment.AssistedThreshold),
	}

	// Search index
	if cfg.Database.DSN != "" {
		index, err := storage.NewPostgresStore(initCtx, storage.PostgresConfig{DSN: cfg.Database.DSN})
		if err != nil {
			slog.Error("failed to connect search index", "error", err)
			os.Exit(1)
		}
		slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
		if err := storage.RunMigrations(initCtx, index.Pool(), cfg.Database.MigrationsDir); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		registry.Register("postgres", index)
		opts = append(opts, simulator.WithSearchIndex(index))
	}

	// Issued scenario cache
	cache, err := newIssuedCache(initCtx, cfg.Redis)
	if err != nil {
		slog.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Address != "" {
		registry.Register("redis", cache)
	}
	opts = append(opts, simulator.WithIssuedCache(cache))

	// Result events
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		if err != nil {
			slog.Error("failed to create kafka publisher", "error", err)
			os.Exit(1)
		}
		opts = append(opts, simulator.WithPublisher(publisher))
	}

	// Generation collaborator
	if cfg.GenAI.APIKey != "" {
		model, err := generation.NewGenAIModel(initCtx, cfg.GenAI.APIKey, cfg.GenAI.Model)
		if err != nil {
			slog.Error("failed to create genai client", "error", err)
			os.Exit(1)
		}
		gen := generation.New(model)
		opts = append(opts, simulator.WithGenerator(gen), simulator.WithAssessor(gen))
		slog.Info("generation enabled", "model", model.Name())
	} else {
		slog.Info("generation disabled, using heuristic scoring")
	}

	engine := simulator.New(store, opts...)

	// Ingestion sources
	var sources []ingestion.Source
	if cfg.Ingestion.SQLDSN != "" {
		src, err := ingestion.OpenSQLSource(cfg.Ingestion.SQLDSN)
		if err != nil {
			slog.Error("failed to open sql ingestion source", "error", err)
			os.Exit(1)
		}
		defer src.Close()
		sources = append(sources, src)
	}
	if cfg.Ingestion.S3Bucket != "" {
		src, err := ingestion.NewS3Source(initCtx, cfg.Ingestion.S3Bucket, cfg.Ingestion.S3ScenariosKey, cfg.Ingestion.S3ResourcesKey)
		if err != nil {
			slog.Error("failed to create s3 ingestion source", "error", err)
			os.Exit(1)
		}
		sources = append(sources, src)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(sources) > 0 {
		poller := ingestion.NewPoller(engine, cfg.Ingestion.Interval, sources...)
		poller.Start(ctx)
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, engine, registry)
	httpServer := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     server.Router(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Stop the ingestion poller
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := engine.Close(); err != nil {
		slog.Error("engine close error", "error", err)
	}

	slog.Info("readiness-engine stopped")
}

// newIssuedCache connects to Redis when an address is configured and
// otherwise keeps issued scenarios in memory. Both honour the configured TTL.
func newIssuedCache(ctx context.Context, cfg config.RedisConfig) (storage.IssuedCache, error) {
	if cfg.Address == "" {
		return storage.NewMemoryCache(cfg.TTL), nil
	}
	cache, err := storage.NewRedisCache(ctx, storage.RedisConfig{
		Address:  cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		return nil, err
	}
	return cache, nil
}
