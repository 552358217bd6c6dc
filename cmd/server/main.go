package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/auroraclub/memberqa/internal/api"
	"github.com/auroraclub/memberqa/internal/corpus"
	"github.com/auroraclub/memberqa/internal/engine"
	"github.com/auroraclub/memberqa/internal/qlog"
	"github.com/auroraclub/memberqa/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	// Local .env files are optional
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	// Initialize corpus provider
	provider, store, err := buildProvider(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize corpus provider", zap.Error(err))
	}
	defer provider.Close()
	if store != nil {
		defer store.Close()
	}

	// Query log
	queries, err := qlog.New(qlog.Config{
		Directory:  cfg.Logging.Directory,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		logger.Fatal("Failed to initialize query log", zap.Error(err))
	}
	defer queries.Close()

	// Answer engine
	weights := engine.DefaultWeights()
	if cfg.Engine.MinRelevance > 0 {
		weights.MinRelevance = cfg.Engine.MinRelevance
	}
	eng := engine.New(weights, logger)

	// HTTP server
	server := api.NewServer(api.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, eng, provider, queries, logger)

	// Background corpus refresh
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cached, ok := provider.(*corpus.CachedProvider); ok {
		go cached.Run(ctx, cfg.Corpus.RefreshInterval)
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}

// buildProvider selects the corpus source. The remote source archives
// every refresh to Postgres when a database is configured; the postgres
// source serves the last archived corpus without an upstream.
func buildProvider(cfg *config.Config, logger *zap.Logger) (corpus.Provider, *corpus.PostgresStore, error) {
	switch cfg.Corpus.Source {
	case "postgres":
		store, err := corpus.NewPostgresStore(databaseConfig(cfg))
		if err != nil {
			return nil, nil, err
		}
		provider := corpus.NewCachedProvider(store, cfg.Corpus.CacheTTL, logger)
		return provider, store, nil

	case "static":
		return corpus.NewStaticProvider(nil), nil, nil

	default:
		fetcher := corpus.NewRemoteFetcher(cfg.Corpus.APIURL, cfg.Corpus.PageSize, cfg.Corpus.FetchTimeout, logger)
		provider := corpus.NewCachedProvider(fetcher, cfg.Corpus.CacheTTL, logger)

		var store *corpus.PostgresStore
		if cfg.Corpus.Database.DBName != "" {
			archived, err := corpus.NewPostgresStore(databaseConfig(cfg))
			if err != nil {
				logger.Warn("Archive database unavailable, continuing without it", zap.Error(err))
			} else {
				provider.WithArchive(archived)
				store = archived
			}
		}
		return provider, store, nil
	}
}

func databaseConfig(cfg *config.Config) corpus.DatabaseConfig {
	return corpus.DatabaseConfig{
		Host:     cfg.Corpus.Database.Host,
		Port:     cfg.Corpus.Database.Port,
		User:     cfg.Corpus.Database.User,
		Password: cfg.Corpus.Database.Password,
		DBName:   cfg.Corpus.Database.DBName,
		SSLMode:  cfg.Corpus.Database.SSLMode,
	}
}
