package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bermudabuy/shipworker/config"
	"bermudabuy/shipworker/internal/provider"
	"bermudabuy/shipworker/internal/store"
	"bermudabuy/shipworker/logger"
	"bermudabuy/shipworker/server"
	"bermudabuy/shipworker/services/cache"
	"bermudabuy/shipworker/services/publisher"
	"bermudabuy/shipworker/services/resolver"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	// Create extraction providers
	providers := provider.CreateProviders(cfg, services.Cache)
	log.Info().Int("provider_count", len(providers)).Msg("Created providers")

	// Create the resolver
	r := resolver.New(providers, services.Store, services.Publisher, resolver.Options{
		CacheConfidence: cfg.CacheConfidence,
		GroupSize:       cfg.BatchGroupSize,
		GroupPause:      cfg.BatchPause,
		MaxBatch:        cfg.MaxBatchSize,
	})

	// Create and start the HTTP server
	srv := server.New(cfg.ListenAddr, r)
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverDone:
		if err != nil {
			log.Error().Err(err).Msg("Server exited with error")
		}
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	cancel()
	log.Info().Msg("Shut down gracefully")
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Store     store.Store
	Publisher publisher.Publisher

	redisStore *store.RedisStore
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.redisStore != nil {
		s.redisStore.Close()
	}
}

// initializeServices wires the cache, store, and publisher from configuration.
// Every backing service is optional: without memcache providers skip
// rate-limit blocking, without Redis the store falls back to memory and
// nothing is published.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Using Memcache at %s", cfg.MemcacheAddr)
	}

	storeOpts := store.Options{
		MaxAge:             cfg.CacheMaxAge,
		MinConfidence:      cfg.ConfidenceFloor,
		ConfidenceFloor:    cfg.ConfidenceFloor,
		MinRetailerSamples: cfg.MinRetailerSamples,
		MinCategorySamples: cfg.MinCategorySamples,
	}

	if cfg.RedisAddr != "" {
		redisStore := store.NewRedisStore(cfg.RedisAddr, cfg.RedisDB, storeOpts)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Warn("Redis unreachable, using in-memory store: %v", err)
			redisStore.Close()
			services.Store = store.NewMemoryStore(storeOpts)
		} else {
			services.Store = redisStore
			services.redisStore = redisStore
			services.Publisher = publisher.NewRedisPublisher(
				ctx,
				cfg.RedisAddr,
				cfg.RedisDB,
				cfg.RedisStream,
				cfg.RedisStreamMaxLength,
			)
			logger.Info("Using Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	} else {
		services.Store = store.NewMemoryStore(storeOpts)
		logger.Info("No Redis configured, using in-memory store")
	}

	return services
}
