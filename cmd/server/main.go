package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nani/backend/config"
	httpDelivery "github.com/nani/backend/internal/delivery/http"
	"github.com/nani/backend/internal/domain"
	"github.com/nani/backend/internal/infrastructure/cache"
	"github.com/nani/backend/internal/infrastructure/catalog"
	"github.com/nani/backend/internal/infrastructure/llm"
	"github.com/nani/backend/internal/infrastructure/logging"
	"github.com/nani/backend/internal/infrastructure/metrics"
	"github.com/nani/backend/internal/infrastructure/searchindex"
	"github.com/nani/backend/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting Nani Backend v1.0.0",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache", cfg.Cache.Type),
		zap.String("search", cfg.Search.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Catalog
	products, err := catalog.LoadFile(cfg.Catalog.Path, cfg.Catalog.Limit)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.String("path", cfg.Catalog.Path), zap.Int("products", len(products)))

	// Infrastructure
	store, closeStore, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeStore()

	index, err := newSearchIndex(cfg.Search, m, logger)
	if err != nil {
		return err
	}

	generator := llm.NewClient(llm.Config{
		BaseURL:           cfg.Assistant.BaseURL,
		APIKey:            cfg.Assistant.APIKey,
		Model:             cfg.Assistant.Model,
		Timeout:           cfg.Assistant.Timeout,
		RequestsPerMinute: cfg.Assistant.RequestsPerMinute,
	}, logger)

	// Usecase layer
	matcher := usecase.NewCatalogMatcher(products, logger)
	catalogService := usecase.NewCatalogService(matcher)
	sessions := usecase.NewSessionService(store, catalogService, usecase.SessionServiceConfig{
		TTL: cfg.Cache.SessionTTL,
	}, logger)
	recipes := usecase.NewRecipeService(index, store, matcher, catalogService, usecase.RecipeServiceConfig{
		RecipeIndex:     cfg.Search.RecipeIndex,
		CacheTTL:        cfg.Cache.TTL,
		FallbackRecipes: catalog.FallbackRecipes(),
		OnCacheLookup:   m.RecordCacheLookup,
	}, logger)
	assistant := usecase.NewAssistantService(generator, index, matcher, recipes, sessions, usecase.AssistantServiceConfig{
		ProductIndex:    cfg.Search.ProductIndex,
		OnFallback:      m.RecordFallback,
		OnCartAdditions: m.RecordCartAdditions,
	}, logger)

	handler := httpDelivery.NewHandler(catalogService, recipes, sessions, assistant, logger)
	router := httpDelivery.SetupRouter(cfg, handler, m, prometheus.DefaultGatherer, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited")
	return nil
}

// newCache builds the session and recipe cache selected by cache.type
func newCache(ctx context.Context, cfg config.CacheConfig) (domain.CacheRepository, func(), error) {
	if cfg.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisCache, func() { _ = redisCache.Close() }, nil
	}
	memoryCache := cache.NewMemoryCache()
	return memoryCache, func() { _ = memoryCache.Close() }, nil
}

// newSearchIndex connects to OpenSearch, or returns an index that always
// fails so every lookup falls through to local data
func newSearchIndex(cfg config.SearchConfig, m *metrics.Metrics, logger *zap.Logger) (domain.SearchIndex, error) {
	if cfg.Backend != "opensearch" {
		logger.Warn("search index disabled, using local catalog and fallback recipes")
		return searchindex.Disabled{}, nil
	}
	client, err := searchindex.NewClient(searchindex.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Timeout:   cfg.Timeout,
		OnError:   m.RecordSearchError,
	}, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func init() {
	// Set log flags for bootstrap errors before the zap logger exists
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
