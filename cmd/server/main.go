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

	"github.com/macrolens/basket/config"
	httpDelivery "github.com/macrolens/basket/internal/delivery/http"
	"github.com/macrolens/basket/internal/domain"
	"github.com/macrolens/basket/internal/infrastructure/catalog"
	"github.com/macrolens/basket/internal/infrastructure/logging"
	"github.com/macrolens/basket/internal/infrastructure/storefront"
	"github.com/macrolens/basket/internal/usecase"
	"go.uber.org/zap"
)

// localStore identifies the internal catalog in results
var localStore = domain.StoreRef{ID: "local", Name: "Local Catalog"}

func main() {
	if err := config.LoadEnvFile(); err != nil {
		log.Printf("Warning: %v", err)
	}

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

	logger.Info("starting basket service",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	sources, err := buildSources(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build catalog sources", zap.Error(err))
	}

	resolver := usecase.NewSynonymResolver(usecase.DefaultSynonymGroups, cfg.Matching.Synonyms)
	pipeline := usecase.NewRankingPipeline(sources, resolver, cfg.PipelineConfig(), logger.Named("pipeline"))

	effective := pipeline.Config()
	logger.Info("ranking pipeline ready",
		zap.Int("sources", len(sources)),
		zap.Int("synonyms", resolver.Size()),
		zap.Duration("freshness_window", effective.FreshnessWindow),
		zap.Float64("score_threshold", effective.ScoreThreshold),
		zap.Duration("per_source_timeout", effective.PerSourceTimeout),
		zap.Int("default_max_results", effective.DefaultMaxResults))

	handler := httpDelivery.NewHandler(pipeline, logger.Named("http"))
	router := httpDelivery.SetupRouter(cfg, handler, logger.Named("http"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server exited")
}

// buildSources wires the local catalog and every configured storefront
func buildSources(cfg *config.Config, logger *zap.Logger) ([]domain.CatalogSource, error) {
	store := catalog.NewMemoryStore()
	if cfg.Catalog.Path != "" {
		products, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		for i := range products {
			if products[i].Store.ID == "" {
				products[i].Store = localStore
			}
		}
		if err := catalog.Seed(context.Background(), store, products); err != nil {
			return nil, err
		}
		logger.Info("local catalog loaded", zap.String("path", cfg.Catalog.Path), zap.Int("products", store.Size()))
	} else {
		logger.Warn("no local catalog configured; local source will return nothing")
	}

	sources := []domain.CatalogSource{
		catalog.NewLocalSource(store, localStore, cfg.Matching.FreshnessWindow),
	}

	for _, sf := range cfg.Storefronts {
		client := storefront.NewClient(storefront.ClientConfig{
			BaseURL:           sf.BaseURL,
			APIKey:            sf.APIKey,
			RequestsPerSecond: sf.RequestsPerSecond,
			Burst:             sf.Burst,
			Timeout:           sf.Timeout,
		}, logger.Named("storefront").With(zap.String("store", sf.ID)))

		// Enable debug mode in development environment
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
		}
		if sf.APIKey == "" {
			logger.Warn("storefront has no API key configured", zap.String("store", sf.ID))
		}

		ref := domain.StoreRef{ID: sf.ID, Name: sf.Name, Domain: sf.Domain}
		sources = append(sources, storefront.NewSource(client, ref, sf.Currency, logger.Named("storefront")))
		logger.Info("storefront configured", zap.String("store", sf.ID), zap.String("base_url", sf.BaseURL))
	}

	return sources, nil
}
