// Package app wires configuration into the stores, cache and Temporal worker shared
// by the API server and the standalone worker.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/activities"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/cache"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/config"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/database"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/inventory"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/ledger"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/service"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/workflows"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// Catalog returns the configured device catalog, or the built-in one
func Catalog(cfg *config.Config) ([]models.Device, error) {
	if cfg.CatalogPath == "" {
		return inventory.DefaultCatalog(), nil
	}
	return inventory.LoadCatalog(cfg.CatalogPath)
}

// OpenStore builds the configured store. The returned func releases its resources.
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.Store, func(), error) {
	catalog, err := Catalog(cfg)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := database.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := repo.SeedDevices(ctx, catalog); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info().Int("devices", len(catalog)).Msg("postgres store ready")
		return repo, pool.Close, nil

	default:
		registry, err := inventory.NewRegistry(catalog)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Int("devices", len(catalog)).Msg("memory store ready")
		return database.NewMemoryStore(registry, ledger.New()), func() {}, nil
	}
}

// OpenCache connects to Redis when configured. An unreachable server is logged and
// the service runs without a cache.
func OpenCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*cache.StatusCache, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis not available, running without cache")
		rdb.Close()
		return nil, func() {}
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
	return cache.NewStatusCache(rdb), func() { rdb.Close() }
}

// DialTemporal connects to the Temporal frontend
func DialTemporal(cfg *config.Config) (client.Client, error) {
	c, err := client.Dial(client.Options{HostPort: cfg.Temporal.Host})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Temporal: %w", err)
	}
	return c, nil
}

// NewWorker registers the session timer workflow and its activities
func NewWorker(c client.Client, ender activities.SessionEnder) worker.Worker {
	w := worker.New(c, models.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.SessionTimerWorkflow)
	w.RegisterActivity(activities.New(ender))
	return w
}
