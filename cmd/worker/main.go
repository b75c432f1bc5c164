package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/app"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/config"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/logger"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/service"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"go.temporal.io/sdk/worker"
)

// The standalone worker ends overdue sessions against the shared Postgres store.
// Live feed events for those sessions are not sent; the dashboard sees them on its
// next poll or through the status cache.
func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatal().Str("store", cfg.StoreDriver).Msg("standalone worker needs the postgres store")
	}

	ctx := context.Background()

	log.Info().Msg("connecting to database")
	store, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	statusCache, closeCache := app.OpenCache(ctx, cfg, log)
	defer closeCache()

	var opts []service.Option
	if statusCache != nil {
		opts = append(opts, service.WithStatusCache(statusCache))
	}
	bookingService := service.NewBookingService(store, log, opts...)

	log.Info().Str("host", cfg.Temporal.Host).Msg("connecting to Temporal")
	c, err := app.DialTemporal(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Temporal")
	}
	defer c.Close()

	w := app.NewWorker(c, bookingService)

	log.Info().Str("taskQueue", models.TaskQueue).Msg("starting Temporal worker")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal().Err(err).Msg("worker failed")
	}
}
