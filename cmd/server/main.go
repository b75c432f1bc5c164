package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/app"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/config"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/handlers"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/logger"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/router"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/service"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/websocket"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/workflows"
	"go.temporal.io/sdk/client"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	statusCache, closeCache := app.OpenCache(ctx, cfg, log)
	defer closeCache()

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	opts := []service.Option{service.WithPublisher(hub)}
	if statusCache != nil {
		opts = append(opts, service.WithStatusCache(statusCache))
	}

	var temporalClient client.Client
	if cfg.Temporal.Enabled {
		temporalClient, err = app.DialTemporal(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Temporal client")
		}
		defer temporalClient.Close()
		log.Info().Str("host", cfg.Temporal.Host).Dur("grace", cfg.Temporal.Grace).Msg("session timers enabled")
		opts = append(opts, service.WithScheduler(workflows.NewScheduler(temporalClient, cfg.Temporal.Grace)))
	}

	bookingService := service.NewBookingService(store, log, opts...)

	// The memory store lives in this process, so its worker must too
	if temporalClient != nil && cfg.StoreDriver == config.DriverMemory {
		w := app.NewWorker(temporalClient, bookingService)
		if err := w.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start Temporal worker")
		}
		defer w.Stop()
		log.Info().Msg("in-process Temporal worker started")
	}

	if err := bookingService.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("status cache not warmed")
	}

	h := handlers.NewHandler(bookingService, log)
	r := router.SetupRouter(h, hub, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
