package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Evan-Linder/AgriProfit/internal/adapter/repository/memory"
	"github.com/Evan-Linder/AgriProfit/internal/adapter/repository/sqlite"
	"github.com/Evan-Linder/AgriProfit/internal/adapter/rest"
	"github.com/Evan-Linder/AgriProfit/internal/config"
	"github.com/Evan-Linder/AgriProfit/internal/db"
	"github.com/Evan-Linder/AgriProfit/internal/domain"
	"github.com/Evan-Linder/AgriProfit/internal/migrations"
	"github.com/Evan-Linder/AgriProfit/internal/scheduler"
	"github.com/Evan-Linder/AgriProfit/internal/usecase/calculator"
	"github.com/Evan-Linder/AgriProfit/internal/usecase/pricing"
	"github.com/Evan-Linder/AgriProfit/internal/usecase/store"
	"github.com/Evan-Linder/AgriProfit/pkg/clients/marketdata"
	"github.com/Evan-Linder/AgriProfit/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New(cfg.Logging.Level))
	defer log.Sync()

	// 2. Storage medium: durable sqlite, degrading to in-memory so the
	// application still works when local persistence is unavailable.
	var medium domain.Medium
	database, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Warn("durable storage unavailable, falling back to in-memory medium", zap.Error(err))
		medium = memory.NewMedium()
	} else {
		defer database.Close()
		if err := migrations.Up(database); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		medium = sqlite.NewMedium(database)
	}

	// 3. Price provider: real feed when configured, local simulator otherwise.
	var provider pricing.QuoteProvider
	if cfg.Pricing.FeedURL != "" {
		provider = marketdata.NewClient(cfg.Pricing.FeedURL, cfg.Pricing.FeedTimeout)
		log.Info("using price feed", zap.String("url", cfg.Pricing.FeedURL))
	} else {
		provider = marketdata.NewSimulator(pricing.FallbackPrices())
		log.Info("using simulated price feed")
	}

	// 4. Services
	calcService := calculator.NewService()
	storeService := store.NewService(medium, logger.Named(log, "store"))
	priceService := pricing.NewService(provider, cfg.Pricing.CacheDuration, logger.Named(log, "pricing"))

	// Honor a previously saved refresh interval before serving requests.
	if settings := storeService.Settings(context.Background()); settings.RefreshIntervalMinutes > 0 {
		priceService.SetCacheDuration(time.Duration(settings.RefreshIntervalMinutes) * time.Minute)
	}

	// 5. Background price refresh
	if cfg.Pricing.RefreshCron != "" {
		sched := scheduler.NewScheduler(cfg.Pricing.RefreshCron, priceService, logger.Named(log, "scheduler"))
		if err := sched.Start(); err != nil {
			log.Error("failed to start price refresh scheduler", zap.Error(err))
		} else {
			defer sched.Stop()
		}
	}

	// 6. HTTP server with graceful shutdown
	apiServer := rest.NewServer(calcService, storeService, priceService, logger.Named(log, "http"))
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: apiServer.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
