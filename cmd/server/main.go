package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coinfolio/coinfolio-backend/internal/adapter/httpapi"
	"github.com/coinfolio/coinfolio-backend/internal/adapter/repository/postgres"
	"github.com/coinfolio/coinfolio-backend/internal/cache"
	"github.com/coinfolio/coinfolio-backend/internal/config"
	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/logging"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/portfolio"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/pricing"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/simulation"
)

func main() {
	// 1. Load configuration and logging
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New("coinfolio-api", cfg.Log)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	presets, err := config.LoadPresets(cfg.Simulation.PresetsPath)
	if err != nil {
		log.Fatalf("Failed to load presets: %v", err)
	}

	// 2. Setup database and repositories
	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	tradeRepo := postgres.NewTradeRepository(db)
	priceRepo := postgres.NewPriceRepository(db)
	sharedCache := postgres.NewCacheRepository(db)
	memCache := cache.NewMemory(cfg.Cache.MemoryMaxEntries, time.Now)

	// 3. Initialize services (use cases)
	stablecoins := domain.NewStablecoinSet(cfg.Stablecoins...)
	loader := pricing.NewLoader(priceRepo, stablecoins)

	portfolioService := portfolio.NewService(
		tradeRepo, loader, memCache, sharedCache,
		cfg.Cache.TTL, cfg.Cache.CurveTTL, logger, time.Now,
	)
	simulationService := simulation.NewService(
		loader, sharedCache, presets,
		cfg.Simulation.CommissionRate, cfg.Cache.TTL, logger, time.Now,
	)

	// 4. Start HTTP server
	api := httpapi.NewServer(portfolioService, simulationService, logger)
	srv := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		Handler:      api,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	waitForShutdown(srv, logger)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully drains the server
func waitForShutdown(srv *http.Server, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown forced", "err", err)
	}
}
