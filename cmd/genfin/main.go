package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"genfin/internal/auth"
	"genfin/internal/billing"
	"genfin/internal/config"
	"genfin/internal/events"
	apphttp "genfin/internal/http"
	applog "genfin/internal/log"
	"genfin/internal/rates"
	"genfin/internal/services"
	"genfin/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	logger.Info("Database ready", "path", cfg.SQLiteDBPath)

	// Events are optional: a nil publisher drops every message.
	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Event publisher unavailable, continuing without events", "error", err)
		} else {
			defer publisher.Close()
			logger.Info("Event publisher connected", "exchange", cfg.AMQPExchange)
		}
	}

	manager := auth.NewManager(repo, cfg.SessionTTL)
	engine := billing.NewEngine(repo)
	rateSource := rates.NewFetcher(cfg.RateURL, cfg.RateTimeout, cfg.RateFallback)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:     manager,
		Profiles: repo,
		Entries:  services.NewEntryService(repo, publisher),
		Planner:  services.NewPlannerService(repo),
		Cards:    services.NewCardService(repo, engine, rateSource, publisher),
		Vehicles: services.NewVehicleService(repo),
		Trips:    services.NewTripService(repo),
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Expired sessions pile up slowly; sweep them once an hour.
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				removed, err := manager.CleanExpired(ctx)
				if err != nil {
					slog.Warn("Session cleanup failed", "error", err)
					continue
				}
				if removed > 0 {
					slog.Debug("Expired sessions removed", "count", removed)
				}
			}
		}
	})

	return g.Wait()
}
