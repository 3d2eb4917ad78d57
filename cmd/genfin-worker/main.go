package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"genfin/internal/billing"
	"genfin/internal/config"
	"genfin/internal/events"
	applog "genfin/internal/log"
	"genfin/internal/storage"
	"genfin/internal/worker"
)

const repairInterval = 6 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: "worker",
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	w := worker.New(repo, billing.NewEngine(repo))

	// An initial sweep repairs anything that broke while nothing ran.
	if err := w.RepairBills(ctx); err != nil {
		logger.Warn("Startup repair sweep had failures", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		consumer, err := events.NewConsumer(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer consumer.Close()
		logger.Info("Consuming domain events", "queue", cfg.AMQPQueue)

		g.Go(func() error {
			return consumer.Consume(ctx, w.HandleEvent)
		})
	} else {
		logger.Info("AMQP disabled, running repair sweeps only")
	}

	g.Go(func() error {
		ticker := time.NewTicker(repairInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := w.RepairBills(ctx); err != nil {
					logger.Warn("Repair sweep had failures", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
