package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mkraev/aqwatch/internal/config"
	"github.com/mkraev/aqwatch/internal/historical"
	"github.com/mkraev/aqwatch/internal/logging"
	"github.com/mkraev/aqwatch/internal/sink"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("histload failed: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadHistorical()
	if err != nil {
		return err
	}

	logger, err := logging.New()
	if err != nil {
		return err
	}
	defer logger.Sync()

	records, stats, err := historical.Load(cfg.CSVPath, cfg.CSVSeparator)
	if err != nil {
		return err
	}

	logger.Info("historical file cleaned",
		zap.String("path", cfg.CSVPath),
		zap.Int("parsed", stats.Parsed),
		zap.Int("retained", stats.Retained),
		zap.Int("dropped", stats.Dropped))

	if cfg.DryRun {
		logger.Info("dry-run: skipping insert", zap.Int("candidates", len(records)))
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()

	store, err := sink.New(connectCtx, cfg.MongoURI, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	inserted, err := store.InsertHistorical(ctx, records)
	if err != nil {
		return err
	}

	logger.Info("historical records stored", zap.Int("inserted", inserted))
	return nil
}
