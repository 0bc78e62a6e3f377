package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mkraev/aqwatch/internal/config"
	"github.com/mkraev/aqwatch/internal/logging"
	"github.com/mkraev/aqwatch/internal/openweather"
	"github.com/mkraev/aqwatch/internal/ops"
	"github.com/mkraev/aqwatch/internal/sampler"
	"github.com/mkraev/aqwatch/internal/sink"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("sampler failed: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadSampler()
	if err != nil {
		return err
	}

	logger, err := logging.New()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()

	store, err := sink.New(connectCtx, cfg.MongoURI, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	client := openweather.NewClient(cfg.EndpointURL, cfg.APIKey, cfg.RequestTimeout)

	smp := sampler.New(client, store, sampler.Options{
		Lat:          cfg.Lat,
		Lon:          cfg.Lon,
		Interval:     cfg.PollInterval,
		MaxCycles:    cfg.MaxCycles,
		MaxFailures:  cfg.MaxFailures,
		SnapshotPath: cfg.SnapshotPath,
		DryRun:       cfg.DryRun,
	}, logger)

	if cfg.OpsAddr != "" {
		srv := ops.New(cfg.OpsAddr)
		smp.OnStored(srv.SetLatest)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("ops endpoint failed", zap.Error(err))
			}
		}()
		logger.Info("ops endpoint listening", zap.String("addr", cfg.OpsAddr))
	}

	logger.Info("sampler starting",
		zap.Float64("lat", cfg.Lat),
		zap.Float64("lon", cfg.Lon),
		zap.Duration("interval", cfg.PollInterval),
		zap.Int("max_cycles", cfg.MaxCycles),
		zap.Bool("dry_run", cfg.DryRun))

	if err := smp.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("sampler interrupted, shutting down")
			return nil
		}
		return err
	}

	logger.Info("sampler finished")
	return nil
}
