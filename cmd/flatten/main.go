package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mkraev/aqwatch/internal/config"
	"github.com/mkraev/aqwatch/internal/flatten"
	"github.com/mkraev/aqwatch/internal/logging"
	"github.com/mkraev/aqwatch/internal/models"
	"github.com/mkraev/aqwatch/internal/sink"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("flatten failed: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadFlatten()
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

	docs, err := store.AllLiveSamples(ctx)
	if err != nil {
		return err
	}

	records := flatten.Records(docs)
	logger.Info("live samples flattened",
		zap.Int("read", len(docs)),
		zap.Int("flattened", len(records)))

	return writeRecords(records, cfg.OutputPath)
}

// writeRecords encodes the flattened records to the output path, or stdout
// when none is configured. The file is closed explicitly so a failed flush
// surfaces instead of truncating the artifact.
func writeRecords(records []models.FlattenedLiveRecord, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		if out != os.Stdout {
			out.Close()
		}
		return err
	}

	if out != os.Stdout {
		return out.Close()
	}
	return nil
}
