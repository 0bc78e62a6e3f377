// Package sampler maintains an at-least-once, no-duplicate time series of live
// air pollution measurements by polling the measurement endpoint on a fixed
// cadence.
package sampler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mkraev/aqwatch/internal/models"
)

// Fetcher retrieves the current measurement payload for a coordinate pair.
type Fetcher interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (models.AirPollutionResponse, error)
}

// Store is the slice of the sink the sampler depends on.
type Store interface {
	LiveSampleExists(ctx context.Context, timestampUnix int64) (bool, error)
	InsertLiveSample(ctx context.Context, sample models.LiveSample) error
}

// Outcome classifies one poll cycle.
type Outcome int

const (
	// OutcomeStored means a new sample was written to the sink.
	OutcomeStored Outcome = iota
	// OutcomeDuplicate means the sample's epoch timestamp was already stored
	// and the write was skipped.
	OutcomeDuplicate
	// OutcomeFailed means the cycle failed on a fetch, payload or sink error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CycleResult is the explicit result of one poll cycle.
type CycleResult struct {
	Outcome Outcome
	Sample  *models.LiveSample
	Err     error
}

// Options holds the static configuration of a sampler run.
type Options struct {
	Lat float64
	Lon float64
	// Interval is the suspension between cycles.
	Interval time.Duration
	// MaxCycles bounds the run; 0 runs until the context is cancelled.
	MaxCycles int
	// MaxFailures surfaces an error after that many consecutive failed
	// cycles; 0 disables the cap.
	MaxFailures int
	// SnapshotPath, when set, receives a JSON copy of every stored sample.
	SnapshotPath string
	// DryRun skips inserts but still fetches and checks for duplicates.
	DryRun bool
}

// Sampler polls the endpoint and writes deduplicated samples to the store.
type Sampler struct {
	fetcher  Fetcher
	store    Store
	opts     Options
	logger   *zap.Logger
	onStored func(models.LiveSample)
}

// New builds a Sampler. The store handle is passed in by the caller and never
// shared with another writer.
func New(fetcher Fetcher, store Store, opts Options, logger *zap.Logger) *Sampler {
	return &Sampler{fetcher: fetcher, store: store, opts: opts, logger: logger}
}

// OnStored registers a callback invoked after every stored sample.
func (s *Sampler) OnStored(fn func(models.LiveSample)) {
	s.onStored = fn
}

// Cycle performs one synchronous poll: fetch, enrich, dedup-check and insert.
// Failures are captured in the result, never propagated, so the caller decides
// how to continue.
func (s *Sampler) Cycle(ctx context.Context) CycleResult {
	resp, err := s.fetcher.FetchCurrent(ctx, s.opts.Lat, s.opts.Lon)
	if err != nil {
		return CycleResult{Outcome: OutcomeFailed, Err: err}
	}

	sample, err := buildSample(resp)
	if err != nil {
		return CycleResult{Outcome: OutcomeFailed, Err: err}
	}

	exists, err := s.store.LiveSampleExists(ctx, sample.TimestampUnix)
	if err != nil {
		return CycleResult{Outcome: OutcomeFailed, Err: err}
	}
	if exists {
		return CycleResult{Outcome: OutcomeDuplicate, Sample: &sample}
	}

	if !s.opts.DryRun {
		if err := s.store.InsertLiveSample(ctx, sample); err != nil {
			return CycleResult{Outcome: OutcomeFailed, Err: err}
		}
	}

	return CycleResult{Outcome: OutcomeStored, Sample: &sample}
}

// Run executes cycles until the configured count is reached or the context is
// cancelled. The wait between cycles is interruptible; an in-flight insert is
// never interrupted by it.
func (s *Sampler) Run(ctx context.Context) error {
	var failureStreak int

	for cycle := 1; s.opts.MaxCycles == 0 || cycle <= s.opts.MaxCycles; cycle++ {
		result := s.Cycle(ctx)

		switch result.Outcome {
		case OutcomeStored:
			failureStreak = 0
			if s.opts.DryRun {
				s.logger.Info("dry-run: would store sample",
					zap.Int64("timestamp_unix", result.Sample.TimestampUnix),
					zap.String("timestamp", result.Sample.Timestamp))
			} else {
				samplesStored.Inc()
				s.logger.Info("stored sample",
					zap.Int64("timestamp_unix", result.Sample.TimestampUnix),
					zap.String("timestamp", result.Sample.Timestamp),
					zap.Int("aqi", result.Sample.Main.AQI))
				s.writeSnapshot(*result.Sample)
				if s.onStored != nil {
					s.onStored(*result.Sample)
				}
			}
		case OutcomeDuplicate:
			failureStreak = 0
			duplicatesSkipped.Inc()
			s.logger.Info("duplicate sample, skipping",
				zap.Int64("timestamp_unix", result.Sample.TimestampUnix))
		case OutcomeFailed:
			failureStreak++
			cyclesFailed.Inc()
			s.logger.Error("cycle failed",
				zap.Int("cycle", cycle),
				zap.Int("failure_streak", failureStreak),
				zap.Error(result.Err))
			if s.opts.MaxFailures > 0 && failureStreak >= s.opts.MaxFailures {
				return fmt.Errorf("%d consecutive failed cycles, last error: %w", failureStreak, result.Err)
			}
		}

		if s.opts.MaxCycles > 0 && cycle == s.opts.MaxCycles {
			break
		}

		if err := s.wait(ctx); err != nil {
			return err
		}
	}

	return nil
}

// wait suspends until the interval elapses or the context is cancelled.
func (s *Sampler) wait(ctx context.Context) error {
	timer := time.NewTimer(s.opts.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// writeSnapshot drops a JSON copy of the sample for ad hoc inspection. The
// artifact is never read back; a write error does not fail the cycle.
func (s *Sampler) writeSnapshot(sample models.LiveSample) {
	if s.opts.SnapshotPath == "" {
		return
	}

	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		s.logger.Warn("encode snapshot", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.opts.SnapshotPath, data, 0o644); err != nil {
		s.logger.Warn("write snapshot", zap.String("path", s.opts.SnapshotPath), zap.Error(err))
	}
}

// buildSample enriches the single measurement entry of a response: the source
// coordinate is attached, the epoch is copied as the dedup key and a UTC
// string rendering is derived. A response with zero entries is a malformed
// payload, not an empty-but-valid sample.
func buildSample(resp models.AirPollutionResponse) (models.LiveSample, error) {
	if len(resp.List) == 0 {
		return models.LiveSample{}, fmt.Errorf("malformed payload: no measurement entries")
	}

	entry := resp.List[0]
	return models.LiveSample{
		Coord:         resp.Coord,
		Main:          entry.Main,
		Components:    entry.Components,
		Dt:            entry.Dt,
		TimestampUnix: entry.Dt,
		Timestamp:     models.UTCTimestamp(entry.Dt),
	}, nil
}
