package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabase       = "air_quality"
	defaultEndpointURL    = "https://api.openweathermap.org/data/2.5/air_pollution"
	defaultPollInterval   = time.Minute
	defaultRequestTimeout = 30 * time.Second
	defaultMaxFailures    = 10
	defaultCSVSeparator   = ";"
)

// Sink holds connection settings shared by all three pipelines.
type Sink struct {
	MongoURI string
	Database string
}

// Sampler holds runtime configuration for the live sampler.
type Sampler struct {
	Sink
	APIKey         string
	EndpointURL    string
	Lat            float64
	Lon            float64
	PollInterval   time.Duration
	RequestTimeout time.Duration
	MaxCycles      int
	MaxFailures    int
	SnapshotPath   string
	OpsAddr        string
	DryRun         bool
}

// Historical holds runtime configuration for the historical loader.
type Historical struct {
	Sink
	CSVPath      string
	CSVSeparator string
	DryRun       bool
}

// Flatten holds runtime configuration for the flattener.
type Flatten struct {
	Sink
	OutputPath string
}

// LoadSampler reads sampler configuration from environment variables (optionally .env).
func LoadSampler() (Sampler, error) {
	_ = godotenv.Load()

	cfg := Sampler{
		EndpointURL:    defaultEndpointURL,
		PollInterval:   defaultPollInterval,
		RequestTimeout: defaultRequestTimeout,
		MaxFailures:    defaultMaxFailures,
	}

	var err error
	if cfg.Sink, err = loadSink(); err != nil {
		return cfg, err
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv("OWM_API_KEY"))
	if cfg.APIKey == "" {
		return cfg, errors.New("OWM_API_KEY is required")
	}

	if cfg.Lat, err = requireFloat("SAMPLER_LAT"); err != nil {
		return cfg, err
	}
	if cfg.Lon, err = requireFloat("SAMPLER_LON"); err != nil {
		return cfg, err
	}

	if v := strings.TrimSpace(os.Getenv("ENDPOINT_URL")); v != "" {
		cfg.EndpointURL = v
	}

	if cfg.PollInterval, err = durationOr("SAMPLER_INTERVAL", cfg.PollInterval); err != nil {
		return cfg, err
	}
	if cfg.RequestTimeout, err = durationOr("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return cfg, err
	}
	if cfg.MaxCycles, err = intOr("SAMPLER_MAX_CYCLES", 0); err != nil {
		return cfg, err
	}
	if cfg.MaxFailures, err = intOr("SAMPLER_MAX_FAILURES", cfg.MaxFailures); err != nil {
		return cfg, err
	}

	cfg.SnapshotPath = strings.TrimSpace(os.Getenv("SNAPSHOT_PATH"))
	cfg.OpsAddr = strings.TrimSpace(os.Getenv("OPS_ADDR"))
	cfg.DryRun = boolEnv("DRY_RUN")

	return cfg, nil
}

// LoadHistorical reads loader configuration from environment variables (optionally .env).
func LoadHistorical() (Historical, error) {
	_ = godotenv.Load()

	cfg := Historical{CSVSeparator: defaultCSVSeparator}

	var err error
	if cfg.Sink, err = loadSink(); err != nil {
		return cfg, err
	}

	cfg.CSVPath = strings.TrimSpace(os.Getenv("HISTORICAL_CSV"))
	if cfg.CSVPath == "" {
		return cfg, errors.New("HISTORICAL_CSV is required")
	}

	if v := os.Getenv("CSV_SEPARATOR"); v != "" {
		cfg.CSVSeparator = v
	}
	cfg.DryRun = boolEnv("DRY_RUN")

	return cfg, nil
}

// LoadFlatten reads flattener configuration from environment variables (optionally .env).
func LoadFlatten() (Flatten, error) {
	_ = godotenv.Load()

	cfg := Flatten{}

	var err error
	if cfg.Sink, err = loadSink(); err != nil {
		return cfg, err
	}

	cfg.OutputPath = strings.TrimSpace(os.Getenv("FLATTEN_OUTPUT"))

	return cfg, nil
}

func loadSink() (Sink, error) {
	s := Sink{Database: defaultDatabase}

	s.MongoURI = strings.TrimSpace(os.Getenv("MONGO_URI"))
	if s.MongoURI == "" {
		return s, errors.New("MONGO_URI is required")
	}

	if v := strings.TrimSpace(os.Getenv("MONGO_DATABASE")); v != "" {
		s.Database = v
	}

	return s, nil
}

func requireFloat(key string) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intOr(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
}
