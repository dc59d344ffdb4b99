package config

import (
	"os"
	"strconv"
	"strings"

	"featrank/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Data      DataConfig
	Stability StabilityConfig
}

// DatabaseConfig holds optional postgres connection settings; persistence is
// skipped entirely when no URL is configured
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds the report API settings
type ServerConfig struct {
	Port int
}

// DataConfig locates the input dataset
type DataConfig struct {
	Path      string   // xlsx or csv file
	Target    string   // target column name
	IDColumns []string // identifier columns excluded from the registry
}

// StabilityConfig carries the resampling parameters
type StabilityConfig struct {
	Iterations        int
	SubsampleFraction float64
	TrainFraction     float64
	MaxParallel       int64
	Seed              int64
}

// Load builds configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: envInt("PORT", 8080),
		},
		Data: DataConfig{
			Path:      os.Getenv("DATASET_PATH"),
			Target:    envString("TARGET_COLUMN", "traffic_volume"),
			IDColumns: splitCSV(os.Getenv("ID_COLUMNS")),
		},
		Stability: StabilityConfig{
			Iterations:        envInt("STABILITY_ITERATIONS", 10),
			SubsampleFraction: envFloat("SUBSAMPLE_FRACTION", 0.8),
			TrainFraction:     envFloat("TRAIN_FRACTION", 0.75),
			MaxParallel:       int64(envInt("MAX_PARALLEL", 4)),
			Seed:              int64(envInt("RANDOM_SEED", 0)),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Stability.Iterations < 1 {
		return errors.ConfigInvalid("STABILITY_ITERATIONS must be at least 1")
	}
	if c.Stability.SubsampleFraction <= 0 || c.Stability.SubsampleFraction > 1 {
		return errors.ConfigInvalid("SUBSAMPLE_FRACTION must be in (0,1]")
	}
	if c.Stability.TrainFraction <= 0 || c.Stability.TrainFraction >= 1 {
		return errors.ConfigInvalid("TRAIN_FRACTION must be in (0,1)")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.ConfigInvalid("PORT out of range")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
