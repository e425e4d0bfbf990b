// Package config loads service settings from environment variables and the
// stations file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lilblessings/White-River-Basin/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	StationsFile    string
	PreferencesFile string

	StoreMaxHistory int
	StoreMaxAge     time.Duration
	ViewCacheSize   int
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	// Best effort; absence of a .env file is the normal case in production.
	_ = godotenv.Load()

	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	flushInterval, err := envDuration("BATCH_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	storeMaxAge, err := envDuration("STORE_MAX_AGE", 0)
	if err != nil {
		return nil, err
	}
	batchSize, err := envInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	storeMaxHistory, err := envInt("STORE_MAX_HISTORY", 0)
	if err != nil {
		return nil, err
	}
	viewCacheSize, err := envInt("VIEW_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-telemetry"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "river-basin"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		StationsFile:       envOrDefault("STATIONS_FILE", "config/stations.json"),
		PreferencesFile:    envOrDefault("PREFERENCES_FILE", "data/preferences.json"),
		StoreMaxHistory:    storeMaxHistory,
		StoreMaxAge:        storeMaxAge,
		ViewCacheSize:      viewCacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}
	if cfg.ViewCacheSize <= 0 {
		return nil, errors.New("VIEW_CACHE_SIZE must be positive")
	}

	return cfg, nil
}

// LoadStations reads the station configuration file: a JSON array of
// StationConfig entries.
func LoadStations(path string) ([]domain.StationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stations file: %w", err)
	}

	var stations []domain.StationConfig
	if err := json.Unmarshal(data, &stations); err != nil {
		return nil, fmt.Errorf("parse stations file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(stations))
	for _, st := range stations {
		if st.ID == "" {
			return nil, fmt.Errorf("stations file %s: entry without id", path)
		}
		if _, dup := seen[st.ID]; dup {
			return nil, fmt.Errorf("stations file %s: duplicate station %q", path, st.ID)
		}
		seen[st.ID] = struct{}{}
		if st.Type != domain.StationDam && st.Type != domain.StationRiver {
			return nil, fmt.Errorf("stations file %s: station %q has unknown type %q", path, st.ID, st.Type)
		}
	}
	return stations, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitBrokers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
