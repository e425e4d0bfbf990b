package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "raw-telemetry", cfg.KafkaSourceTopic)
	assert.Equal(t, "river-basin", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, "config/stations.json", cfg.StationsFile)
	assert.Equal(t, "data/preferences.json", cfg.PreferencesFile)
	assert.Equal(t, 0, cfg.StoreMaxHistory)
	assert.Equal(t, time.Duration(0), cfg.StoreMaxAge)
	assert.Equal(t, 256, cfg.ViewCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-telemetry")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("STATIONS_FILE", "/etc/wrb/stations.json")
	t.Setenv("STORE_MAX_HISTORY", "500")
	t.Setenv("STORE_MAX_AGE", "720h")
	t.Setenv("VIEW_CACHE_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-telemetry", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, "/etc/wrb/stations.json", cfg.StationsFile)
	assert.Equal(t, 500, cfg.StoreMaxHistory)
	assert.Equal(t, 720*time.Hour, cfg.StoreMaxAge)
	assert.Equal(t, 64, cfg.ViewCacheSize)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"bad batch size", "BATCH_SIZE", "many"},
		{"zero batch size", "BATCH_SIZE", "0"},
		{"bad flush interval", "BATCH_FLUSH_INTERVAL", "fast"},
		{"bad cache size", "VIEW_CACHE_SIZE", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func writeStations(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadStations(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeStations(t, `[
			{"id":"norfork","name":"Norfork Dam","type":"dam","FRL":"580.00","redLevel":"580","orangeLevel":"575","blueLevel":"570","liveStorageAtFRL":"1,983,000","surfaceArea":{"lowLevel":552,"lowAcres":19600,"highLevel":580,"highAcres":30700}},
			{"id":"buffalo-gilbert","name":"Buffalo River at Gilbert","type":"river","redLevel":"27","orangeLevel":"21","blueLevel":"15"}
		]`)

		stations, err := LoadStations(path)
		require.NoError(t, err)
		require.Len(t, stations, 2)
		assert.Equal(t, "norfork", stations[0].ID)
		assert.Equal(t, "1,983,000", stations[0].LiveStorageAtFRL)
		assert.Equal(t, 19600.0, stations[0].SurfaceArea.LowAcres)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadStations(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("duplicate id", func(t *testing.T) {
		path := writeStations(t, `[{"id":"a","type":"dam"},{"id":"a","type":"dam"}]`)
		_, err := LoadStations(path)
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("unknown type", func(t *testing.T) {
		path := writeStations(t, `[{"id":"a","type":"canal"}]`)
		_, err := LoadStations(path)
		assert.ErrorContains(t, err, "unknown type")
	})

	t.Run("missing id", func(t *testing.T) {
		path := writeStations(t, `[{"type":"dam"}]`)
		_, err := LoadStations(path)
		assert.ErrorContains(t, err, "without id")
	})
}
