package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	t.Run("date only resolves to local midnight", func(t *testing.T) {
		ts, ok := ParseDateTime("15.03.2024", "")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), ts)
	})

	t.Run("date and time", func(t *testing.T) {
		ts, ok := ParseDateTime("15.03.2024", "14:30")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local), ts)
	})

	t.Run("malformed input falls back to now", func(t *testing.T) {
		frozen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(frozen))
		defer SetClock(nil)

		for _, bad := range []string{"bad", "", "15.03", "aa.bb.cccc", "32.01.2024", "15.13.2024"} {
			ts, ok := ParseDateTime(bad, "")
			assert.False(t, ok, "input %q", bad)
			assert.Equal(t, frozen, ts, "input %q", bad)
		}
	})

	t.Run("malformed time falls back to now", func(t *testing.T) {
		frozen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(frozen))
		defer SetClock(nil)

		for _, bad := range []string{"25:00", "12:61", "noon", "14"} {
			ts, ok := ParseDateTime("15.03.2024", bad)
			assert.False(t, ok, "time %q", bad)
			assert.Equal(t, frozen, ts, "time %q", bad)
		}
	})

	t.Run("never panics and stays within the call second", func(t *testing.T) {
		before := time.Now()
		ts, ok := ParseDateTime("bad", "")
		after := time.Now()

		assert.False(t, ok)
		assert.False(t, ts.Before(before))
		assert.False(t, ts.After(after))
	})
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"plain number", "564.3", 564.3},
		{"thousands separators", "1,234.5", 1234.5},
		{"storage capacity grouping", "1,983,000", 1983000},
		{"percent suffix", "42%", 42},
		{"unit suffix", "564.3 ft", 564.3},
		{"negative", "-2.5", -2.5},
		{"leading plus", "+7", 7},
		{"empty", "", 0},
		{"whitespace", "   ", 0},
		{"non-numeric", "N/A", 0},
		{"lone sign", "-", 0},
		{"lone dot", ".", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CoerceNumber(tt.input))
		})
	}
}

func TestCoerceOptional(t *testing.T) {
	t.Run("absent yields nil", func(t *testing.T) {
		assert.Nil(t, CoerceOptional(""))
		assert.Nil(t, CoerceOptional("  "))
	})

	t.Run("present but malformed yields zero, not nil", func(t *testing.T) {
		v := CoerceOptional("N/A")
		require.NotNil(t, v)
		assert.Equal(t, 0.0, *v)
	})

	t.Run("present yields value", func(t *testing.T) {
		v := CoerceOptional("87%")
		require.NotNil(t, v)
		assert.Equal(t, 87.0, *v)
	})
}

func TestParseRawReading(t *testing.T) {
	t.Run("daily row", func(t *testing.T) {
		data := []byte(`{"station":"norfork","date":"15.03.2024","waterLevel":"564.3","inflow":"1,200","totalOutflow":"900","storagePercentage":"87%","liveStorage":"1,728,810"}`)
		obs, err := ParseRawReading(RawEvent{Value: data})

		require.NoError(t, err)
		assert.Equal(t, "norfork", obs.Station)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), obs.Timestamp)
		assert.False(t, obs.Hourly)
		assert.False(t, obs.TimestampSubstituted)
		require.NotNil(t, obs.WaterLevel)
		assert.Equal(t, 564.3, *obs.WaterLevel)
		require.NotNil(t, obs.Inflow)
		assert.Equal(t, 1200.0, *obs.Inflow)
		require.NotNil(t, obs.StoragePercentage)
		assert.Equal(t, 87.0, *obs.StoragePercentage)
		assert.Nil(t, obs.Rainfall)
		assert.Nil(t, obs.LakeWaterTemp)
	})

	t.Run("hourly row", func(t *testing.T) {
		data := []byte(`{"station":"norfork","date":"15.03.2024","time":"14:30","waterLevel":"564.5"}`)
		obs, err := ParseRawReading(RawEvent{Value: data})

		require.NoError(t, err)
		assert.True(t, obs.Hourly)
		assert.Equal(t, time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local), obs.Timestamp)
	})

	t.Run("station falls back to message key", func(t *testing.T) {
		data := []byte(`{"date":"15.03.2024"}`)
		obs, err := ParseRawReading(RawEvent{Key: []byte("bull-shoals"), Value: data})

		require.NoError(t, err)
		assert.Equal(t, "bull-shoals", obs.Station)
	})

	t.Run("missing station rejected", func(t *testing.T) {
		_, err := ParseRawReading(RawEvent{Value: []byte(`{"date":"15.03.2024"}`)})
		assert.ErrorIs(t, err, ErrNoStation)
	})

	t.Run("missing date rejected", func(t *testing.T) {
		_, err := ParseRawReading(RawEvent{Key: []byte("norfork"), Value: []byte(`{"waterLevel":"564.3"}`)})
		assert.ErrorIs(t, err, ErrNoDate)
	})

	t.Run("malformed date substitutes now and flags the row", func(t *testing.T) {
		frozen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(frozen))
		defer SetClock(nil)

		data := []byte(`{"station":"norfork","date":"garbage","waterLevel":"564.3"}`)
		obs, err := ParseRawReading(RawEvent{Value: data})

		require.NoError(t, err)
		assert.True(t, obs.TimestampSubstituted)
		assert.Equal(t, frozen, obs.Timestamp)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawReading(RawEvent{Value: []byte("{invalid json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw reading")
	})
}
