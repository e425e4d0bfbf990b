package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStation() StationConfig {
	return StationConfig{
		ID:   "norfork",
		Type: StationDam,
		SurfaceArea: SurfaceAreaModel{
			LowLevel:  552,
			LowAcres:  19600,
			HighLevel: 580,
			HighAcres: 30700,
		},
	}
}

func currentObs(inflow, outflow, level float64) Observation {
	return Observation{
		Station:    "norfork",
		Timestamp:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		WaterLevel: &level,
		Inflow:     &inflow,
		// outflow set below to keep the helper signature flat
		TotalOutflow: &outflow,
	}
}

func TestEstimateTrend(t *testing.T) {
	station := testStation()

	t.Run("small net flow at midpoint level", func(t *testing.T) {
		// 100 CFS over ~25,150 acres: positive but well under 0.01 ft/hr.
		est := EstimateTrend(currentObs(1000, 900, 566), station, nil)

		assert.Equal(t, 100.0, est.NetFlow)
		assert.Greater(t, est.HourlyChangeFeet, 0.0)
		assert.Less(t, est.HourlyChangeFeet, 0.01)
		assert.InDelta(t, est.HourlyChangeFeet*12, est.HourlyChangeInches, 1e-12)
		assert.Equal(t, TrendStable, est.Trend)
		assert.Equal(t, ConfidenceLow, est.Confidence)
	})

	t.Run("large outflow classifies falling", func(t *testing.T) {
		est := EstimateTrend(currentObs(1000, 16000, 566), station, nil)

		assert.Negative(t, est.HourlyChangeFeet)
		assert.Equal(t, TrendFalling, est.Trend)
		assert.Equal(t, ConfidenceHigh, est.Confidence)
	})

	t.Run("medium band", func(t *testing.T) {
		// Target |Δ| between 0.005 and 0.01 ft/hr: ~2000 CFS at midpoint
		// gives 2000*3600/(25150*43560) ≈ 0.0066.
		est := EstimateTrend(currentObs(3000, 1000, 566), station, nil)

		assert.Equal(t, TrendRising, est.Trend)
		assert.Equal(t, ConfidenceMedium, est.Confidence)
	})

	t.Run("missing flows default to zero", func(t *testing.T) {
		level := 566.0
		est := EstimateTrend(Observation{WaterLevel: &level}, station, nil)

		assert.Equal(t, 0.0, est.NetFlow)
		assert.Equal(t, TrendStable, est.Trend)
		assert.Equal(t, ConfidenceLow, est.Confidence)
	})

	t.Run("unusable surface model yields zero rate", func(t *testing.T) {
		est := EstimateTrend(currentObs(1000, 900, 566), StationConfig{}, nil)

		assert.Equal(t, 0.0, est.HourlyChangeFeet)
		assert.Equal(t, 100.0, est.NetFlow)
	})

	t.Run("recent samples override instantaneous estimate", func(t *testing.T) {
		base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		recent := []Observation{
			obsAt("norfork", base, 566.30),
			obsAt("norfork", base.Add(time.Hour), 566.20),
			obsAt("norfork", base.Add(2*time.Hour), 566.10),
		}

		// Instantaneous flow says rising slightly; observed levels fell 0.2 ft.
		est := EstimateTrend(currentObs(1000, 900, 566.10), station, recent)

		assert.Equal(t, TrendFalling, est.Trend)
		assert.Equal(t, ConfidenceHigh, est.Confidence)
		// The flow-derived rate is reported unchanged.
		assert.Greater(t, est.HourlyChangeFeet, 0.0)
	})

	t.Run("swing under threshold does not override", func(t *testing.T) {
		base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		recent := []Observation{
			obsAt("norfork", base, 566.00),
			obsAt("norfork", base.Add(time.Hour), 566.01),
			obsAt("norfork", base.Add(2*time.Hour), 566.02),
		}

		est := EstimateTrend(currentObs(1000, 900, 566.02), station, recent)
		assert.Equal(t, ConfidenceLow, est.Confidence)
	})

	t.Run("fewer than three samples never override", func(t *testing.T) {
		base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		recent := []Observation{
			obsAt("norfork", base, 566.0),
			obsAt("norfork", base.Add(time.Hour), 567.0),
		}

		est := EstimateTrend(currentObs(1000, 900, 567), station, recent)
		assert.Equal(t, ConfidenceLow, est.Confidence)
	})

	t.Run("samples without levels never override", func(t *testing.T) {
		base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		recent := []Observation{
			obsAt("norfork", base, 566.0),
			{Station: "norfork", Timestamp: base.Add(time.Hour)},
			{Station: "norfork", Timestamp: base.Add(2 * time.Hour)},
		}

		est := EstimateTrend(currentObs(1000, 900, 566), station, recent)
		assert.Equal(t, ConfidenceLow, est.Confidence)
	})

	t.Run("idempotent", func(t *testing.T) {
		current := currentObs(1000, 900, 566)
		first := EstimateTrend(current, station, nil)
		second := EstimateTrend(current, station, nil)
		assert.Empty(t, cmp.Diff(first, second))
	})
}

func TestSurfaceAreaModel_AcresAt(t *testing.T) {
	m := testStation().SurfaceArea

	t.Run("midpoint interpolates", func(t *testing.T) {
		assert.InDelta(t, 25150, m.AcresAt(566), 1e-9)
	})

	t.Run("clamped below and above", func(t *testing.T) {
		assert.Equal(t, 19600.0, m.AcresAt(540))
		assert.Equal(t, 30700.0, m.AcresAt(600))
	})

	t.Run("degenerate model", func(t *testing.T) {
		require.Equal(t, 0.0, SurfaceAreaModel{}.AcresAt(566))
		require.Equal(t, 0.0, SurfaceAreaModel{LowLevel: 580, HighLevel: 552, LowAcres: 1, HighAcres: 1}.AcresAt(566))
	})
}
