package domain

import (
	"context"
	"time"
)

// RawReading represents the flat JSON row published by the collector.
// Every measurement is string-encoded exactly as it appears in the gauge
// export; individual fields are optional and independently defaulted.
type RawReading struct {
	Station             string `json:"station,omitempty"`
	Date                string `json:"date"`           // dd.mm.yyyy
	Time                string `json:"time,omitempty"` // HH:mm, hourly exports only
	WaterLevel          string `json:"waterLevel,omitempty"`
	Inflow              string `json:"inflow,omitempty"`
	TotalOutflow        string `json:"totalOutflow,omitempty"`
	PowerHouseDischarge string `json:"powerHouseDischarge,omitempty"`
	SpillwayRelease     string `json:"spillwayRelease,omitempty"`
	Rainfall            string `json:"rainfall,omitempty"`
	LiveStorage         string `json:"liveStorage,omitempty"`
	StoragePercentage   string `json:"storagePercentage,omitempty"`
	LakeWaterTemp       string `json:"lakeWaterTemp,omitempty"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Observation is the normalized form of one telemetry row. Measurements are
// pointers so that presence survives normalization; coerce to zero only at
// use sites that want the zero default.
type Observation struct {
	Station   string    `json:"station"`
	Timestamp time.Time `json:"timestamp"`
	Hourly    bool      `json:"hourly"` // raw row carried a clock time

	WaterLevel          *float64 `json:"water_level,omitempty"`
	Inflow              *float64 `json:"inflow,omitempty"`
	TotalOutflow        *float64 `json:"total_outflow,omitempty"`
	PowerHouseDischarge *float64 `json:"power_house_discharge,omitempty"`
	SpillwayRelease     *float64 `json:"spillway_release,omitempty"`
	Rainfall            *float64 `json:"rainfall,omitempty"`
	LiveStorage         *float64 `json:"live_storage,omitempty"`
	StoragePercentage   *float64 `json:"storage_percentage,omitempty"`
	LakeWaterTemp       *float64 `json:"lake_water_temp,omitempty"`

	// TimestampSubstituted marks rows whose date or time string could not
	// be parsed; Timestamp then holds the moment of parsing.
	TimestampSubstituted bool `json:"timestamp_substituted,omitempty"`
}

// StationType distinguishes dam reservoirs from river gauges.
type StationType string

// Recognized station types.
const (
	StationDam   StationType = "dam"
	StationRiver StationType = "river"
)

// SurfaceAreaModel linearly interpolates reservoir surface area between two
// reference points on the area-level curve.
type SurfaceAreaModel struct {
	LowLevel  float64 `json:"lowLevel"`  // feet MSL
	LowAcres  float64 `json:"lowAcres"`  // surface acres at LowLevel
	HighLevel float64 `json:"highLevel"` // feet MSL
	HighAcres float64 `json:"highAcres"` // surface acres at HighLevel
}

// AcresAt returns the approximate surface area at the given level, clamped
// to the modeled range. Returns 0 when the model is unusable.
func (m SurfaceAreaModel) AcresAt(level float64) float64 {
	if m.HighLevel <= m.LowLevel || m.LowAcres <= 0 || m.HighAcres <= 0 {
		return 0
	}
	if level <= m.LowLevel {
		return m.LowAcres
	}
	if level >= m.HighLevel {
		return m.HighAcres
	}
	frac := (level - m.LowLevel) / (m.HighLevel - m.LowLevel)
	return m.LowAcres + frac*(m.HighAcres-m.LowAcres)
}

// StationConfig describes one dam or river site. Threshold levels and
// capacity stay string-encoded as supplied upstream and are coerced at use.
type StationConfig struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Type             StationType      `json:"type"`
	FRL              string           `json:"FRL"`
	RedLevel         string           `json:"redLevel"`
	OrangeLevel      string           `json:"orangeLevel"`
	BlueLevel        string           `json:"blueLevel"`
	LiveStorageAtFRL string           `json:"liveStorageAtFRL"`
	SurfaceArea      SurfaceAreaModel `json:"surfaceArea"`
}

// Thresholds returns the station's alert levels coerced to numbers.
func (s StationConfig) Thresholds() Thresholds {
	return Thresholds{
		Red:    CoerceNumber(s.RedLevel),
		Orange: CoerceNumber(s.OrangeLevel),
		Blue:   CoerceNumber(s.BlueLevel),
	}
}
