package domain

import "math"

// TrendDirection is the three-way direction tag of a level trend.
type TrendDirection string

// Trend directions.
const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// TrendConfidence is the three-way confidence tag of a level trend.
type TrendConfidence string

// Trend confidence levels.
const (
	ConfidenceLow    TrendConfidence = "low"
	ConfidenceMedium TrendConfidence = "medium"
	ConfidenceHigh   TrendConfidence = "high"
)

// Unit conversions and classification thresholds. The 0.01 / 0.005 ft/hr
// confidence cutoffs and the 0.05 ft recent-swing cutoff are the dashboard's
// original tuning, preserved as-is.
const (
	secondsPerHour    = 3600.0
	squareFeetPerAcre = 43560.0
	inchesPerFoot     = 12.0

	trendHighFtPerHr     = 0.01
	trendMediumFtPerHr   = 0.005
	recentSwingFt        = 0.05
	minRecentSamples     = 3
	recentComparisonSpan = 3 // level change measured across the last 3 samples
)

// TrendEstimate is the derived hourly water-level rate of change.
type TrendEstimate struct {
	HourlyChangeFeet   float64         `json:"hourly_change_feet"`
	HourlyChangeInches float64         `json:"hourly_change_inches"`
	Trend              TrendDirection  `json:"trend"`
	Confidence         TrendConfidence `json:"confidence"`
	NetFlow            float64         `json:"net_flow"` // CFS, for display
}

// EstimateTrend derives the hourly level-change rate from the current
// observation's instantaneous flows and the station's surface-area model.
//
// Net flow (inflow − total outflow, zero-defaulted) is converted to a level
// rate through the linearly interpolated surface area at the current level.
// Direction and confidence follow magnitude thresholds. When recent contains
// at least three samples and the observed level swing across the most recent
// three exceeds 0.05 ft, the observed direction wins and confidence is
// raised to high: recent behavior takes precedence over the instantaneous
// estimate when they disagree.
func EstimateTrend(current Observation, station StationConfig, recent []Observation) TrendEstimate {
	netFlow := orZero(current.Inflow) - orZero(current.TotalOutflow)
	level := orZero(current.WaterLevel)

	est := TrendEstimate{NetFlow: netFlow, Trend: TrendStable, Confidence: ConfidenceLow}

	acres := station.SurfaceArea.AcresAt(level)
	if acres > 0 {
		cubicFeetPerHour := netFlow * secondsPerHour
		surfaceAreaSqFt := acres * squareFeetPerAcre
		est.HourlyChangeFeet = cubicFeetPerHour / surfaceAreaSqFt
		est.HourlyChangeInches = est.HourlyChangeFeet * inchesPerFoot
	}

	switch magnitude := math.Abs(est.HourlyChangeFeet); {
	case magnitude > trendHighFtPerHr:
		est.Trend = direction(est.HourlyChangeFeet)
		est.Confidence = ConfidenceHigh
	case magnitude > trendMediumFtPerHr:
		est.Trend = direction(est.HourlyChangeFeet)
		est.Confidence = ConfidenceMedium
	}

	if swing, ok := recentSwing(recent); ok && math.Abs(swing) > recentSwingFt {
		est.Trend = direction(swing)
		est.Confidence = ConfidenceHigh
	}

	return est
}

// recentSwing returns the observed level change across the most recent three
// samples. ok is false when fewer than three samples exist or either
// endpoint lacks a level.
func recentSwing(recent []Observation) (swing float64, ok bool) {
	if len(recent) < minRecentSamples {
		return 0, false
	}
	window := recent[len(recent)-recentComparisonSpan:]
	first := window[0].WaterLevel
	last := window[len(window)-1].WaterLevel
	if first == nil || last == nil {
		return 0, false
	}
	return *last - *first, true
}

func direction(delta float64) TrendDirection {
	switch {
	case delta > 0:
		return TrendRising
	case delta < 0:
		return TrendFalling
	default:
		return TrendStable
	}
}

// orZero applies the coercer's zero default to an optional measurement.
func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
