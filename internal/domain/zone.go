package domain

// Zone is the discrete severity classification of a water level against a
// station's configured threshold bands.
type Zone string

// Zones in descending severity.
const (
	ZoneRed    Zone = "red"
	ZoneOrange Zone = "orange"
	ZoneBlue   Zone = "blue"
	ZoneNormal Zone = "normal"
)

// Thresholds holds a station's alert levels in feet, ascending severity from
// blue to red.
type Thresholds struct {
	Red    float64 `json:"red"`
	Orange float64 `json:"orange"`
	Blue   float64 `json:"blue"`
}

// ClassifyZone maps a current level to a zone. Checks run in descending
// priority with inclusive boundaries. Pure function, no hysteresis: a level
// oscillating around a threshold flips zone on every evaluation.
func ClassifyZone(level float64, t Thresholds) Zone {
	switch {
	case level >= t.Red:
		return ZoneRed
	case level >= t.Orange:
		return ZoneOrange
	case level >= t.Blue:
		return ZoneBlue
	default:
		return ZoneNormal
	}
}
