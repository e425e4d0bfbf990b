// Command validate performs end-to-end integrity checks across the mock data
// fixtures: the raw readings JSON, the derived view JSON, and the station
// configuration. It re-runs normalization and derivation and verifies the
// fixtures agree with what the pipeline would produce today.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw-json data/mock/norfork_raw.json \
//	  -view-json data/mock/norfork_view.json \
//	  -station norfork \
//	  -stations config/stations.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lilblessings/White-River-Basin/internal/config"
	"github.com/lilblessings/White-River-Basin/internal/derive"
	"github.com/lilblessings/White-River-Basin/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawJSON := flag.String("raw-json", "", "path to raw readings JSON fixture")
	viewJSON := flag.String("view-json", "", "path to derived view JSON fixture")
	stationID := flag.String("station", "", "station id the fixtures belong to")
	stationsFile := flag.String("stations", "config/stations.json", "station configuration file")
	flag.Parse()

	if *rawJSON == "" || *viewJSON == "" || *stationID == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawJSON, *viewJSON, *stationID, *stationsFile); code != 0 {
		os.Exit(code)
	}
}

func run(rawPath, viewPath, stationID, stationsPath string) int {
	// Fixed clock matching genmock so substituted timestamps reproduce.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.January, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Telemetry Fixture Integrity Validation ===")
	fmt.Println()

	stations, err := config.LoadStations(stationsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load stations: %v\n", err)
		return 1
	}
	var station domain.StationConfig
	var found bool
	for _, st := range stations {
		if st.ID == stationID {
			station, found = st, true
			break
		}
	}
	if !found {
		fmt.Fprintf(os.Stderr, "FATAL: station %q not in %s\n", stationID, stationsPath)
		return 1
	}

	readings, err := loadJSON[[]domain.RawReading](rawPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw fixture: %v\n", err)
		return 1
	}

	view, err := loadJSON[derive.View](viewPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load view fixture: %v\n", err)
		return 1
	}

	observations, normPhase := validateNormalization(readings, stationID)

	phases := []*phase{
		validateRawFixture(readings, stationID),
		normPhase,
		validateDerivation(view, station),
		validateViewParity(view, station, observations),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d normalized, %d in view\n",
		len(readings), len(observations), len(view.Records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// ── Phase 1: Raw Fixture ──
// Every reading carries the expected station and a date string.

func validateRawFixture(readings []domain.RawReading, stationID string) *phase {
	p := &phase{name: "Phase 1: Raw Fixture (readings)"}

	if len(readings) == 0 {
		p.errorf("fixture is empty")
		return p
	}
	for i, r := range readings {
		if r.Station != stationID {
			p.errorf("reading %d: station %q, expected %q", i, r.Station, stationID)
		}
		if r.Date == "" {
			p.errorf("reading %d: missing date", i)
		}
	}
	return p
}

// ── Phase 2: Normalization ──
// Every reading normalizes without rejection, and string-encoded numbers
// coerce the way the dashboard expects.

func validateNormalization(readings []domain.RawReading, stationID string) ([]domain.Observation, *phase) {
	p := &phase{name: "Phase 2: Normalization (coercion)"}

	observations := make([]domain.Observation, 0, len(readings))
	var substituted int
	for i, r := range readings {
		payload, err := json.Marshal(r)
		if err != nil {
			p.errorf("reading %d: marshal: %v", i, err)
			continue
		}
		obs, err := domain.ParseRawReading(domain.RawEvent{Value: payload})
		if err != nil {
			p.errorf("reading %d: rejected: %v", i, err)
			continue
		}
		if obs.Station != stationID {
			p.errorf("reading %d: normalized station %q, expected %q", i, obs.Station, stationID)
		}
		if obs.Timestamp.IsZero() {
			p.errorf("reading %d: zero timestamp after normalization", i)
		}
		if obs.TimestampSubstituted {
			substituted++
		}
		if r.WaterLevel != "" && obs.WaterLevel == nil {
			p.errorf("reading %d: waterLevel %q coerced to nothing", i, r.WaterLevel)
		}
		if r.LiveStorage != "" && obs.LiveStorage == nil {
			p.errorf("reading %d: liveStorage %q coerced to nothing", i, r.LiveStorage)
		}
		observations = append(observations, obs)
	}

	if substituted > 0 {
		fmt.Printf("  Note: %d reading(s) carry substituted timestamps\n", substituted)
	}
	return observations, p
}

// ── Phase 3: Derivation ──
// The view fixture is internally consistent: ordering, axis bounds, zone,
// and trend agree with the station thresholds and the view's own records.

func validateDerivation(view derive.View, station domain.StationConfig) *phase {
	p := &phase{name: "Phase 3: Derivation (view invariants)"}

	checkOrdering(p, view)
	checkAxisBounds(p, view)
	checkZone(p, view, station)
	checkTrend(p, view)

	return p
}

func checkOrdering(p *phase, view derive.View) {
	for i := 1; i < len(view.Records); i++ {
		if view.Records[i].Timestamp.Before(view.Records[i-1].Timestamp) {
			p.errorf("records out of order at %d: %s before %s", i,
				view.Records[i].Timestamp.Format(time.RFC3339),
				view.Records[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	for i, rec := range view.Records {
		if !view.Interval.Contains(rec.Timestamp) {
			p.errorf("record %d at %s outside interval [%s, %s]", i,
				rec.Timestamp.Format(time.RFC3339),
				view.Interval.Start.Format(time.RFC3339),
				view.Interval.End.Format(time.RFC3339))
		}
	}
}

func checkAxisBounds(p *phase, view derive.View) {
	extract := map[string]func(domain.Observation) *float64{
		"waterLevel":   func(o domain.Observation) *float64 { return o.WaterLevel },
		"inflow":       func(o domain.Observation) *float64 { return o.Inflow },
		"totalOutflow": func(o domain.Observation) *float64 { return o.TotalOutflow },
		"liveStorage":  func(o domain.Observation) *float64 { return o.LiveStorage },
	}

	for name, axis := range view.Axes {
		if axis.Low > axis.High {
			p.errorf("axis %s: low %g above high %g", name, axis.Low, axis.High)
		}
		fn, ok := extract[name]
		if !ok {
			continue
		}
		for i, rec := range view.Records {
			v := fn(rec)
			if v == nil {
				continue
			}
			if *v < axis.Low || *v > axis.High {
				p.errorf("axis %s: record %d value %g outside [%g, %g]", name, i, *v, axis.Low, axis.High)
			}
		}
	}
}

func checkZone(p *phase, view derive.View, station domain.StationConfig) {
	validZones := map[domain.Zone]bool{
		domain.ZoneRed: true, domain.ZoneOrange: true,
		domain.ZoneBlue: true, domain.ZoneNormal: true,
	}
	if !validZones[view.Zone] {
		p.errorf("zone %q not in {red, orange, blue, normal}", view.Zone)
		return
	}

	if len(view.Records) == 0 {
		if view.Zone != domain.ZoneNormal {
			p.errorf("empty view has zone %q, expected normal", view.Zone)
		}
		return
	}

	latest := view.Records[len(view.Records)-1]
	if latest.WaterLevel == nil {
		return
	}
	expected := domain.ClassifyZone(*latest.WaterLevel, station.Thresholds())
	if view.Zone != expected {
		p.errorf("zone %q, but latest level %g classifies as %q", view.Zone, *latest.WaterLevel, expected)
	}
}

func checkTrend(p *phase, view derive.View) {
	if view.Trend == nil {
		if len(view.Records) > 0 {
			p.errorf("view has %d records but no trend", len(view.Records))
		}
		return
	}

	t := view.Trend
	validDirections := map[domain.TrendDirection]bool{
		domain.TrendRising: true, domain.TrendFalling: true, domain.TrendStable: true,
	}
	validConfidences := map[domain.TrendConfidence]bool{
		domain.ConfidenceLow: true, domain.ConfidenceMedium: true, domain.ConfidenceHigh: true,
	}
	if !validDirections[t.Trend] {
		p.errorf("trend direction %q not in {rising, falling, stable}", t.Trend)
	}
	if !validConfidences[t.Confidence] {
		p.errorf("trend confidence %q not in {low, medium, high}", t.Confidence)
	}
	if !floatEq(t.HourlyChangeInches, t.HourlyChangeFeet*12) {
		p.errorf("inches %g is not 12x feet %g", t.HourlyChangeInches, t.HourlyChangeFeet)
	}
}

// ── Phase 4: View Parity ──
// Re-deriving from the raw fixture reproduces the stored view.

func validateViewParity(view derive.View, station domain.StationConfig, observations []domain.Observation) *phase {
	p := &phase{name: "Phase 4: View Parity (re-derivation)"}

	rebuilt := derive.BuildView(station, observations, view.Interval, view.GeneratedAt)

	if rebuilt.Station != view.Station {
		p.errorf("station: expected %q, got %q", rebuilt.Station, view.Station)
	}
	if len(rebuilt.Records) != len(view.Records) {
		p.errorf("record count: expected %d, got %d", len(rebuilt.Records), len(view.Records))
	}
	if rebuilt.Zone != view.Zone {
		p.errorf("zone: expected %q, got %q", rebuilt.Zone, view.Zone)
	}

	for name, want := range rebuilt.Axes {
		got, ok := view.Axes[name]
		if !ok {
			p.errorf("axis %s missing from fixture", name)
			continue
		}
		if !floatEq(want.Low, got.Low) || !floatEq(want.High, got.High) {
			p.errorf("axis %s: expected [%g, %g], got [%g, %g]", name, want.Low, want.High, got.Low, got.High)
		}
	}

	switch {
	case rebuilt.Trend == nil && view.Trend != nil:
		p.errorf("fixture has a trend, re-derivation does not")
	case rebuilt.Trend != nil && view.Trend == nil:
		p.errorf("re-derivation has a trend, fixture does not")
	case rebuilt.Trend != nil:
		if rebuilt.Trend.Trend != view.Trend.Trend {
			p.errorf("trend direction: expected %q, got %q", rebuilt.Trend.Trend, view.Trend.Trend)
		}
		if rebuilt.Trend.Confidence != view.Trend.Confidence {
			p.errorf("trend confidence: expected %q, got %q", rebuilt.Trend.Confidence, view.Trend.Confidence)
		}
		if !floatEq(rebuilt.Trend.HourlyChangeFeet, view.Trend.HourlyChangeFeet) {
			p.errorf("trend rate: expected %g, got %g", rebuilt.Trend.HourlyChangeFeet, view.Trend.HourlyChangeFeet)
		}
	}

	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
