// Command genmock reads a historical gauge export CSV and generates mock
// data fixtures for the test suites. It runs the actual normalization and
// derivation packages so the fixtures match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/norfork_2026.csv \
//	  -station norfork \
//	  -stations config/stations.json \
//	  -raw-out data/mock/norfork_raw.json \
//	  -view-out data/mock/norfork_view.json
//
// With -publish, the raw readings are also written to the source topic so an
// integration environment can be seeded from the same fixture.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	kafkaadapter "github.com/lilblessings/White-River-Basin/internal/adapter/kafka"
	"github.com/lilblessings/White-River-Basin/internal/config"
	"github.com/lilblessings/White-River-Basin/internal/derive"
	"github.com/lilblessings/White-River-Basin/internal/domain"
	"github.com/lilblessings/White-River-Basin/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "gauge export CSV file")
	stationID := flag.String("station", "", "station id the readings belong to")
	stationsFile := flag.String("stations", "config/stations.json", "station configuration file")
	rawOut := flag.String("raw-out", "", "output path for raw readings JSON fixture")
	viewOut := flag.String("view-out", "", "output path for derived view JSON fixture")
	publish := flag.Bool("publish", false, "also publish the raw readings to Kafka")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers, comma separated (with -publish)")
	topic := flag.String("topic", "raw-telemetry", "Kafka topic (with -publish)")
	flag.Parse()

	if *csvPath == "" || *stationID == "" || *rawOut == "" || *viewOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -station, -raw-out, -view-out")
	}

	stations, err := config.LoadStations(*stationsFile)
	if err != nil {
		return err
	}
	station, err := findStation(stations, *stationID)
	if err != nil {
		return err
	}

	// Fix the clock so rows with unparseable dates get a reproducible
	// substituted timestamp.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.January, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	readings, err := readCSV(*csvPath, *stationID)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}
	log.Printf("%s: %d rows", *csvPath, len(readings))

	observations, substituted, err := normalize(readings)
	if err != nil {
		return err
	}

	if err := writeJSON(*rawOut, readings); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	interval := domain.DefaultInterval(observations)
	view := derive.BuildView(station, observations, interval, interval.End)
	if err := writeJSON(*viewOut, view); err != nil {
		return fmt.Errorf("writing view fixture: %w", err)
	}
	log.Printf("wrote view fixture: %s", *viewOut)

	if *publish {
		if err := publishReadings(readings, *brokers, *topic); err != nil {
			return fmt.Errorf("publishing readings: %w", err)
		}
		log.Printf("published %d readings to %s", len(readings), *topic)
	}

	printStats(view, len(readings), substituted)
	return nil
}

func findStation(stations []domain.StationConfig, id string) (domain.StationConfig, error) {
	for _, st := range stations {
		if st.ID == id {
			return st, nil
		}
	}
	return domain.StationConfig{}, fmt.Errorf("station %q not in stations file", id)
}

// readCSV maps export columns onto raw readings by header name. Missing
// columns become empty strings, matching how the collector emits them.
func readCSV(path, stationID string) ([]domain.RawReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}

	readings := make([]domain.RawReading, 0, len(rows)-1)
	for _, row := range rows[1:] {
		readings = append(readings, domain.RawReading{
			Station:             stationID,
			Date:                get(row, colIdx, "date"),
			Time:                get(row, colIdx, "time"),
			WaterLevel:          get(row, colIdx, "waterLevel"),
			Inflow:              get(row, colIdx, "inflow"),
			TotalOutflow:        get(row, colIdx, "totalOutflow"),
			PowerHouseDischarge: get(row, colIdx, "powerHouseDischarge"),
			SpillwayRelease:     get(row, colIdx, "spillwayRelease"),
			Rainfall:            get(row, colIdx, "rainfall"),
			LiveStorage:         get(row, colIdx, "liveStorage"),
			StoragePercentage:   get(row, colIdx, "storagePercentage"),
			LakeWaterTemp:       get(row, colIdx, "lakeWaterTemp"),
		})
	}
	return readings, nil
}

// normalize runs every reading through the actual pipeline transformation.
func normalize(readings []domain.RawReading) ([]domain.Observation, int, error) {
	observations := make([]domain.Observation, 0, len(readings))
	var substituted int
	for i, r := range readings {
		payload, err := json.Marshal(r)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal row %d: %w", i, err)
		}
		obs, err := domain.ParseRawReading(domain.RawEvent{Value: payload})
		if err != nil {
			return nil, 0, fmt.Errorf("parse row %d: %w", i, err)
		}
		if obs.TimestampSubstituted {
			substituted++
		}
		observations = append(observations, obs)
	}
	return observations, substituted, nil
}

func publishReadings(readings []domain.RawReading, brokers, topic string) error {
	logger := observability.NewLogger("info", "text")
	writer := kafkaadapter.NewWriter(strings.Split(brokers, ","), topic, logger)
	defer writer.Close() //nolint:errcheck // exiting anyway

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return writer.PublishBatch(ctx, readings)
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(view derive.View, total, substituted int) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows: %d (substituted timestamps: %d)\n", total, substituted)
	fmt.Printf("In interval [%s, %s]: %d\n",
		view.Interval.Start.Format(time.RFC3339),
		view.Interval.End.Format(time.RFC3339),
		len(view.Records))
	fmt.Printf("Zone: %s\n", view.Zone)

	if view.Trend != nil {
		fmt.Printf("Trend: %s (%s confidence), %.4f ft/hr, %.4f in/hr\n",
			view.Trend.Trend, view.Trend.Confidence,
			view.Trend.HourlyChangeFeet, view.Trend.HourlyChangeInches)
	}

	if axis, ok := view.Axes["waterLevel"]; ok {
		fmt.Printf("waterLevel axis: [%.2f, %.2f]\n", axis.Low, axis.High)
	}
	if axis, ok := view.Axes["inflow"]; ok {
		fmt.Printf("inflow axis: [%.2f, %.2f]\n", axis.Low, axis.High)
	}
}
