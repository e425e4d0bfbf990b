package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNoDate marks a raw row without a date field; such rows are invalid and
// never enter the store.
var ErrNoDate = errors.New("reading has no date")

// ErrNoStation marks a raw row that cannot be attributed to a station.
var ErrNoStation = errors.New("reading has no station")

// ParseDateTime resolves a "dd.mm.yyyy" date and an optional "HH:mm" clock
// time into a single timestamp at local time. The date alone resolves to
// local midnight. On any parse failure it fails soft: the current moment is
// returned with ok=false so the caller can log a warning; it never errors.
func ParseDateTime(date, clockTime string) (ts time.Time, ok bool) {
	day, month, year, ok := splitDate(date)
	if !ok {
		return clock.Now(), false
	}

	hour, minute := 0, 0
	if clockTime != "" {
		hour, minute, ok = splitClockTime(clockTime)
		if !ok {
			return clock.Now(), false
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), true
}

func splitDate(date string) (day, month, year int, ok bool) {
	parts := strings.Split(strings.TrimSpace(date), ".")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	day, errD := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errD != nil || errM != nil || errY != nil {
		return 0, 0, 0, false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1 {
		return 0, 0, 0, false
	}
	return day, month, year, true
}

func splitClockTime(clockTime string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(clockTime), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// CoerceNumber parses a string-encoded measurement, returning 0 on failure.
// Thousands commas are stripped, then the leading numeric prefix is parsed,
// which absorbs percent signs and trailing unit suffixes ("87%" → 87,
// "564.3 ft" → 564.3). Missing and zero are indistinguishable here; use
// CoerceOptional where that matters.
func CoerceNumber(value string) float64 {
	prefix := numericPrefix(strings.ReplaceAll(strings.TrimSpace(value), ",", ""))
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0
	}
	return v
}

// CoerceOptional is CoerceNumber with presence preserved: an absent field
// yields nil rather than zero.
func CoerceOptional(value string) *float64 {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	v := CoerceNumber(value)
	return &v
}

// numericPrefix returns the longest leading run of s that looks like a
// signed decimal number.
func numericPrefix(s string) string {
	end := 0
	seenDot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			end = i + 1
		case (r == '-' || r == '+') && i == 0:
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
			end = i + 1
		default:
			return s[:end]
		}
	}
	return s[:end]
}

// ParseRawReading deserializes and normalizes one raw telemetry message.
// The station comes from the payload, falling back to the message key. Rows
// without a date are rejected; rows with a malformed date or time get the
// current moment and are flagged via TimestampSubstituted.
func ParseRawReading(raw RawEvent) (Observation, error) {
	var rec RawReading
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Observation{}, fmt.Errorf("parse raw reading: %w", err)
	}

	station := strings.TrimSpace(rec.Station)
	if station == "" {
		station = strings.TrimSpace(string(raw.Key))
	}
	if station == "" {
		return Observation{}, ErrNoStation
	}
	if strings.TrimSpace(rec.Date) == "" {
		return Observation{}, ErrNoDate
	}

	ts, ok := ParseDateTime(rec.Date, rec.Time)

	return Observation{
		Station:              station,
		Timestamp:            ts,
		Hourly:               strings.TrimSpace(rec.Time) != "",
		TimestampSubstituted: !ok,

		WaterLevel:          CoerceOptional(rec.WaterLevel),
		Inflow:              CoerceOptional(rec.Inflow),
		TotalOutflow:        CoerceOptional(rec.TotalOutflow),
		PowerHouseDischarge: CoerceOptional(rec.PowerHouseDischarge),
		SpillwayRelease:     CoerceOptional(rec.SpillwayRelease),
		Rainfall:            CoerceOptional(rec.Rainfall),
		LiveStorage:         CoerceOptional(rec.LiveStorage),
		StoragePercentage:   CoerceOptional(rec.StoragePercentage),
		LakeWaterTemp:       CoerceOptional(rec.LakeWaterTemp),
	}, nil
}
