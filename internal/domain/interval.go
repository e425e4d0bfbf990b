package domain

import (
	"fmt"
	"time"
)

// defaultLookbackMonths is the span of the computed fallback interval when no
// usable preference or query range is supplied.
const defaultLookbackMonths = 6

// Interval is an inclusive [Start, End] time range.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the interval, boundaries included.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// Valid reports whether the interval is usable: both ends set, end not
// before start.
func (iv Interval) Valid() bool {
	return !iv.Start.IsZero() && !iv.End.IsZero() && !iv.End.Before(iv.Start)
}

// ParseInterval reconstructs an interval from an ISO-8601 pair, typically
// round-tripped through preference storage. Corrupted values are rejected so
// the caller can discard them and fall back to DefaultInterval.
func ParseInterval(start, end string) (Interval, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return Interval{}, fmt.Errorf("parse interval start: %w", err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return Interval{}, fmt.Errorf("parse interval end: %w", err)
	}
	iv := Interval{Start: s, End: e}
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("interval end %s before start %s", end, start)
	}
	return iv, nil
}

// DefaultInterval computes the fallback range: the last six months ending at
// the most recent observation, or at the current moment when no records
// exist.
func DefaultInterval(records []Observation) Interval {
	end := clock.Now()
	var latest time.Time
	for _, r := range records {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	if !latest.IsZero() {
		end = latest
	}
	return Interval{Start: end.AddDate(0, -defaultLookbackMonths, 0), End: end}
}
