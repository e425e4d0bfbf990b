package domain

import "sort"

// FilterByRange selects the records whose timestamps fall inside the
// interval, boundaries included, and returns them sorted ascending by
// timestamp. The sort is stable so identical timestamps keep their input
// order. Records without a resolvable timestamp never match. Empty input or
// an empty intersection yields an empty slice, not an error.
func FilterByRange(records []Observation, interval Interval) []Observation {
	out := make([]Observation, 0, len(records))
	for _, r := range records {
		if r.Timestamp.IsZero() {
			continue
		}
		if interval.Contains(r.Timestamp) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
