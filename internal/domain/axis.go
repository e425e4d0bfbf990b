package domain

import "math"

// Axis padding constants. The 5% fraction and the flat-series factors come
// from the dashboard's original tuning; intent beyond reasonable visual
// padding is not documented, so they are preserved as-is.
const (
	axisPaddingFraction = 0.05
	axisFlatLowFactor   = 0.9
	axisFlatHighFactor  = 1.1
	axisDefaultLow      = 0.0
	axisDefaultHigh     = 100.0
)

// AxisDomain computes a padded [low, high] display range for a numeric
// series. Non-finite entries are ignored. An empty series yields the default
// [0, 100]; an all-equal series v yields [0.9v, 1.1v] so a chart never
// renders a zero-height axis; otherwise 5% of the spread is added on both
// ends.
func AxisDomain(values []float64) (low, high float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	n := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		n++
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if n == 0 {
		return axisDefaultLow, axisDefaultHigh
	}
	if min == max {
		return axisFlatLowFactor * min, axisFlatHighFactor * max
	}

	pad := axisPaddingFraction * (max - min)
	return min - pad, max + pad
}
