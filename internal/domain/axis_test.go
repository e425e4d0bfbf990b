package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxisDomain(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		low    float64
		high   float64
	}{
		{"empty", nil, 0, 100},
		{"all non-finite", []float64{math.NaN(), math.Inf(1)}, 0, 100},
		{"flat series", []float64{5, 5, 5}, 4.5, 5.5},
		{"flat zero", []float64{0, 0}, 0, 0},
		{"padded spread", []float64{1, 2, 3, 4, 10}, 0.55, 10.45},
		{"negative spread", []float64{-10, 10}, -11, 11},
		{"non-finite ignored", []float64{math.NaN(), 5, 5}, 4.5, 5.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, high := AxisDomain(tt.values)
			assert.InDelta(t, tt.low, low, 1e-9)
			assert.InDelta(t, tt.high, high, 1e-9)
		})
	}

	t.Run("single value is flat", func(t *testing.T) {
		low, high := AxisDomain([]float64{564})
		assert.InDelta(t, 507.6, low, 1e-9)
		assert.InDelta(t, 620.4, high, 1e-9)
	})
}
