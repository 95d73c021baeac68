package universe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/energyls/internal/contracts"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"median of even set", []float64{4, 1, 3, 2}, 50, 2.5},
		{"linear interpolation", []float64{1, 2, 3, 4, 5}, 90, 4.6},
		{"minimum", []float64{3, 1, 2}, 0, 1},
		{"maximum", []float64{3, 1, 2}, 100, 3},
		{"ignores NaN", []float64{1, math.NaN(), 3}, 50, 2},
		{"single value", []float64{7}, 90, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Percentile(tt.values, tt.p), 1e-9)
		})
	}

	assert.True(t, math.IsNaN(Percentile(nil, 50)))
	assert.True(t, math.IsNaN(Percentile([]float64{math.NaN()}, 50)))
}

func TestPercentileBetween(t *testing.T) {
	values := map[string]float64{}
	for i, id := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		values[id] = float64(i + 1)
	}
	values["X"] = math.NaN()

	keep := PercentileBetween(values, 90, 100)
	assert.Equal(t, map[string]bool{"J": true}, keep)

	keep = PercentileBetween(values, 0, 100)
	assert.Len(t, keep, 10)
	assert.False(t, keep["X"])

	assert.Empty(t, PercentileBetween(map[string]float64{}, 90, 100))
}

func TestTop(t *testing.T) {
	values := map[string]float64{"A": 3, "B": 5, "C": 5, "D": 1, "E": math.NaN()}

	assert.Equal(t, []string{"B", "C", "A"}, Top(values, 3))
	assert.Equal(t, []string{"B", "C", "A", "D"}, Top(values, 10))
	assert.Empty(t, Top(values, 0))
}

func TestSMA(t *testing.T) {
	assert.InDelta(t, 3.5, SMA([]float64{1, 2, 3, 4}, 2), 1e-12)
	assert.InDelta(t, 2.5, SMA([]float64{1, 2, 3, 4}, 4), 1e-12)
	assert.True(t, math.IsNaN(SMA([]float64{1, 2}, 3)))
	assert.True(t, math.IsNaN(SMA([]float64{1, math.NaN(), 3}, 2)))
	assert.True(t, math.IsNaN(SMA([]float64{1, 2}, 0)))
}

func TestAverageDollarVolume(t *testing.T) {
	bars := []contracts.Bar{
		{Close: 10, Volume: 100},
		{Close: 20, Volume: 100},
		{Close: 30, Volume: 100},
	}

	assert.InDelta(t, 2500.0, AverageDollarVolume(bars, 2), 1e-9)
	assert.True(t, math.IsNaN(AverageDollarVolume(bars, 4)))
}
