package universe

import (
	"math"

	"github.com/wonny/energyls/internal/contracts"
)

// SMA returns the simple moving average of the last window values.
// Fewer than window values yields NaN.
func SMA(values []float64, window int) float64 {
	if window <= 0 || len(values) < window {
		return math.NaN()
	}

	sum := 0.0
	for _, v := range values[len(values)-window:] {
		if math.IsNaN(v) {
			return math.NaN()
		}
		sum += v
	}
	return sum / float64(window)
}

// AverageDollarVolume averages close × volume over the last window bars
func AverageDollarVolume(bars []contracts.Bar, window int) float64 {
	if window <= 0 || len(bars) < window {
		return math.NaN()
	}

	sum := 0.0
	for _, b := range bars[len(bars)-window:] {
		sum += b.DollarVolume()
	}
	return sum / float64(window)
}

// closes extracts close prices in bar order
func closes(bars []contracts.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
