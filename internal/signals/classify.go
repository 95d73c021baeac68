package signals

import (
	"math"

	"github.com/wonny/energyls/internal/contracts"
)

// Exclusion reasons
const (
	ReasonZeroMean30  = "mean30 is zero"
	ReasonFlat        = "mean10 equals mean30"
	ReasonMissingData = "missing price data"
	ReasonDuplicate   = "duplicate snapshot"
)

// Classify turns a snapshot into a LONG/SHORT/EXCLUDED signal.
// mean30 == 0 is checked before dividing; it never panics.
func Classify(s contracts.SecuritySnapshot) contracts.Signal {
	sig := contracts.Signal{
		SecurityID: s.SecurityID,
		Direction:  contracts.DirectionExcluded,
	}

	if s.Mean30 == 0 {
		sig.Reason = ReasonZeroMean30
		return sig
	}

	pct := PercentDifference(s.Mean10, s.Mean30)
	sig.PercentDifference = pct

	switch {
	case math.IsNaN(pct) || math.IsInf(pct, 0):
		sig.PercentDifference = 0
		sig.Reason = ReasonMissingData
	case pct > 0:
		sig.Direction = contracts.DirectionLong
	case pct < 0:
		sig.Direction = contracts.DirectionShort
	default:
		sig.Reason = ReasonFlat
	}

	return sig
}

// PercentDifference is (mean10 - mean30) / mean30; callers guard mean30 == 0
func PercentDifference(mean10, mean30 float64) float64 {
	return (mean10 - mean30) / mean30
}

// ComputeWeights splits the default 0.5/0.5 budgets equally per side.
// An empty side gets weight 0; the short weight is negative.
func ComputeWeights(nLongs, nShorts int) (longWeight, shortWeight float64) {
	return computeWeights(nLongs, nShorts, DefaultLongBudget, DefaultShortBudget)
}

func computeWeights(nLongs, nShorts int, longBudget, shortBudget float64) (float64, float64) {
	var longWeight, shortWeight float64
	if nLongs > 0 {
		longWeight = longBudget / float64(nLongs)
	}
	if nShorts > 0 {
		shortWeight = -shortBudget / float64(nShorts)
	}
	return longWeight, shortWeight
}
