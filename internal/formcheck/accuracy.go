package formcheck

import (
	"math"

	"github.com/2beens/formlens/internal/exercises"
)

// Accuracy scores how close angle is to the ideal value, from 0 to 100.
// The deviation is scaled by the wider of the two margins around the ideal.
func Accuracy(angle float64, th exercises.Threshold) float64 {
	maxDeviation := math.Max(math.Abs(th.Min-th.Ideal), math.Abs(th.Max-th.Ideal))
	deviation := math.Abs(angle - th.Ideal)

	if maxDeviation == 0 {
		if deviation == 0 {
			return 100
		}
		return 0
	}

	score := 100 * (1 - deviation/maxDeviation)
	return math.Max(0, math.Min(100, score))
}

// round2 rounds to 2 decimals, like all numbers reported in a Result.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
