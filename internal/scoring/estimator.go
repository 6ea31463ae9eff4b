// Package scoring derives and classifies CIBIL-style credit scores.
package scoring

import (
	"math"

	"github.com/sells-group/credit-cli/internal/model"
)

// Score range bounds.
const (
	MinScore = 300
	MaxScore = 900
)

// Placeholder model parameters.
const (
	baseScore          = 750.0
	delayedPenalty     = 100.0
	pointsPerYear      = 10.0
	maxLongevityPoints = 50.0
	maxCashFlowPoints  = 50.0
)

// Estimate computes the local placeholder score for a business record. The
// result is always within [MinScore, MaxScore]; out-of-range and non-finite
// inputs are absorbed by the final clamp.
func Estimate(r model.BusinessRecord) int {
	score := baseScore

	if r.LoanRepaymentHistory == model.RepaymentDelayed {
		score -= delayedPenalty
	}

	years := finite(r.YearsInOperation)
	score += math.Min(years*pointsPerYear, maxLongevityPoints)

	score += finite(r.CashFlowStabilityScore) / 100 * maxCashFlowPoints

	return Clamp(score)
}

// Clamp rounds half away from zero and bounds a raw score to the valid range.
func Clamp(score float64) int {
	if math.IsNaN(score) {
		return MinScore
	}
	score = math.Max(MinScore, math.Min(MaxScore, score))
	return int(math.Round(score))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
