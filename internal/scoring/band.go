package scoring

import "strings"

// ColorBand maps scores >= Min to a text color token.
type ColorBand struct {
	Min   int
	Color string
}

var scoreColors = []ColorBand{
	{Min: 750, Color: "text-green-600"},
	{Min: 650, Color: "text-emerald-600"},
	{Min: 550, Color: "text-amber-600"},
	{Min: 450, Color: "text-orange-600"},
}

const lowestScoreColor = "text-red-600"

// ScoreColor returns the gauge text color for score.
func ScoreColor(score int) string {
	for _, b := range scoreColors {
		if score >= b.Min {
			return b.Color
		}
	}
	return lowestScoreColor
}

// ProgressColor returns the progress bar background color for score.
func ProgressColor(score int) string {
	return strings.Replace(ScoreColor(score), "text-", "bg-", 1)
}

// GaugePercent returns score as a percentage of MaxScore.
func GaugePercent(score float64) float64 {
	return score / MaxScore * 100
}
