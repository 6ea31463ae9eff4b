// Package dashboard assembles the score dashboard view.
package dashboard

import (
	"math"

	"github.com/sells-group/credit-cli/internal/scoring"
)

const naColor = "text-gray-500"

// View is everything the dashboard renders for one score.
type View struct {
	Score         scoring.OptionalScore  `json:"score" yaml:"score"`
	Display       string                 `json:"display" yaml:"display"`
	Risk          scoring.Classification `json:"risk" yaml:"risk"`
	ScoreColor    string                 `json:"scoreColor" yaml:"scoreColor"`
	ProgressColor string                 `json:"progressColor" yaml:"progressColor"`
	GaugePercent  float64                `json:"gaugePercent" yaml:"gaugePercent"`
	Advice        *scoring.Advice        `json:"advice" yaml:"advice,omitempty"`
}

// Builder renders views with a fixed pair of policies.
type Builder struct {
	policies scoring.Policies
}

// NewBuilder creates a view builder.
func NewBuilder(p scoring.Policies) *Builder {
	return &Builder{policies: p}
}

// Build returns the view for score. An absent score yields the N/A view
// with no advice.
func (b *Builder) Build(score scoring.OptionalScore) View {
	v, ok := score.Get()
	if !ok {
		return View{
			Score:         score,
			Display:       scoring.NotAvailable,
			Risk:          b.policies.Risk.ClassifyOptional(score),
			ScoreColor:    naColor,
			ProgressColor: "bg-gray-500",
		}
	}

	// Color bands are lower-bound inclusive, like risk.
	floor := score.Floor()
	return View{
		Score:         score,
		Display:       score.String(),
		Risk:          b.policies.Risk.ClassifyOptional(score),
		ScoreColor:    scoring.ScoreColor(floor),
		ProgressColor: scoring.ProgressColor(floor),
		GaugePercent:  math.Max(0, math.Min(100, scoring.GaugePercent(v))),
		Advice:        b.policies.Advice.AdviseOptional(score),
	}
}

// BuildRaw parses a raw query value and builds its view.
func (b *Builder) BuildRaw(raw string) View {
	return b.Build(scoring.ParseScore(raw))
}
