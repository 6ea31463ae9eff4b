package scoring

// Advice categories.
const (
	AdviceLow    = "Low"
	AdviceMedium = "Medium"
	AdviceHigh   = "High"
)

// Suggestion is a static improvement tip shown with an advice category.
type Suggestion struct {
	Title  string `json:"title" yaml:"title"`
	Impact string `json:"impact" yaml:"impact"`
	Color  string `json:"color" yaml:"color"`
	Advice string `json:"advice" yaml:"advice"`
}

// Advice is the advice category for a score.
type Advice struct {
	Category    string       `json:"category" yaml:"category"`
	Color       string       `json:"color" yaml:"color"`
	Suggestions []Suggestion `json:"suggestions" yaml:"suggestions"`
}

// AdviceBand maps scores <= Max to an advice category.
type AdviceBand struct {
	Max    int
	Advice Advice
}

// AdvicePolicy maps scores to advice categories. Bands are checked lowest
// first; scores above every band get Fallback.
type AdvicePolicy struct {
	Bands    []AdviceBand
	Fallback Advice
}

// DefaultAdvicePolicy returns the three-bucket advice table.
func DefaultAdvicePolicy() AdvicePolicy {
	return AdvicePolicy{
		Bands: []AdviceBand{
			{Max: 500, Advice: Advice{
				Category: AdviceLow,
				Color:    "text-red-600",
				Suggestions: []Suggestion{
					{Title: "Payment History", Impact: "Strong Negative Impact", Color: "text-red-600", Advice: "Make all payments on time to avoid defaults."},
					{Title: "Credit Utilization", Impact: "High Risk", Color: "text-red-600", Advice: "Reduce outstanding debt and avoid over-utilization of credit."},
					{Title: "GST Compliance", Impact: "Negative Impact", Color: "text-red-600", Advice: "Ensure timely GST filings to build financial credibility."},
				},
			}},
			{Max: 700, Advice: Advice{
				Category: AdviceMedium,
				Color:    "text-amber-600",
				Suggestions: []Suggestion{
					{Title: "Payment History", Impact: "Moderate Impact", Color: "text-amber-600", Advice: "Improve repayment consistency to boost score."},
					{Title: "Credit Mix", Impact: "Moderate Risk", Color: "text-amber-600", Advice: "Diversify credit types like trade credit or term loans."},
				},
			}},
		},
		Fallback: Advice{
			Category: AdviceHigh,
			Color:    "text-green-600",
			Suggestions: []Suggestion{
				{Title: "Overall Score", Impact: "Strong Positive", Color: "text-green-600", Advice: "Keep maintaining good financial habits."},
			},
		},
	}
}

// Advise returns the advice for score. The returned suggestions are a copy.
func (p AdvicePolicy) Advise(score int) Advice {
	for _, b := range p.Bands {
		if score <= b.Max {
			return b.Advice.clone()
		}
	}
	return p.Fallback.clone()
}

// AdviseOptional returns nil for an absent score.
func (p AdvicePolicy) AdviseOptional(s OptionalScore) *Advice {
	if !s.Valid() {
		return nil
	}
	// v <= m for integer m is ceil(v) <= m.
	a := p.Advise(s.Ceil())
	return &a
}

func (a Advice) clone() Advice {
	out := a
	out.Suggestions = append([]Suggestion(nil), a.Suggestions...)
	return out
}
