package scoring

// NotAvailable is the level shown for an absent score.
const NotAvailable = "N/A"

// Risk levels.
const (
	RiskVeryLow  = "Very Low"
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskVeryHigh = "Very High"
)

// Classification is a risk level with its display color token.
type Classification struct {
	Level string `json:"level" yaml:"level"`
	Color string `json:"color" yaml:"color"`
}

// RiskBand maps scores >= Min to a classification.
type RiskBand struct {
	Min   int
	Level string
	Color string
}

// RiskPolicy classifies scores into risk levels. Bands are checked highest
// first; scores below every band get Fallback.
type RiskPolicy struct {
	Bands    []RiskBand
	Fallback Classification
}

// DefaultRiskPolicy returns the five-bucket risk table.
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		Bands: []RiskBand{
			{Min: 800, Level: RiskVeryLow, Color: "text-green-600"},
			{Min: 750, Level: RiskLow, Color: "text-green-500"},
			{Min: 650, Level: RiskMedium, Color: "text-yellow-600"},
			{Min: 550, Level: RiskHigh, Color: "text-orange-600"},
		},
		Fallback: Classification{Level: RiskVeryHigh, Color: "text-red-600"},
	}
}

// Classify returns the risk classification for score.
func (p RiskPolicy) Classify(score int) Classification {
	for _, b := range p.Bands {
		if score >= b.Min {
			return Classification{Level: b.Level, Color: b.Color}
		}
	}
	return p.Fallback
}

// ClassifyOptional classifies a possibly absent score. Absent scores get the
// N/A classification. Fractional scores compare against the raw value.
func (p RiskPolicy) ClassifyOptional(s OptionalScore) Classification {
	if !s.Valid() {
		return Classification{Level: NotAvailable, Color: "text-gray-500"}
	}
	// A band with Min m matches v >= m, which for integer m is floor(v) >= m.
	return p.Classify(s.Floor())
}
