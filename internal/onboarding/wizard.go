// Package onboarding models the multi-step business onboarding wizard as an
// immutable state and a pure reducer.
package onboarding

import (
	"math"
	"strconv"
	"strings"
)

// FieldKind controls how a field is entered and converted.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindNumber FieldKind = "number"
	KindSelect FieldKind = "select"
	KindSlider FieldKind = "slider"
)

// Slider range.
const (
	SliderMin     = 0
	SliderMax     = 100
	sliderDefault = "50"
)

// Field is one wizard input.
type Field struct {
	Name    string    `json:"name" yaml:"name"`
	Label   string    `json:"label" yaml:"label"`
	Kind    FieldKind `json:"kind" yaml:"kind"`
	Options []string  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Step is one wizard page.
type Step struct {
	Title  string  `json:"title" yaml:"title"`
	Fields []Field `json:"fields" yaml:"fields"`
}

var steps = []Step{
	{
		Title: "Business Information",
		Fields: []Field{
			{Name: "businessId", Label: "Business ID", Kind: KindText},
			{Name: "businessType", Label: "Business Type", Kind: KindSelect, Options: []string{
				"sole_proprietorship", "partnership", "llp", "private_limited", "public_limited",
			}},
			{Name: "industrySector", Label: "Industry Sector", Kind: KindSelect, Options: []string{
				"manufacturing", "retail", "technology", "healthcare", "finance",
				"education", "hospitality", "agriculture", "construction", "other",
			}},
			{Name: "yearsInOperation", Label: "Years in Operation", Kind: KindNumber},
		},
	},
	{
		Title: "Financial Details",
		Fields: []Field{
			{Name: "monthlyRevenue", Label: "Monthly Revenue (₹)", Kind: KindNumber},
			{Name: "monthlyExpenses", Label: "Monthly Expenses (₹)", Kind: KindNumber},
			{Name: "outstandingDebt", Label: "Outstanding Debt (₹)", Kind: KindNumber},
			{Name: "cashFlowStabilityScore", Label: "Cash Flow Stability Score", Kind: KindSlider},
		},
	},
	{
		Title: "Credit History",
		Fields: []Field{
			{Name: "loanRepaymentHistory", Label: "Loan Repayment History", Kind: KindSelect, Options: []string{
				"excellent", "good", "average", "poor", "very_poor",
			}},
			{Name: "creditDefaultHistory", Label: "Credit Default History", Kind: KindSelect, Options: []string{
				"none", "minor", "moderate", "major",
			}},
			{Name: "gstFilings", Label: "GST Filings", Kind: KindSelect, Options: []string{
				"regular", "mostly_regular", "irregular", "non_compliant",
			}},
			{Name: "supplierPaymentDelay", Label: "Supplier Payment Delay (Days)", Kind: KindNumber},
		},
	},
	{
		Title: "Additional Metrics",
		Fields: []Field{
			{Name: "ecommerceVolume", Label: "E-commerce Sales Volume (₹)", Kind: KindNumber},
			{Name: "digitalInvoiceRate", Label: "Digital Invoice Payment Rate (%)", Kind: KindSlider},
			{Name: "businessGrowthRate", Label: "Business Growth Rate (%)", Kind: KindSlider},
			{Name: "macroeconomicRiskScore", Label: "Macroeconomic Risk Score", Kind: KindSlider},
			{Name: "socialMediaSentiment", Label: "Social Media Sentiment", Kind: KindSlider},
			{Name: "regulatoryComplianceScore", Label: "Regulatory Compliance Score", Kind: KindSlider},
		},
	},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field)
	for _, s := range steps {
		for _, f := range s.Fields {
			m[f.Name] = f
		}
	}
	return m
}()

// Steps returns the wizard steps in order.
func Steps() []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = Step{Title: s.Title, Fields: append([]Field(nil), s.Fields...)}
	}
	return out
}

// LookupField returns the field definition for name.
func LookupField(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// State is a snapshot of the wizard. Treat it as a value: Reduce never
// mutates its input and always returns a fresh Values map.
type State struct {
	Step      int               `json:"step" yaml:"step"`
	Values    map[string]string `json:"values" yaml:"values"`
	Submitted bool              `json:"submitted" yaml:"submitted"`
}

// Initial returns the empty wizard with sliders at their default.
func Initial() State {
	values := make(map[string]string, len(fieldsByName))
	for name, f := range fieldsByName {
		if f.Kind == KindSlider {
			values[name] = sliderDefault
		} else {
			values[name] = ""
		}
	}
	return State{Values: values}
}

// Value returns the current value of a field.
func (s State) Value(name string) string {
	return s.Values[name]
}

// CurrentStep returns the step the wizard is on.
func (s State) CurrentStep() Step {
	return Steps()[s.clampedStep()]
}

// IsLastStep reports whether Next will submit.
func (s State) IsLastStep() bool {
	return s.clampedStep() == len(steps)-1
}

// Progress is the completion bar position in percent.
func (s State) Progress() float64 {
	return float64(s.clampedStep()) / float64(len(steps)-1) * 100
}

func (s State) clampedStep() int {
	switch {
	case s.Step < 0:
		return 0
	case s.Step >= len(steps):
		return len(steps) - 1
	default:
		return s.Step
	}
}

func (s State) clone() State {
	values := make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		values[k] = v
	}
	return State{Step: s.Step, Values: values, Submitted: s.Submitted}
}

// ActionType names a wizard transition.
type ActionType string

const (
	SetField  ActionType = "set_field"
	SetSlider ActionType = "set_slider"
	Next      ActionType = "next"
	Prev      ActionType = "prev"
	Reset     ActionType = "reset"
)

// Action is a wizard input event.
type Action struct {
	Type  ActionType `json:"type" yaml:"type"`
	Field string     `json:"field,omitempty" yaml:"field,omitempty"`
	Value string     `json:"value,omitempty" yaml:"value,omitempty"`
}

// Reduce applies an action and returns the next state. Unknown fields,
// unknown actions and edits after submission leave the state unchanged.
func Reduce(s State, a Action) State {
	if a.Type == Reset {
		return Initial()
	}
	if s.Submitted {
		return s
	}

	switch a.Type {
	case SetField:
		if _, ok := fieldsByName[a.Field]; !ok {
			return s
		}
		next := s.clone()
		next.Values[a.Field] = a.Value
		return next

	case SetSlider:
		f, ok := fieldsByName[a.Field]
		if !ok || f.Kind != KindSlider {
			return s
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
		if err != nil || math.IsNaN(v) {
			return s
		}
		v = math.Max(SliderMin, math.Min(SliderMax, math.Round(v)))
		next := s.clone()
		next.Values[a.Field] = strconv.Itoa(int(v))
		return next

	case Next:
		next := s.clone()
		if s.clampedStep() < len(steps)-1 {
			next.Step = s.clampedStep() + 1
		} else {
			next.Submitted = true
		}
		return next

	case Prev:
		if s.clampedStep() == 0 {
			return s
		}
		next := s.clone()
		next.Step = s.clampedStep() - 1
		return next
	}

	return s
}

// ReduceAll folds a sequence of actions over s.
func ReduceAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}
