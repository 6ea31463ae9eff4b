package scoring

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// OptionalScore is a score that may be absent, e.g. when the dashboard is
// opened without a score parameter.
type OptionalScore struct {
	value float64
	valid bool
}

// Some wraps a present score.
func Some(v float64) OptionalScore {
	return OptionalScore{value: v, valid: true}
}

// None is the absent score.
func None() OptionalScore {
	return OptionalScore{}
}

// Valid reports whether the score is present.
func (s OptionalScore) Valid() bool { return s.valid }

// Get returns the raw value and whether it is present.
func (s OptionalScore) Get() (float64, bool) { return s.value, s.valid }

// Floor returns the score rounded down, saturated to the int32 range so
// huge parsed values keep their sign. Absent scores return 0.
func (s OptionalScore) Floor() int {
	if !s.valid {
		return 0
	}
	return saturate(math.Floor(s.value))
}

// Ceil is Floor rounding up.
func (s OptionalScore) Ceil() int {
	if !s.valid {
		return 0
	}
	return saturate(math.Ceil(s.value))
}

func saturate(v float64) int {
	switch {
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

// String renders the score for display, "N/A" when absent.
func (s OptionalScore) String() string {
	if !s.valid {
		return NotAvailable
	}
	return strconv.FormatFloat(s.value, 'f', -1, 64)
}

// MarshalJSON encodes an absent score as null.
func (s OptionalScore) MarshalJSON() ([]byte, error) {
	if !s.valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON accepts a number, a numeric string or null.
func (s *OptionalScore) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = None()
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = ParseScore(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = Some(f)
	return nil
}

// MarshalYAML encodes an absent score as null.
func (s OptionalScore) MarshalYAML() (any, error) {
	if !s.valid {
		return nil, nil
	}
	return s.value, nil
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseScore parses a query-string score leniently: a leading numeric prefix
// is accepted ("712abc" is 712) and anything else yields an absent score.
func ParseScore(raw string) OptionalScore {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return None()
	}
	m := numericPrefix.FindString(raw)
	if m == "" {
		return None()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return None()
	}
	return Some(v)
}
