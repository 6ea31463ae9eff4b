package scoring

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-cli/internal/config"
)

// Policies bundles the risk and advice tables used together by the
// dashboard and CLI.
type Policies struct {
	Risk   RiskPolicy
	Advice AdvicePolicy
}

// DefaultPolicies returns the built-in tables.
func DefaultPolicies() Policies {
	return Policies{Risk: DefaultRiskPolicy(), Advice: DefaultAdvicePolicy()}
}

// NewPolicies builds policies from config. Empty threshold lists keep the
// built-in bounds; labels, colors and suggestions are never configurable.
func NewPolicies(cfg config.ScoringConfig) (Policies, error) {
	p := DefaultPolicies()

	if len(cfg.RiskThresholds) > 0 {
		if len(cfg.RiskThresholds) != len(p.Risk.Bands) {
			return Policies{}, eris.Errorf("scoring: risk_thresholds needs %d values, got %d",
				len(p.Risk.Bands), len(cfg.RiskThresholds))
		}
		for i, lo := range cfg.RiskThresholds {
			p.Risk.Bands[i].Min = lo
		}
	}

	if len(cfg.AdviceThresholds) > 0 {
		if len(cfg.AdviceThresholds) != len(p.Advice.Bands) {
			return Policies{}, eris.Errorf("scoring: advice_thresholds needs %d values, got %d",
				len(p.Advice.Bands), len(cfg.AdviceThresholds))
		}
		for i, hi := range cfg.AdviceThresholds {
			p.Advice.Bands[i].Max = hi
		}
	}

	if err := p.Validate(); err != nil {
		return Policies{}, err
	}
	return p, nil
}

// Validate checks that both tables are well formed.
func (p Policies) Validate() error {
	var errs []string
	errs = append(errs, p.Risk.problems()...)
	errs = append(errs, p.Advice.problems()...)
	if len(errs) > 0 {
		return eris.Errorf("scoring: invalid policy: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (p RiskPolicy) problems() []string {
	var errs []string
	if len(p.Bands) == 0 {
		errs = append(errs, "risk policy has no bands")
	}
	if p.Fallback.Level == "" {
		errs = append(errs, "risk policy has no fallback level")
	}
	for i, b := range p.Bands {
		if b.Level == "" {
			errs = append(errs, fmt.Sprintf("risk band %d has no level", i))
		}
		if b.Min < MinScore || b.Min > MaxScore {
			errs = append(errs, fmt.Sprintf("risk band %q min %d outside [%d, %d]", b.Level, b.Min, MinScore, MaxScore))
		}
		if i > 0 && b.Min >= p.Bands[i-1].Min {
			errs = append(errs, fmt.Sprintf("risk band %q min %d must be below %d", b.Level, b.Min, p.Bands[i-1].Min))
		}
	}
	return errs
}

func (p AdvicePolicy) problems() []string {
	var errs []string
	if len(p.Bands) == 0 {
		errs = append(errs, "advice policy has no bands")
	}
	if p.Fallback.Category == "" {
		errs = append(errs, "advice policy has no fallback category")
	}
	for i, b := range p.Bands {
		if b.Advice.Category == "" {
			errs = append(errs, fmt.Sprintf("advice band %d has no category", i))
		}
		if b.Max < MinScore || b.Max > MaxScore {
			errs = append(errs, fmt.Sprintf("advice band %q max %d outside [%d, %d]", b.Advice.Category, b.Max, MinScore, MaxScore))
		}
		if i > 0 && b.Max <= p.Bands[i-1].Max {
			errs = append(errs, fmt.Sprintf("advice band %q max %d must be above %d", b.Advice.Category, b.Max, p.Bands[i-1].Max))
		}
	}
	return errs
}
