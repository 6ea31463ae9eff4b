package onboarding

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/pkg/backend"
)

// Record converts the collected values into a business record. Numeric
// fields that do not parse are left at zero.
func (s State) Record() model.BusinessRecord {
	return model.BusinessRecord{
		BusinessID:                strings.TrimSpace(s.Value("businessId")),
		BusinessType:              model.BusinessType(s.Value("businessType")),
		IndustrySector:            model.IndustrySector(s.Value("industrySector")),
		YearsInOperation:          s.float("yearsInOperation"),
		MonthlyRevenue:            s.decimal("monthlyRevenue"),
		MonthlyExpenses:           s.decimal("monthlyExpenses"),
		OutstandingDebt:           s.decimal("outstandingDebt"),
		CashFlowStabilityScore:    s.float("cashFlowStabilityScore"),
		LoanRepaymentHistory:      model.RepaymentHistory(s.Value("loanRepaymentHistory")),
		GSTFilings:                model.GSTFilings(s.Value("gstFilings")),
		SupplierPaymentDelay:      s.float("supplierPaymentDelay"),
		EcommerceVolume:           s.decimal("ecommerceVolume"),
		DigitalInvoiceRate:        s.float("digitalInvoiceRate"),
		CreditDefaultHistory:      model.CreditDefaultHistory(s.Value("creditDefaultHistory")),
		BusinessGrowthRate:        s.float("businessGrowthRate"),
		MacroeconomicRiskScore:    s.float("macroeconomicRiskScore"),
		SocialMediaSentiment:      s.float("socialMediaSentiment"),
		RegulatoryComplianceScore: s.float("regulatoryComplianceScore"),
	}
}

// Request builds the backend payload for month. Values are passed through as
// entered; the backend client sends numeric ones as numbers.
func (s State) Request(month string) backend.CalculateRequest {
	v := func(name string) backend.Value { return backend.Value(s.Value(name)) }
	return backend.CalculateRequest{
		BusinessID:                strings.TrimSpace(s.Value("businessId")),
		BusinessType:              v("businessType"),
		IndustrySector:            v("industrySector"),
		YearsInOperation:          v("yearsInOperation"),
		MonthlyRevenue:            v("monthlyRevenue"),
		MonthlyExpenses:           v("monthlyExpenses"),
		LoanRepaymentHistory:      v("loanRepaymentHistory"),
		OutstandingDebt:           v("outstandingDebt"),
		CashFlowStabilityScore:    v("cashFlowStabilityScore"),
		GSTFilings:                v("gstFilings"),
		SupplierPaymentDelay:      v("supplierPaymentDelay"),
		EcommerceSalesVolume:      v("ecommerceVolume"),
		DigitalInvoicePaymentRate: v("digitalInvoiceRate"),
		CreditDefaultHistory:      v("creditDefaultHistory"),
		BusinessGrowthRate:        v("businessGrowthRate"),
		MacroeconomicRiskScore:    v("macroeconomicRiskScore"),
		SocialMediaSentiment:      v("socialMediaSentiment"),
		RegulatoryComplianceScore: v("regulatoryComplianceScore"),
		Month:                     month,
	}
}

func (s State) float(name string) float64 {
	f, ok := backend.Value(s.Value(name)).Float()
	if !ok {
		return 0
	}
	return f
}

func (s State) decimal(name string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s.Value(name)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FromValues builds a state positioned on the last step from a flat answer
// set. Unknown keys are ignored and sliders are clamped like SetSlider.
func FromValues(values map[string]any) State {
	s := Initial()
	for name, raw := range values {
		f, ok := LookupField(name)
		if !ok {
			continue
		}
		str := stringify(raw)
		if f.Kind == KindSlider {
			s = Reduce(s, Action{Type: SetSlider, Field: name, Value: str})
			continue
		}
		s = Reduce(s, Action{Type: SetField, Field: name, Value: str})
	}
	for !s.IsLastStep() {
		s = Reduce(s, Action{Type: Next})
	}
	return s
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
