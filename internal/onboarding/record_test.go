package onboarding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/credit-cli/internal/model"
)

func filledState() State {
	return ReduceAll(Initial(),
		Action{Type: SetField, Field: "businessId", Value: " B-9 "},
		Action{Type: SetField, Field: "businessType", Value: "private_limited"},
		Action{Type: SetField, Field: "industrySector", Value: "retail"},
		Action{Type: SetField, Field: "yearsInOperation", Value: "6"},
		Action{Type: SetField, Field: "monthlyRevenue", Value: "500000.75"},
		Action{Type: SetField, Field: "monthlyExpenses", Value: "320000"},
		Action{Type: SetField, Field: "outstandingDebt", Value: "n/a"},
		Action{Type: SetSlider, Field: "cashFlowStabilityScore", Value: "80"},
		Action{Type: SetField, Field: "loanRepaymentHistory", Value: "delayed"},
		Action{Type: SetField, Field: "supplierPaymentDelay", Value: "fifteen"},
	)
}

func TestState_Record(t *testing.T) {
	t.Parallel()

	r := filledState().Record()

	assert.Equal(t, "B-9", r.BusinessID)
	assert.Equal(t, model.BusinessTypePrivateLimited, r.BusinessType)
	assert.Equal(t, model.SectorRetail, r.IndustrySector)
	assert.InDelta(t, 6.0, r.YearsInOperation, 0.001)
	assert.Equal(t, "500000.75", r.MonthlyRevenue.String())
	assert.Equal(t, "320000", r.MonthlyExpenses.String())
	assert.True(t, r.OutstandingDebt.IsZero())
	assert.InDelta(t, 80.0, r.CashFlowStabilityScore, 0.001)
	assert.Equal(t, model.RepaymentDelayed, r.LoanRepaymentHistory)
	assert.InDelta(t, 0.0, r.SupplierPaymentDelay, 0.001)
	assert.InDelta(t, 50.0, r.DigitalInvoiceRate, 0.001)
}

func TestState_Request(t *testing.T) {
	t.Parallel()

	req := filledState().Request("Apr")
	b, err := json.Marshal(req)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, "B-9", got["Business_ID"])
	assert.Equal(t, "private_limited", got["Business_Type"])
	assert.InDelta(t, 6.0, got["Years_in_Operation"], 0.001)
	assert.InDelta(t, 500000.75, got["Monthly_Revenue"], 0.001)
	// Non-numeric text passes through untouched.
	assert.Equal(t, "n/a", got["Outstanding_Debt"])
	assert.Equal(t, "fifteen", got["Supplier_Payment_Delay"])
	assert.InDelta(t, 50.0, got["Regulatory_Compliance_Score"], 0.001)
	assert.Equal(t, "Apr", got["Month"])
}

func TestFromValues(t *testing.T) {
	t.Parallel()

	s := FromValues(map[string]any{
		"businessId":             "B-1",
		"yearsInOperation":       3,
		"monthlyRevenue":         125000.5,
		"cashFlowStabilityScore": 150,
		"loanRepaymentHistory":   "good",
		"unknownField":           "ignored",
		"gstFilings":             nil,
	})

	assert.True(t, s.IsLastStep())
	assert.False(t, s.Submitted)
	assert.Equal(t, "B-1", s.Value("businessId"))
	assert.Equal(t, "3", s.Value("yearsInOperation"))
	assert.Equal(t, "125000.5", s.Value("monthlyRevenue"))
	assert.Equal(t, "100", s.Value("cashFlowStabilityScore"))
	assert.Equal(t, "", s.Value("gstFilings"))
	assert.NotContains(t, s.Values, "unknownField")
}
