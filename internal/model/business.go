package model

import "github.com/shopspring/decimal"

// BusinessType is the legal form of a business.
type BusinessType string

const (
	BusinessTypeSoleProprietorship BusinessType = "sole_proprietorship"
	BusinessTypePartnership        BusinessType = "partnership"
	BusinessTypeLLP                BusinessType = "llp"
	BusinessTypePrivateLimited     BusinessType = "private_limited"
	BusinessTypePublicLimited      BusinessType = "public_limited"
)

// IndustrySector classifies the business's primary industry. Values outside
// the known set are accepted as free text.
type IndustrySector string

const (
	SectorManufacturing IndustrySector = "manufacturing"
	SectorRetail        IndustrySector = "retail"
	SectorTechnology    IndustrySector = "technology"
	SectorHealthcare    IndustrySector = "healthcare"
	SectorFinance       IndustrySector = "finance"
	SectorEducation     IndustrySector = "education"
	SectorHospitality   IndustrySector = "hospitality"
	SectorAgriculture   IndustrySector = "agriculture"
	SectorConstruction  IndustrySector = "construction"
	SectorOther         IndustrySector = "other"
)

// RepaymentHistory describes how reliably past loans were repaid.
type RepaymentHistory string

const (
	RepaymentExcellent RepaymentHistory = "excellent"
	RepaymentGood      RepaymentHistory = "good"
	RepaymentAverage   RepaymentHistory = "average"
	RepaymentPoor      RepaymentHistory = "poor"
	RepaymentVeryPoor  RepaymentHistory = "very_poor"
	// RepaymentDelayed is the only value the placeholder estimator penalizes.
	RepaymentDelayed RepaymentHistory = "delayed"
)

// CreditDefaultHistory summarizes prior credit defaults.
type CreditDefaultHistory string

const (
	DefaultsNone     CreditDefaultHistory = "none"
	DefaultsMinor    CreditDefaultHistory = "minor"
	DefaultsModerate CreditDefaultHistory = "moderate"
	DefaultsMajor    CreditDefaultHistory = "major"
)

// GSTFilings describes GST filing regularity.
type GSTFilings string

const (
	GSTRegular       GSTFilings = "regular"
	GSTMostlyRegular GSTFilings = "mostly_regular"
	GSTIrregular     GSTFilings = "irregular"
	GSTNonCompliant  GSTFilings = "non_compliant"
)

// BusinessRecord is the scoring input collected during onboarding. It is
// immutable once submitted and is never persisted by this module.
type BusinessRecord struct {
	BusinessID             string           `json:"businessId" yaml:"businessId"`
	BusinessType           BusinessType     `json:"businessType" yaml:"businessType"`
	IndustrySector         IndustrySector   `json:"industrySector" yaml:"industrySector"`
	YearsInOperation       float64          `json:"yearsInOperation" yaml:"yearsInOperation"`
	MonthlyRevenue         decimal.Decimal  `json:"monthlyRevenue" yaml:"monthlyRevenue"`
	MonthlyExpenses        decimal.Decimal  `json:"monthlyExpenses" yaml:"monthlyExpenses"`
	OutstandingDebt        decimal.Decimal  `json:"outstandingDebt" yaml:"outstandingDebt"`
	CashFlowStabilityScore float64          `json:"cashFlowStabilityScore" yaml:"cashFlowStabilityScore"` // 0-100
	LoanRepaymentHistory   RepaymentHistory `json:"loanRepaymentHistory" yaml:"loanRepaymentHistory"`

	// Secondary metrics. All optional.
	GSTFilings                GSTFilings           `json:"gstFilings,omitempty" yaml:"gstFilings,omitempty"`
	SupplierPaymentDelay      float64              `json:"supplierPaymentDelay,omitempty" yaml:"supplierPaymentDelay,omitempty"` // days
	EcommerceVolume           decimal.Decimal      `json:"ecommerceVolume" yaml:"ecommerceVolume"`
	DigitalInvoiceRate        float64              `json:"digitalInvoiceRate,omitempty" yaml:"digitalInvoiceRate,omitempty"`
	CreditDefaultHistory      CreditDefaultHistory `json:"creditDefaultHistory,omitempty" yaml:"creditDefaultHistory,omitempty"`
	BusinessGrowthRate        float64              `json:"businessGrowthRate,omitempty" yaml:"businessGrowthRate,omitempty"`
	MacroeconomicRiskScore    float64              `json:"macroeconomicRiskScore,omitempty" yaml:"macroeconomicRiskScore,omitempty"`
	SocialMediaSentiment      float64              `json:"socialMediaSentiment,omitempty" yaml:"socialMediaSentiment,omitempty"`
	RegulatoryComplianceScore float64              `json:"regulatoryComplianceScore,omitempty" yaml:"regulatoryComplianceScore,omitempty"`
}

// NetMonthlyCashFlow returns revenue minus expenses.
func (r BusinessRecord) NetMonthlyCashFlow() decimal.Decimal {
	return r.MonthlyRevenue.Sub(r.MonthlyExpenses)
}
