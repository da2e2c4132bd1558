package main

import "fmt"

// ProjectionInput holds the user-supplied values for one comparison.
// All rates are in percent (6.0 = 6%), amounts are in EUR.
type ProjectionInput struct {
	WarmRent                float64 `yaml:"warm_rent" json:"warm_rent"`                                 // Current total rent per month
	PurchasePrice           float64 `yaml:"purchase_price" json:"purchase_price"`                       // Target property price today
	ExpectedReturnRate      float64 `yaml:"expected_return_rate" json:"expected_return_rate"`           // Gross fund return, % p.a.
	InterestRate            float64 `yaml:"interest_rate" json:"interest_rate"`                         // Mortgage interest, % p.a.
	AmortizationRate        float64 `yaml:"amortization_rate" json:"amortization_rate"`                 // Principal repayment, % p.a.
	AncillaryCostPercentage float64 `yaml:"ancillary_cost_percentage" json:"ancillary_cost_percentage"` // Transaction costs, % of purchase price
}

// FinancingRate returns interest plus amortization in percent
func (in ProjectionInput) FinancingRate() float64 {
	return in.InterestRate + in.AmortizationRate
}

// InputRange is the UI guidance range for one input field.
type InputRange struct {
	Field string
	Min   float64
	Max   float64
}

// InputRanges are the presentation-layer ranges. The engine never enforces them.
var InputRanges = []InputRange{
	{Field: "warm_rent", Min: 0, Max: 3000},
	{Field: "purchase_price", Min: 100000, Max: 1500000},
	{Field: "expected_return_rate", Min: 0, Max: 15},
	{Field: "interest_rate", Min: 0, Max: 10},
	{Field: "amortization_rate", Min: 0, Max: 10},
	{Field: "ancillary_cost_percentage", Min: 0, Max: 15},
}

// LookupInputRange returns the guidance range of field
func LookupInputRange(field string) (InputRange, bool) {
	for _, r := range InputRanges {
		if r.Field == field {
			return r, true
		}
	}
	return InputRange{}, false
}

// Contains reports whether value lies inside the range, bounds included
func (r InputRange) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

func (in ProjectionInput) fieldValue(field string) float64 {
	switch field {
	case "warm_rent":
		return in.WarmRent
	case "purchase_price":
		return in.PurchasePrice
	case "expected_return_rate":
		return in.ExpectedReturnRate
	case "interest_rate":
		return in.InterestRate
	case "amortization_rate":
		return in.AmortizationRate
	case "ancillary_cost_percentage":
		return in.AncillaryCostPercentage
	}
	return 0
}

// OutOfRange lists the fields outside their UI guidance range.
// Callers use it for warnings only; out-of-range values still project.
func (in ProjectionInput) OutOfRange() []string {
	var warnings []string
	for _, r := range InputRanges {
		v := in.fieldValue(r.Field)
		if !r.Contains(v) {
			warnings = append(warnings, fmt.Sprintf("%s=%g outside %g..%g", r.Field, v, r.Min, r.Max))
		}
	}
	return warnings
}

// DerivedRates are computed once per input and held constant over the horizon
type DerivedRates struct {
	FinancedPrincipal          float64 `json:"financed_principal"`
	MonthlyFinancingPayment    float64 `json:"monthly_financing_payment"`
	MonthlySavingsDifferential float64 `json:"monthly_savings_differential"` // never negative
}

// ProjectionPoint is the snapshot at the end of one simulated year
type ProjectionPoint struct {
	Year                    int     `json:"year"`
	FundBalance             float64 `json:"fund_balance"`             // rounded, floored at 0
	CumulativeContributions float64 `json:"cumulative_contributions"` // sum of monthly differentials, no growth
	InflationAdjustedPrice  float64 `json:"inflation_adjusted_price"`
	EquityRatioPercent      float64 `json:"equity_ratio_percent"` // one decimal
}

// ProjectionResult bundles a full run for callers that need everything at once
type ProjectionResult struct {
	Input  ProjectionInput   `json:"input"`
	Rates  DerivedRates      `json:"rates"`
	Points []ProjectionPoint `json:"points"`
}

// FinalPoint returns the last yearly snapshot, or the zero point for an empty run
func (r ProjectionResult) FinalPoint() ProjectionPoint {
	if len(r.Points) == 0 {
		return ProjectionPoint{}
	}
	return r.Points[len(r.Points)-1]
}

// Gain returns the final fund balance minus everything paid in
func (r ProjectionResult) Gain() float64 {
	final := r.FinalPoint()
	return final.FundBalance - final.CumulativeContributions
}
