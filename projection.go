package main

import "math"

// MonthlyGrowthFactor converts an annual return in percent to the equivalent
// monthly compounding rate: (1 + r)^(1/12) - 1
func MonthlyGrowthFactor(annualReturnPercent float64) float64 {
	return math.Pow(1+annualReturnPercent/100, 1.0/12.0) - 1
}

// MonthlyCostDrag spreads the annual cost load evenly over twelve months
func MonthlyCostDrag(engine EngineConfig) float64 {
	return engine.AnnualCostLoad() / 12
}

// InflationAdjustedPrice returns the purchase price grown by inflation for the given number of years
func InflationAdjustedPrice(purchasePrice float64, year int, inflationRate float64) float64 {
	return purchasePrice * math.Pow(1+inflationRate, float64(year))
}

// EquityRatioPercent returns balance as a percentage of price, rounded to one decimal.
// Degenerate prices (zero, negative, non-finite ratio) yield 0.
func EquityRatioPercent(balance, price float64) float64 {
	ratio := balance / price * 100
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio < 0 {
		return 0
	}
	return math.Round(ratio*10) / 10
}

// Project runs the month-by-month fund simulation and returns one point per year.
//
// Each month: the flat fee is taken first if the month opens a fund year, then
// growth net of cost drag is applied and the month's differential is paid in.
// The running balance is never floored; only the reported balance is, and a
// non-finite balance is reported as 0.
func Project(input ProjectionInput, rates DerivedRates, engine EngineConfig) []ProjectionPoint {
	months := engine.HorizonMonths()
	if months <= 0 {
		return []ProjectionPoint{}
	}

	monthlyGrowth := MonthlyGrowthFactor(input.ExpectedReturnRate)
	costDrag := MonthlyCostDrag(engine)
	contribution := rates.MonthlySavingsDifferential

	points := make([]ProjectionPoint, 0, engine.HorizonYears)
	balance := 0.0

	for m := 1; m <= months; m++ {
		if (m-1)%12 == 0 {
			balance -= engine.AnnualFlatFee
		}
		balance = balance*(1+monthlyGrowth-costDrag) + contribution

		if m%12 != 0 {
			continue
		}

		year := m / 12
		price := InflationAdjustedPrice(input.PurchasePrice, year, engine.InflationRate)
		fundBalance := math.Max(0, math.Round(balance))
		if !isFinite(fundBalance) {
			// Returns below -100% have no real monthly rate
			fundBalance = 0
		}
		points = append(points, ProjectionPoint{
			Year:        year,
			FundBalance: fundBalance,
			// Contributions never compound, so the running sum is exactly differential * 12 * year
			CumulativeContributions: contribution * 12 * float64(year),
			InflationAdjustedPrice:  price,
			EquityRatioPercent:      EquityRatioPercent(fundBalance, price),
		})
	}

	return points
}

// RunProjection computes rates and points for one input
func RunProjection(input ProjectionInput, engine EngineConfig) ProjectionResult {
	rates := ComputeRates(input, engine)
	return ProjectionResult{
		Input:  input,
		Rates:  rates,
		Points: Project(input, rates, engine),
	}
}
