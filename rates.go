package main

import "math"

// ComputeRates derives the monthly financing payment and the savings differential.
// It is total over any numeric input; range checks belong to the caller.
func ComputeRates(input ProjectionInput, engine EngineConfig) DerivedRates {
	principal := input.PurchasePrice
	if engine.IncludeAncillaryCosts {
		principal = input.PurchasePrice * (1 + input.AncillaryCostPercentage/100)
	}

	payment := principal * input.FinancingRate() / 100 / 12

	return DerivedRates{
		FinancedPrincipal:       principal,
		MonthlyFinancingPayment: payment,
		// No contribution when the hypothetical payment is below current rent
		MonthlySavingsDifferential: math.Max(0, payment-input.WarmRent),
	}
}
