package main

import (
	"fmt"
	"io"
	"strings"
)

// PrintHeader prints the banner and the inputs of one projection
func PrintHeader(w io.Writer, input ProjectionInput, engine EngineConfig) {
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                          FINANZIEREN AUF PROBE                               ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Eingaben:")
	fmt.Fprintln(w, "─────────")
	fmt.Fprintf(w, "  Warmmiete:        %s € / Monat\n", FormatNumber(input.WarmRent))
	fmt.Fprintf(w, "  Kaufpreis:        %s €\n", FormatNumber(input.PurchasePrice))
	fmt.Fprintf(w, "  Rendite:          %s %% p.a. | Zins: %s %% | Tilgung: %s %% | Nebenkosten: %s %%\n",
		FormatRate(input.ExpectedReturnRate), FormatRate(input.InterestRate),
		FormatRate(input.AmortizationRate), FormatRate(input.AncillaryCostPercentage))
	fmt.Fprintf(w, "  Annahmen:         Kosten %s %% p.a., Stückkosten %s € p.a., Inflation %s %% p.a., %d Jahre\n",
		FormatRate(engine.AnnualCostLoad()*100), FormatNumber(engine.AnnualFlatFee),
		FormatRate(engine.InflationRate*100), engine.HorizonYears)

	for _, warning := range input.OutOfRange() {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	fmt.Fprintln(w)
}

// PrintResultSummary prints the derived rates and the yearly table
func PrintResultSummary(w io.Writer, result ProjectionResult) {
	fmt.Fprintln(w, "Monatliche Raten:")
	fmt.Fprintf(w, "  Finanzierter Betrag:          %s\n", FormatEUR(result.Rates.FinancedPrincipal))
	fmt.Fprintf(w, "  Monatliche Finanzierungsrate: %s\n", FormatEUR(result.Rates.MonthlyFinancingPayment))
	fmt.Fprintf(w, "  Monatliche Sparrate:          %s\n", FormatEUR(result.Rates.MonthlySavingsDifferential))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-6s │ %16s │ %16s │ %16s │ %8s\n",
		"Jahr", "Fondsguthaben", "Kum. Sparrate", "Kaufpreis (inf.)", "EK-Quote")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	for _, p := range result.Points {
		fmt.Fprintf(w, "%-6d │ %16s │ %16s │ %16s │ %8s\n",
			p.Year,
			FormatNumber(p.FundBalance)+" €",
			FormatNumber(p.CumulativeContributions)+" €",
			FormatNumber(p.InflationAdjustedPrice)+" €",
			FormatRatio(p.EquityRatioPercent))
	}
	fmt.Fprintln(w, strings.Repeat("─", 78))

	if len(result.Points) == 0 {
		return
	}
	final := result.FinalPoint()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ergebnis:")
	fmt.Fprintf(w, "  Fondsguthaben nach %d Jahren: %s €\n", final.Year, FormatNumber(final.FundBalance))
	fmt.Fprintf(w, "  Eingezahlt:                  %s €\n", FormatNumber(final.CumulativeContributions))
	fmt.Fprintf(w, "  Ertrag nach Kosten:          %s €\n", FormatNumber(result.Gain()))
	fmt.Fprintf(w, "  Eigenkapitalquote:           %s\n", FormatRatio(final.EquityRatioPercent))
	if result.Rates.MonthlySavingsDifferential == 0 {
		fmt.Fprintln(w, "  Hinweis: Die Finanzierungsrate liegt nicht über der Warmmiete, es wird nichts angespart.")
	}
}
