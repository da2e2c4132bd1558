package main

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// SensitivityRow is the end-of-horizon outcome for one expected return rate
type SensitivityRow struct {
	ExpectedReturnRate float64 `json:"expected_return_rate"`
	FinalBalance       float64 `json:"final_balance"`
	Contributions      float64 `json:"contributions"`
	Gain               float64 `json:"gain"`
	EquityRatioPercent float64 `json:"equity_ratio_percent"`
}

// SensitivityAnalysis holds the return sweep for one input
type SensitivityAnalysis struct {
	Input        ProjectionInput  `json:"input"`
	Rates        DerivedRates     `json:"rates"`
	HorizonYears int              `json:"horizon_years"`
	Rows         []SensitivityRow `json:"rows"`
}

// maxSensitivityRows bounds the sweep; every row is a full projection
const maxSensitivityRows = 1000

// withDefaults fills an unset step (1) and an unset range (0..15)
func (c SensitivityConfig) withDefaults() SensitivityConfig {
	if c.Step == 0 {
		c.Step = 1
	}
	if c.ReturnMin == 0 && c.ReturnMax == 0 {
		c.ReturnMax = 15
	}
	return c
}

// Validate checks the sweep after defaults: both bounds inside the expected
// return guidance range, a positive step and at most maxSensitivityRows rows.
func (c SensitivityConfig) Validate() error {
	c = c.withDefaults()
	r, _ := LookupInputRange("expected_return_rate")
	if !r.Contains(c.ReturnMin) || !r.Contains(c.ReturnMax) {
		return ValidationError{Field: "return_min/return_max", Message: fmt.Sprintf("müssen zwischen %g und %g liegen", r.Min, r.Max)}
	}
	if c.ReturnMax < c.ReturnMin {
		return ValidationError{Field: "return_max", Message: "muss mindestens return_min sein"}
	}
	if !(c.Step > 0) {
		return ValidationError{Field: "step", Message: "muss größer als 0 sein"}
	}
	if rows := (c.ReturnMax-c.ReturnMin)/c.Step + 1; rows > maxSensitivityRows {
		return ValidationError{Field: "step", Message: fmt.Sprintf("ergibt %.0f Zeilen, höchstens %d erlaubt", math.Floor(rows), maxSensitivityRows)}
	}
	return nil
}

// buildReturnRates generates return rates from min to max inclusive.
// Rates are computed from the index, not accumulated, so 0.1 steps do not drift.
// The result never exceeds maxSensitivityRows entries.
func buildReturnRates(min, max, step float64) []float64 {
	if !(step > 0) || !(max >= min) {
		return []float64{min}
	}
	// Compare in float space; huge spans overflow int
	count := math.Floor((max-min)/step+1e-9) + 1
	if !(count <= maxSensitivityRows) {
		count = maxSensitivityRows
	}
	rates := make([]float64, int(count))
	for i := range rates {
		rates[i] = math.Round((min+float64(i)*step)*1e6) / 1e6
	}
	return rates
}

// RunSensitivityAnalysis projects input once per expected return rate in cfg.
// The derived rates do not depend on the return, so every row shares them.
func RunSensitivityAnalysis(input ProjectionInput, engine EngineConfig, cfg SensitivityConfig) SensitivityAnalysis {
	cfg = cfg.withDefaults()

	analysis := SensitivityAnalysis{
		Input:        input,
		Rates:        ComputeRates(input, engine),
		HorizonYears: engine.HorizonYears,
	}

	for _, rate := range buildReturnRates(cfg.ReturnMin, cfg.ReturnMax, cfg.Step) {
		in := input
		in.ExpectedReturnRate = rate
		result := ProjectionResult{Input: in, Rates: analysis.Rates, Points: Project(in, analysis.Rates, engine)}
		final := result.FinalPoint()
		analysis.Rows = append(analysis.Rows, SensitivityRow{
			ExpectedReturnRate: rate,
			FinalBalance:       final.FundBalance,
			Contributions:      final.CumulativeContributions,
			Gain:               result.Gain(),
			EquityRatioPercent: final.EquityRatioPercent,
		})
	}
	return analysis
}

// BreakEvenReturn returns the lowest swept return whose final balance covers all contributions.
// ok is false when no swept rate breaks even.
func (a SensitivityAnalysis) BreakEvenReturn() (rate float64, ok bool) {
	for _, row := range a.Rows {
		if row.Contributions > 0 && row.Gain >= 0 {
			return row.ExpectedReturnRate, true
		}
	}
	return 0, false
}

// PrintSensitivity writes the sweep as a console table
func PrintSensitivity(w io.Writer, a SensitivityAnalysis) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintf(w, "RENDITE-SENSITIVITÄT (Jahr %d)\n", a.HorizonYears)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintf(w, "Monatliche Sparrate: %s\n\n", FormatEUR(a.Rates.MonthlySavingsDifferential))

	fmt.Fprintf(w, "%-10s %18s %18s %16s %10s\n", "Rendite", "Fondsguthaben", "Eingezahlt", "Ertrag", "EK-Quote")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, row := range a.Rows {
		fmt.Fprintf(w, "%-10s %18s %18s %16s %10s\n",
			FormatRate(row.ExpectedReturnRate)+" %",
			FormatNumber(row.FinalBalance)+" €",
			FormatNumber(row.Contributions)+" €",
			FormatNumber(row.Gain)+" €",
			FormatRatio(row.EquityRatioPercent))
	}
	fmt.Fprintln(w, strings.Repeat("-", 78))

	if rate, ok := a.BreakEvenReturn(); ok {
		fmt.Fprintf(w, "Kosten gedeckt ab: %s %% p.a.\n", FormatRate(rate))
	} else {
		fmt.Fprintln(w, "Kosten werden in keinem Szenario gedeckt.")
	}
}
