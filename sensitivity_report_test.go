package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReturnRates(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 2, 3}, buildReturnRates(0, 3, 1))

	tenths := buildReturnRates(0, 1, 0.1)
	require.Len(t, tenths, 11)
	assert.Equal(t, 0.3, tenths[3], "no accumulated drift")
	assert.Equal(t, 1.0, tenths[10])

	assert.Equal(t, []float64{5}, buildReturnRates(5, 5, 1))
	assert.Equal(t, []float64{5}, buildReturnRates(5, 1, 1), "inverted range yields the start only")
}

func TestBuildReturnRates_BoundedLength(t *testing.T) {
	assert.Len(t, buildReturnRates(0, 1e18, 1e-9), maxSensitivityRows, "span beyond int range")
	assert.Len(t, buildReturnRates(0, 1e6, 0.001), maxSensitivityRows)
	assert.Equal(t, []float64{3}, buildReturnRates(3, 5, math.NaN()))
}

func TestSensitivityConfig_Validate(t *testing.T) {
	valid := []SensitivityConfig{
		{},
		{ReturnMin: 0, ReturnMax: 15, Step: 1},
		{ReturnMin: 4, ReturnMax: 8, Step: 2},
		{ReturnMin: 0, ReturnMax: 15, Step: 0.1},
		{ReturnMin: 5, ReturnMax: 5},
	}
	for _, cfg := range valid {
		assert.NoError(t, cfg.Validate(), "%+v", cfg)
	}

	invalid := []SensitivityConfig{
		{ReturnMin: 8, ReturnMax: 4, Step: 1},
		{ReturnMin: 0, ReturnMax: 15, Step: -1},
		{ReturnMin: 0, ReturnMax: 15, Step: 0.001},
		{ReturnMin: 0, ReturnMax: 1e18, Step: 1e-9},
		{ReturnMin: -150, ReturnMax: 5, Step: 1},
		{ReturnMin: 0, ReturnMax: 16, Step: 1},
		{ReturnMin: 0, ReturnMax: 15, Step: math.NaN()},
	}
	for _, cfg := range invalid {
		err := cfg.Validate()
		require.Error(t, err, "%+v", cfg)
		var verr ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestRunSensitivityAnalysis_ScenarioA(t *testing.T) {
	analysis := RunSensitivityAnalysis(scenarioA(), DefaultEngineConfig(), SensitivityConfig{ReturnMin: 0, ReturnMax: 15, Step: 1})

	require.Len(t, analysis.Rows, 16)
	assert.Equal(t, 15, analysis.HorizonYears)
	assertMoneyEquals(t, 1016.67, analysis.Rates.MonthlySavingsDifferential, "shared differential")

	assert.Equal(t, 163485.0, analysis.Rows[0].FinalBalance)
	assert.Equal(t, 256515.0, analysis.Rows[6].FinalBalance)
	assert.Equal(t, 47.6, analysis.Rows[6].EquityRatioPercent)
	assert.Equal(t, 533959.0, analysis.Rows[15].FinalBalance)
	assertMoneyEquals(t, 183000, analysis.Rows[15].Contributions, "contributions do not depend on return")

	rate, ok := analysis.BreakEvenReturn()
	require.True(t, ok)
	assert.Equal(t, 2.0, rate)
}

func TestRunSensitivityAnalysis_DefaultsWhenUnset(t *testing.T) {
	analysis := RunSensitivityAnalysis(scenarioA(), DefaultEngineConfig(), SensitivityConfig{})
	require.Len(t, analysis.Rows, 16)
	assert.Equal(t, 15.0, analysis.Rows[15].ExpectedReturnRate)
}

func TestSensitivity_NoBreakEvenWithoutContributions(t *testing.T) {
	analysis := RunSensitivityAnalysis(scenarioB(), DefaultEngineConfig(), SensitivityConfig{ReturnMin: 0, ReturnMax: 15, Step: 5})
	require.Len(t, analysis.Rows, 4)

	_, ok := analysis.BreakEvenReturn()
	assert.False(t, ok)
}

func TestInvariant_SensitivityMatchesProjection(t *testing.T) {
	engine := DefaultEngineConfig()
	analysis := RunSensitivityAnalysis(scenarioA(), engine, SensitivityConfig{ReturnMin: 0, ReturnMax: 15, Step: 3})

	for _, row := range analysis.Rows {
		input := scenarioA()
		input.ExpectedReturnRate = row.ExpectedReturnRate
		final := RunProjection(input, engine).FinalPoint()
		assert.Equal(t, final.FundBalance, row.FinalBalance, "return %.0f%%", row.ExpectedReturnRate)
	}
}

func TestPrintSensitivity(t *testing.T) {
	var buf bytes.Buffer
	PrintSensitivity(&buf, RunSensitivityAnalysis(scenarioA(), DefaultEngineConfig(), SensitivityConfig{ReturnMax: 15, Step: 1}))

	out := buf.String()
	assert.Contains(t, out, "RENDITE-SENSITIVITÄT (Jahr 15)")
	assert.Contains(t, out, "256.515 €")
	assert.Contains(t, out, "Kosten gedeckt ab: 2.0 % p.a.")
}
