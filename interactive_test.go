package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"400000", 400000},
		{"400k", 400000},
		{"1,5m", 1500000},
		{"400.000", 400000},
		{"1.500.000 €", 1500000},
		{"1.5", 1.5},
		{"950,50", 950.5},
	}
	for _, tc := range tests {
		val, err := parseAmount(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, val, tc.input)
	}

	_, err := parseAmount("viel")
	assert.Error(t, err)
}

func TestParsePercent(t *testing.T) {
	for input, expected := range map[string]float64{"3.5": 3.5, "3,5": 3.5, "6%": 6, " 2,0 % ": 2} {
		val, err := parsePercent(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, val, input)
	}
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, validateRange("interest_rate", 10))
	err := validateRange("interest_rate", 10.5)
	require.Error(t, err)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "interest_rate", verr.Field)

	assert.NoError(t, validateRange("unknown_field", -1))
}

func TestBuildInput(t *testing.T) {
	answers := strings.Join([]string{
		"1200",  // rent
		"",      // price keeps default
		"6,5",   // return
		"abc",   // interest: rejected
		"4",     // interest
		"20",    // amortization: outside 0..10
		"3",     // amortization
	}, "\n") + "\n" // ancillary: end of input keeps default

	var out bytes.Buffer
	input := NewInteractiveInputBuilder(strings.NewReader(answers), &out).BuildInput(scenarioA())

	assert.Equal(t, ProjectionInput{
		WarmRent:                1200,
		PurchasePrice:           400000,
		ExpectedReturnRate:      6.5,
		InterestRate:            4,
		AmortizationRate:        3,
		AncillaryCostPercentage: 10,
	}, input)

	prompts := out.String()
	assert.Contains(t, prompts, "Aktuelle Warmmiete pro Monat [1.000 €]")
	assert.Contains(t, prompts, "Ungültige Eingabe")
	assert.Contains(t, prompts, "amortization_rate: muss zwischen 0 und 10 liegen")
}
