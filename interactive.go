package main

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validateRange rejects values outside the guidance range of field
func validateRange(field string, value float64) error {
	r, ok := LookupInputRange(field)
	if !ok || r.Contains(value) {
		return nil
	}
	return ValidationError{Field: field, Message: fmt.Sprintf("muss zwischen %g und %g liegen", r.Min, r.Max)}
}

// InteractiveInputBuilder prompts for the six inputs, offering the current values as defaults
type InteractiveInputBuilder struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewInteractiveInputBuilder creates a builder reading answers from in and writing prompts to out
func NewInteractiveInputBuilder(in io.Reader, out io.Writer) *InteractiveInputBuilder {
	return &InteractiveInputBuilder{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// germanThousands matches amounts like 1.500.000
var germanThousands = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// parseAmount parses "400000", "400k", "1,5m", "400.000" or "400.000 €"
func parseAmount(input string) (float64, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	input = strings.TrimSpace(strings.TrimSuffix(input, "€"))

	multiplier := 1.0
	if strings.HasSuffix(input, "k") {
		multiplier = 1000
		input = strings.TrimSuffix(input, "k")
	} else if strings.HasSuffix(input, "m") {
		multiplier = 1000000
		input = strings.TrimSuffix(input, "m")
	}

	if germanThousands.MatchString(input) {
		input = strings.ReplaceAll(input, ".", "")
	}
	input = strings.Replace(input, ",", ".", 1)

	val, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, err
	}
	return val * multiplier, nil
}

// parsePercent parses "3.5", "3,5" or "3,5%" as a percent value (3.5)
func parsePercent(input string) (float64, error) {
	input = strings.TrimSpace(input)
	input = strings.TrimSpace(strings.TrimSuffix(input, "%"))
	input = strings.Replace(input, ",", ".", 1)
	return strconv.ParseFloat(input, 64)
}

// prompt asks until parse accepts the answer and the value is inside the field's range.
// An empty answer or end of input keeps the default.
func (b *InteractiveInputBuilder) prompt(label, field, defaultStr string, defaultVal float64, parse func(string) (float64, error)) float64 {
	for {
		fmt.Fprintf(b.out, "%s [%s]: ", label, defaultStr)
		input, err := b.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				fmt.Fprintln(b.out)
			}
			return defaultVal
		}

		val, perr := parse(input)
		if perr != nil {
			fmt.Fprintf(b.out, "  ✗ Ungültige Eingabe: %q\n", input)
			if err != nil {
				return defaultVal
			}
			continue
		}
		if verr := validateRange(field, val); verr != nil {
			fmt.Fprintf(b.out, "  ✗ %s\n", verr.Error())
			if err != nil {
				return defaultVal
			}
			continue
		}
		return val
	}
}

func (b *InteractiveInputBuilder) promptAmount(label, field string, defaultVal float64) float64 {
	return b.prompt(label, field, FormatNumber(defaultVal)+" €", defaultVal, parseAmount)
}

func (b *InteractiveInputBuilder) promptPercent(label, field string, defaultVal float64) float64 {
	return b.prompt(label, field, FormatRate(defaultVal)+" %", defaultVal, parsePercent)
}

// BuildInput prompts every input field in turn
func (b *InteractiveInputBuilder) BuildInput(defaults ProjectionInput) ProjectionInput {
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(b.out, "║                    FINANZIEREN AUF PROBE - EINGABEN                          ║")
	fmt.Fprintln(b.out, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(b.out, "Enter übernimmt den Wert in Klammern.")
	fmt.Fprintln(b.out)

	return ProjectionInput{
		WarmRent:                b.promptAmount("Aktuelle Warmmiete pro Monat", "warm_rent", defaults.WarmRent),
		PurchasePrice:           b.promptAmount("Kaufpreis der Wunschimmobilie", "purchase_price", defaults.PurchasePrice),
		ExpectedReturnRate:      b.promptPercent("Renditeerwartung p.a.", "expected_return_rate", defaults.ExpectedReturnRate),
		InterestRate:            b.promptPercent("Zins p.a.", "interest_rate", defaults.InterestRate),
		AmortizationRate:        b.promptPercent("Tilgung p.a.", "amortization_rate", defaults.AmortizationRate),
		AncillaryCostPercentage: b.promptPercent("Nebenkosten in % vom Kaufpreis", "ancillary_cost_percentage", defaults.AncillaryCostPercentage),
	}
}
