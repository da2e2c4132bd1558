package main

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// nbsp separates amount and currency symbol the way de-DE currency formatting does
const nbsp = "\u00a0"

// germanPrinter formats numbers with "." as thousands and "," as decimal separator
func germanPrinter() *message.Printer {
	return message.NewPrinter(language.German)
}

// FormatNumber formats a value rounded to whole units with German grouping, e.g. 1.234.567
func FormatNumber(value float64) string {
	if !isFinite(value) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	rounded := decimal.NewFromFloat(value).Round(0)
	return germanPrinter().Sprintf("%d", rounded.IntPart())
}

// FormatEUR formats a currency amount with two decimals and a trailing euro sign, e.g. 2.016,67 €
func FormatEUR(value float64) string {
	if !isFinite(value) {
		return strconv.FormatFloat(value, 'f', -1, 64) + nbsp + "€"
	}
	cents := decimal.NewFromFloat(value).Round(2)
	return germanPrinter().Sprintf("%.2f", cents.InexactFloat64()) + nbsp + "€"
}

// FormatRate formats a percent input with one decimal, e.g. "3.5"
func FormatRate(percent float64) string {
	return strconv.FormatFloat(percent, 'f', 1, 64)
}

// FormatRatio formats an equity ratio with one decimal in German notation, e.g. "47,6 %"
func FormatRatio(percent float64) string {
	return germanPrinter().Sprintf("%.1f", percent) + nbsp + "%"
}

// decimal panics on NaN and Inf, which degenerate inputs can produce
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
