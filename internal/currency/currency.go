// Package currency renders dollar amounts the way estimate documents show them.
package currency

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is what a missing amount renders as.
const Placeholder = "$0.00"

var printer = message.NewPrinter(language.AmericanEnglish)

// Format renders v as US dollars with thousands separators and exactly two
// fractional digits, e.g. 1234.5 -> "$1,234.50" and -20 -> "-$20.00".
func Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	// Round first so -0.004 does not render as "-$0.00".
	v = math.Round(v*100) / 100
	if v == 0 {
		return Placeholder
	}
	if v < 0 {
		return "-$" + printer.Sprintf("%.2f", -v)
	}
	return "$" + printer.Sprintf("%.2f", v)
}

// FormatOptional renders a possibly absent amount. nil renders as Placeholder.
func FormatOptional(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return Format(*v)
}
