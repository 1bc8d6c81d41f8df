// Package core holds the table model, month inference and KPI projection
// for the yearly financial sheet.
//
// This file contains the display formatting of currency, percentage and
// plain numeric values in the Brazilian locale.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	currencySymbol = "R$"
	// notAvailable is shown for numeric input that cannot be rendered.
	notAvailable = "N/A"
	nbsp         = "\u00a0"
)

var displayLocale = language.BrazilianPortuguese

// FormatCurrency renders a value as Brazilian reais, e.g. "R$ 53.027,85"
// (with a non-breaking space after the symbol).
//
// Text input may carry the "R$" marker and comma thousands separators as
// exported by the sheet ("53,027.85"). Text that does not parse is
// returned unchanged; a number that cannot be rendered yields "N/A".
func FormatCurrency(c Cell) string {
	d, ok := cellDecimal(c, func(s string) string {
		s = strings.TrimSpace(strings.Replace(s, currencySymbol, "", 1))
		return strings.ReplaceAll(s, ",", "")
	})
	if !ok {
		return fallback(c)
	}
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + currencySymbol + nbsp + formatFixed2(d.InexactFloat64())
}

// FormatPercentage renders a value as a percentage with two decimals,
// e.g. "75" -> "75.00%". Text input may end with "%". Fallbacks are the
// same as FormatCurrency.
func FormatPercentage(c Cell) string {
	d, ok := parsePercentage(c)
	if !ok {
		return fallback(c)
	}
	return d.StringFixed(2) + "%"
}

// FormatNumber renders a plain number with Brazilian grouping and two
// decimals, e.g. 1234.5 -> "1.234,50".
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return notAvailable
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + formatFixed2(decimal.NewFromFloat(f).Round(2).InexactFloat64())
}

// FormatCell renders a cell for display: numbers are grouped, text is
// shown as is and empty cells show the sentinel.
func FormatCell(c Cell) string {
	if c.Kind == CellNumber {
		return FormatNumber(c.Number)
	}
	return c.String()
}

func parsePercentage(c Cell) (decimal.Decimal, bool) {
	return cellDecimal(c, func(s string) string {
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	})
}

// cellDecimal parses a cell as a decimal, cleaning text input first.
func cellDecimal(c Cell, clean func(string) string) (decimal.Decimal, bool) {
	switch c.Kind {
	case CellNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(c.Number), true
	case CellText:
		d, err := decimal.NewFromString(clean(c.Text))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

func fallback(c Cell) string {
	if c.Kind == CellNumber {
		return notAvailable
	}
	return c.String()
}

// formatFixed2 formats a non-negative value with locale grouping and
// exactly two fraction digits. A printer is built per call because
// message.Printer is not safe for concurrent use.
func formatFixed2(f float64) string {
	p := message.NewPrinter(displayLocale)
	return p.Sprint(number.Decimal(f, number.Scale(2)))
}
