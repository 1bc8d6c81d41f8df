package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MonthNames are the canonical month names shown in the month selector.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthAbbreviations match the first three letters of the sheet's column
// headers (e.g. "Apr/2025"). Index-aligned with MonthNames.
var MonthAbbreviations = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var aggregateMarkers = []string{"total", "média", "media"}

// MonthName returns the canonical name of m, defaulting to January when m
// is out of range.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return MonthNames[0]
	}
	return MonthNames[m-1]
}

// ParseMonth accepts a canonical month name (any case), a three-letter
// abbreviation, or a month number 1-12.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), nil
		}
		return 0, fmt.Errorf("%w: %d", ErrUnknownMonthName, n)
	}
	for i, name := range MonthNames {
		if strings.EqualFold(name, s) || strings.EqualFold(MonthAbbreviations[i], s) {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMonthName, s)
}

// IsAggregateHeader reports whether a column header names a total or an
// average rather than a single month.
func IsAggregateHeader(header string) bool {
	h := strings.ToLower(header)
	for _, m := range aggregateMarkers {
		if strings.Contains(h, m) {
			return true
		}
	}
	return false
}

// MonthFromHeader maps a column header to its month by its leading
// three-letter abbreviation. The abbreviation must be followed by the end
// of the header or a non-letter, so "Jan/2025" and "jan 25" match but
// "Janxyz" does not.
func MonthFromHeader(header string) (time.Month, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	for i, abbr := range MonthAbbreviations {
		if headerHasAbbreviation(h, strings.ToLower(abbr)) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

func headerHasAbbreviation(h, abbr string) bool {
	if !strings.HasPrefix(h, abbr) {
		return false
	}
	rest := h[len(abbr):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLetter(r)
}
