package sheets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"painel/internal/core"
)

// Ports for outbound adapters.
type (
	// YearLister returns the year tabs of the workbook, most recent first.
	YearLister interface {
		ListYears(ctx context.Context) ([]string, error)
	}

	// YearReader returns the raw grid and profitability cell of one year tab.
	YearReader interface {
		ReadYear(ctx context.Context, year string) (core.RawYear, error)
	}

	// Source is implemented by every data backend.
	Source interface {
		YearLister
		YearReader
	}
)

// ErrYearNotFound is returned when the requested tab does not exist.
var ErrYearNotFound = errors.New("year tab not found")

// APIError is a failure reported by the remote spreadsheet service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("HTTP error %d", e.Status)
	}
	return e.Message
}

// Layout describes where the table lives inside a year tab. Rows are
// 1-based as in A1 notation.
type Layout struct {
	HeaderRow         int
	DataStartRow      int
	ExtraRows         int
	MaxColumn         string
	ProfitabilityCell string
}

// DefaultLayout matches the finance workbook: headers on row 6, data from
// row 7, up to 100 indicator rows in columns A..P and the annual
// profitability in K1.
func DefaultLayout() Layout {
	return Layout{
		HeaderRow:         6,
		DataStartRow:      7,
		ExtraRows:         100,
		MaxColumn:         "P",
		ProfitabilityCell: "K1",
	}
}

// LastRow is the last row read for the table.
func (l Layout) LastRow() int { return l.DataStartRow + l.ExtraRows }

// MainRange returns the A1 range holding the header and indicator rows.
func (l Layout) MainRange(year string) string {
	return fmt.Sprintf("%s!A%d:%s%d", QuoteSheetName(year), l.HeaderRow, l.MaxColumn, l.LastRow())
}

// ProfitabilityRange returns the A1 reference of the profitability cell.
func (l Layout) ProfitabilityRange(year string) string {
	return fmt.Sprintf("%s!%s", QuoteSheetName(year), l.ProfitabilityCell)
}

// Validate checks that the layout addresses a non-empty area.
func (l Layout) Validate() error {
	var errs []error
	if l.HeaderRow < 1 {
		errs = append(errs, fmt.Errorf("header row must be >= 1, got %d", l.HeaderRow))
	}
	if l.DataStartRow <= l.HeaderRow {
		errs = append(errs, fmt.Errorf("data start row %d must follow header row %d", l.DataStartRow, l.HeaderRow))
	}
	if l.ExtraRows < 0 {
		errs = append(errs, fmt.Errorf("extra rows must be >= 0, got %d", l.ExtraRows))
	}
	if !IsColumn(l.MaxColumn) {
		errs = append(errs, fmt.Errorf("invalid max column %q", l.MaxColumn))
	}
	if strings.TrimSpace(l.ProfitabilityCell) == "" {
		errs = append(errs, errors.New("profitability cell is required"))
	}
	return errors.Join(errs...)
}

// QuoteSheetName wraps a tab name in single quotes for A1 notation,
// doubling embedded quotes.
func QuoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// IsColumn reports whether s is an upper-case column reference such as "P" or "AB".
func IsColumn(s string) bool {
	if s == "" || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// SortYearsDesc orders tab names in descending order, so the most recent
// year comes before older ones and the oldest year ends the list. Names
// that are not numbers sort before the years, also descending.
func SortYearsDesc(years []string) {
	sort.SliceStable(years, func(i, j int) bool {
		a, aErr := strconv.Atoi(strings.TrimSpace(years[i]))
		b, bErr := strconv.Atoi(strings.TrimSpace(years[j]))
		switch {
		case aErr == nil && bErr == nil:
			return a > b
		case aErr == nil:
			return false
		case bErr == nil:
			return true
		default:
			li, lj := strings.ToLower(years[i]), strings.ToLower(years[j])
			if li != lj {
				return li > lj
			}
			return years[i] > years[j]
		}
	})
}
