package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel is the display value of a cell that holds no data.
const Sentinel = "-"

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

type (
	CellKind uint8

	// Cell is a single spreadsheet value, classified once when the raw
	// grid is normalized.
	Cell struct {
		Kind   CellKind
		Text   string
		Number float64
	}

	// IndicatorRow is one named metric with a value per column header.
	IndicatorRow struct {
		Name   string
		Values []Cell
	}

	// FinancialTable is the normalized content of one year tab.
	FinancialTable struct {
		Year string
		// Corner is the label found above the indicator names (row 0, column 0).
		Corner              string
		ColumnHeaders       []string
		IndicatorRows       []IndicatorRow
		AnnualProfitability string
	}

	// RawYear is what a sheet source returns for a year before normalization.
	RawYear struct {
		Year string
		// Rows starts at the header row; Rows[0] holds the column headers.
		Rows [][]any
		// Profitability is the raw content of the annual profitability cell, or nil.
		Profitability any
	}
)

var (
	ErrEmptyLabel       = errors.New("empty card label")
	ErrEmptyIndicator   = errors.New("empty indicator name")
	ErrDuplicateLabel   = errors.New("duplicate card label")
	ErrUnknownFormat    = errors.New("unknown format kind")
	ErrCardCount        = errors.New("unexpected number of cards")
	ErrUnknownKeyCard   = errors.New("key card not found")
	ErrUnknownMonthName = errors.New("unknown month")
)

// EmptyCell returns the cell displayed as Sentinel.
func EmptyCell() Cell { return Cell{Kind: CellEmpty} }

// TextCell returns a text cell, or an empty cell when s is blank or the sentinel.
func TextCell(s string) Cell {
	s = strings.TrimSpace(s)
	if s == "" || s == Sentinel {
		return EmptyCell()
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a numeric cell. NaN is treated as no data.
func NumberCell(f float64) Cell {
	if math.IsNaN(f) {
		return EmptyCell()
	}
	return Cell{Kind: CellNumber, Number: f}
}

// CellFromRaw classifies a value as decoded from a Sheets API response
// or a workbook reader.
func CellFromRaw(v any) Cell {
	switch x := v.(type) {
	case nil:
		return EmptyCell()
	case Cell:
		return x
	case string:
		return TextCell(x)
	case float64:
		return NumberCell(x)
	case float32:
		return NumberCell(float64(x))
	case int:
		return NumberCell(float64(x))
	case int64:
		return NumberCell(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return NumberCell(f)
		}
		return TextCell(x.String())
	default:
		return TextCell(fmt.Sprint(x))
	}
}

// IsEmpty reports whether the cell holds no data.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String returns the raw, unformatted text of the cell.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return Sentinel
	}
}

// Indicator returns the first row whose name equals name, ignoring case
// and surrounding whitespace.
func (t FinancialTable) Indicator(name string) (IndicatorRow, bool) {
	name = strings.TrimSpace(name)
	for _, row := range t.IndicatorRows {
		if strings.EqualFold(strings.TrimSpace(row.Name), name) {
			return row, true
		}
	}
	return IndicatorRow{}, false
}

// IsEmpty reports whether the table has neither headers nor rows.
func (t FinancialTable) IsEmpty() bool {
	return len(t.ColumnHeaders) == 0 && len(t.IndicatorRows) == 0
}

// Value returns the cell at column i, or an empty cell when out of range.
func (r IndicatorRow) Value(i int) Cell {
	if i < 0 || i >= len(r.Values) {
		return EmptyCell()
	}
	return r.Values[i]
}
