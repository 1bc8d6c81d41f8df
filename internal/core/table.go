package core

import (
	"fmt"
	"strings"
)

// NewFinancialTable normalizes a raw year grid into a fixed-width table.
//
// Column headers are the non-blank cells of the first row after the name
// column. Every following row with a non-blank name becomes an indicator
// row holding exactly one cell per header; cells missing from short rows
// are empty and cells beyond the last header are dropped.
func NewFinancialTable(raw RawYear) FinancialTable {
	t := FinancialTable{
		Year:          raw.Year,
		ColumnHeaders: []string{},
		IndicatorRows: []IndicatorRow{},
	}
	if p := CellFromRaw(raw.Profitability); !p.IsEmpty() {
		t.AnnualProfitability = p.String()
	}
	if len(raw.Rows) == 0 {
		return t
	}

	header := raw.Rows[0]
	if len(header) > 0 {
		t.Corner = rawText(header[0])
	}
	for _, v := range header[min(1, len(header)):] {
		if h := rawText(v); h != "" {
			t.ColumnHeaders = append(t.ColumnHeaders, h)
		}
	}

	for _, row := range raw.Rows[1:] {
		if len(row) == 0 {
			continue
		}
		name := rawText(row[0])
		if name == "" {
			continue
		}
		values := make([]Cell, len(t.ColumnHeaders))
		for j := range values {
			if j+1 < len(row) {
				values[j] = CellFromRaw(row[j+1])
			}
		}
		t.IndicatorRows = append(t.IndicatorRows, IndicatorRow{Name: name, Values: values})
	}
	return t
}

func rawText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
