package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCellFromRaw(t *testing.T) {
	cases := []struct {
		in   any
		kind CellKind
		str  string
	}{
		{nil, CellEmpty, Sentinel},
		{"", CellEmpty, Sentinel},
		{"   ", CellEmpty, Sentinel},
		{"-", CellEmpty, Sentinel},
		{" 1,000 ", CellText, "1,000"},
		{"R$ 10", CellText, "R$ 10"},
		{12.5, CellNumber, "12.5"},
		{7, CellNumber, "7"},
		{int64(3), CellNumber, "3"},
		{json.Number("4.25"), CellNumber, "4.25"},
		{true, CellText, "true"},
		{math.NaN(), CellEmpty, Sentinel},
	}
	for _, tc := range cases {
		c := CellFromRaw(tc.in)
		if c.Kind != tc.kind || c.String() != tc.str {
			t.Fatalf("CellFromRaw(%#v) = kind %d %q, want kind %d %q", tc.in, c.Kind, c.String(), tc.kind, tc.str)
		}
	}
}

func TestIndicatorLookupFirstMatch(t *testing.T) {
	tbl := FinancialTable{
		ColumnHeaders: []string{"Jan/2025"},
		IndicatorRows: []IndicatorRow{
			{Name: "Lucro Total", Values: []Cell{TextCell("1")}},
			{Name: "LUCRO TOTAL", Values: []Cell{TextCell("2")}},
		},
	}
	row, ok := tbl.Indicator("  lucro total ")
	if !ok {
		t.Fatalf("expected match")
	}
	if got := row.Value(0).String(); got != "1" {
		t.Fatalf("expected first match, got %q", got)
	}
	if _, ok := tbl.Indicator("DESPESAS:"); ok {
		t.Fatalf("unexpected match")
	}
}

func TestIndicatorRowValueOutOfRange(t *testing.T) {
	r := IndicatorRow{Name: "x", Values: []Cell{TextCell("1")}}
	if !r.Value(5).IsEmpty() || !r.Value(-1).IsEmpty() {
		t.Fatalf("expected empty cells out of range")
	}
}
