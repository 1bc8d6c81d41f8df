package core

import (
	"math"
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in  Cell
		out string
	}{
		{TextCell("53,027.85"), "R$\u00a053.027,85"},
		{TextCell("R$\u00a01,000"), "R$\u00a01.000,00"},
		{TextCell("1000"), "R$\u00a01.000,00"},
		{TextCell("R$1,234,567.891"), "R$\u00a01.234.567,89"},
		{TextCell("0.5"), "R$\u00a00,50"},
		{NumberCell(-12.5), "-R$\u00a012,50"},
		{NumberCell(99), "R$\u00a099,00"},
		{TextCell("abc"), "abc"},
		{TextCell("#REF!"), "#REF!"},
		{Cell{Kind: CellNumber, Number: math.Inf(1)}, "N/A"},
		{EmptyCell(), Sentinel},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.out {
			t.Fatalf("FormatCurrency(%q) = %q, want %q", tc.in.String(), got, tc.out)
		}
	}
}

func TestFormatPercentage(t *testing.T) {
	cases := []struct {
		in  Cell
		out string
	}{
		{TextCell("75"), "75.00%"},
		{TextCell("82.5%"), "82.50%"},
		{TextCell(" 100 % "), "100.00%"},
		{TextCell("-3.1%"), "-3.10%"},
		{NumberCell(12.345), "12.35%"},
		{TextCell("abc"), "abc"},
		{Cell{Kind: CellNumber, Number: math.Inf(-1)}, "N/A"},
	}
	for _, tc := range cases {
		if got := FormatPercentage(tc.in); got != tc.out {
			t.Fatalf("FormatPercentage(%q) = %q, want %q", tc.in.String(), got, tc.out)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{1234.5, "1.234,50"},
		{0, "0,00"},
		{-1000000, "-1.000.000,00"},
		{math.NaN(), "N/A"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.out {
			t.Fatalf("FormatNumber(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestFormatCell(t *testing.T) {
	if got := FormatCell(NumberCell(42)); got != "42,00" {
		t.Fatalf("number cell: got %q", got)
	}
	if got := FormatCell(TextCell(" 12 alunos ")); got != "12 alunos" {
		t.Fatalf("text cell: got %q", got)
	}
	if got := FormatCell(EmptyCell()); got != Sentinel {
		t.Fatalf("empty cell: got %q", got)
	}
}
