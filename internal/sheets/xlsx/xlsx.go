// Package xlsx reads year tabs from an exported Excel workbook with the
// same layout as the Google spreadsheet.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"painel/internal/core"
	ports "painel/internal/sheets"
)

// Workbook is a file-backed source. The file is reopened on every call so
// an updated export is picked up without a restart.
type Workbook struct {
	path      string
	layout    ports.Layout
	maxColumn int
}

var _ ports.Source = (*Workbook)(nil)

func New(path string, layout ports.Layout) (*Workbook, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("missing workbook path")
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("sheet layout: %w", err)
	}
	maxCol, err := excelize.ColumnNameToNumber(layout.MaxColumn)
	if err != nil {
		return nil, fmt.Errorf("sheet layout: %w", err)
	}
	return &Workbook{path: path, layout: layout, maxColumn: maxCol}, nil
}

// ListYears returns the sheet names, most recent year first.
func (w *Workbook) ListYears(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var years []string
	for _, name := range f.GetSheetList() {
		if name = strings.TrimSpace(name); name != "" {
			years = append(years, name)
		}
	}
	ports.SortYearsDesc(years)
	return years, nil
}

// ReadYear returns the table area and the profitability cell of a sheet.
func (w *Workbook) ReadYear(ctx context.Context, year string) (core.RawYear, error) {
	if err := ctx.Err(); err != nil {
		return core.RawYear{}, err
	}
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return core.RawYear{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(year); err != nil || idx < 0 {
		return core.RawYear{}, fmt.Errorf("%w: %q", ports.ErrYearNotFound, year)
	}

	rows, err := f.GetRows(year)
	if err != nil {
		return core.RawYear{}, fmt.Errorf("read sheet %q: %w", year, err)
	}
	prof, err := f.GetCellValue(year, w.layout.ProfitabilityCell)
	if err != nil {
		return core.RawYear{}, fmt.Errorf("read %s: %w", w.layout.ProfitabilityRange(year), err)
	}

	raw := core.RawYear{Year: year, Rows: w.window(rows)}
	if strings.TrimSpace(prof) != "" {
		raw.Profitability = prof
	}
	return raw, nil
}

// window cuts the rows down to the header row through the last data row
// and the columns up to the layout's max column. Trailing empty rows are
// dropped, as the Sheets API does.
func (w *Workbook) window(rows [][]string) [][]any {
	first := w.layout.HeaderRow - 1
	last := min(w.layout.LastRow(), len(rows))
	for last > first && len(rows[last-1]) == 0 {
		last--
	}
	if first >= last {
		return nil
	}
	out := make([][]any, 0, last-first)
	for _, r := range rows[first:last] {
		r = r[:min(len(r), w.maxColumn)]
		cells := make([]any, len(r))
		for i, v := range r {
			cells[i] = v
		}
		out = append(out, cells)
	}
	return out
}
