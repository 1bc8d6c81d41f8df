package http

import (
	"strings"
	"time"

	"painel/internal/core"
	"painel/internal/services"
)

// sectionRows are indicator names used as group headings in the sheet.
var sectionRows = map[string]struct{}{
	"FINANCEIRO": {},
	"KPI ALUNOS": {},
}

// numericSampleRows bounds how many data rows decide a column's alignment.
const numericSampleRows = 6

type (
	monthOption struct {
		Value    int
		Name     string
		Selected bool
	}

	cellView struct {
		Text    string
		Numeric bool
	}

	rowView struct {
		Name    string
		Section bool
		Striped bool
		Cells   []cellView
	}

	headerView struct {
		Text    string
		Numeric bool
	}

	tableView struct {
		Year    string
		Corner  string
		Headers []headerView
		Rows    []rowView
	}

	// pageData is the root value handed to every template.
	pageData struct {
		Title     string
		Copyright int
		// Login page
		LoginError string
		Username   string
		// Dashboard
		View   services.View
		Months []monthOption
		Table  *tableView
	}
)

func (s *Server) loginPage(username, loginErr string) pageData {
	return pageData{
		Title:      s.title,
		Copyright:  time.Now().Year(),
		LoginError: loginErr,
		Username:   username,
	}
}

func (s *Server) dashboardPage(v services.View) pageData {
	return pageData{
		Title:     s.title,
		Copyright: time.Now().Year(),
		View:      v,
		Months:    monthOptions(v.Month),
		Table:     newTableView(v.Table),
	}
}

func monthOptions(selected time.Month) []monthOption {
	opts := make([]monthOption, 0, len(core.MonthNames))
	for i, name := range core.MonthNames {
		m := time.Month(i + 1)
		opts = append(opts, monthOption{Value: int(m), Name: name, Selected: m == selected})
	}
	return opts
}

func isSectionRow(name string) bool {
	_, ok := sectionRows[strings.ToUpper(strings.TrimSpace(name))]
	return ok
}

// newTableView prepares a table for display: cells are formatted, section
// rows are flagged and columns holding numbers are right aligned.
func newTableView(t *core.FinancialTable) *tableView {
	if t == nil || len(t.IndicatorRows) == 0 {
		return nil
	}

	numeric := make([]bool, len(t.ColumnHeaders))
	for j := range numeric {
		numeric[j] = isNumericColumn(*t, j)
	}

	tv := &tableView{Year: t.Year, Corner: t.Corner}
	for j, h := range t.ColumnHeaders {
		tv.Headers = append(tv.Headers, headerView{Text: h, Numeric: numeric[j]})
	}
	for i, r := range t.IndicatorRows {
		rv := rowView{Name: r.Name, Section: isSectionRow(r.Name), Striped: i%2 == 1}
		for j, c := range r.Values {
			rv.Cells = append(rv.Cells, cellView{Text: core.FormatCell(c), Numeric: numeric[j] && !rv.Section})
		}
		tv.Rows = append(tv.Rows, rv)
	}
	return tv
}

func isNumericColumn(t core.FinancialTable, col int) bool {
	sampled := 0
	for _, r := range t.IndicatorRows {
		if isSectionRow(r.Name) {
			continue
		}
		if looksNumeric(r.Value(col)) {
			return true
		}
		sampled++
		if sampled >= numericSampleRows {
			break
		}
	}
	return false
}

func looksNumeric(c core.Cell) bool {
	switch c.Kind {
	case core.CellNumber:
		return true
	case core.CellText:
		s := c.Text
		if strings.HasPrefix(s, "R$") || strings.Contains(s, "%") {
			return true
		}
		return s != "" && (s[0] == '-' || s[0] >= '0' && s[0] <= '9')
	default:
		return false
	}
}
