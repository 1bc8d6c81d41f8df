package memory

import (
	"context"
	"fmt"
	"sync"

	"painel/internal/core"
	ports "painel/internal/sheets"
)

// Store is an in-memory workbook used for development and tests.
type Store struct {
	mu    sync.RWMutex
	years map[string]core.RawYear
}

var _ ports.Source = (*Store)(nil)

func New() *Store {
	return &Store{years: map[string]core.RawYear{}}
}

// NewWithSample returns a store seeded with two demo years.
func NewWithSample() *Store {
	s := New()
	for _, y := range sampleYears() {
		s.Put(y)
	}
	return s
}

// Put stores or replaces a year tab. Rows are copied.
func (s *Store) Put(raw core.RawYear) {
	rows := make([][]any, len(raw.Rows))
	for i, r := range raw.Rows {
		rows[i] = append([]any(nil), r...)
	}
	raw.Rows = rows
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years[raw.Year] = raw
}

// Delete removes a year tab.
func (s *Store) Delete(year string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.years, year)
}

// ListYears returns the stored tabs, most recent first.
func (s *Store) ListYears(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.years))
	for y := range s.years {
		out = append(out, y)
	}
	ports.SortYearsDesc(out)
	return out, nil
}

// ReadYear returns a copy of the stored tab.
func (s *Store) ReadYear(ctx context.Context, year string) (core.RawYear, error) {
	if err := ctx.Err(); err != nil {
		return core.RawYear{}, err
	}
	s.mu.RLock()
	raw, ok := s.years[year]
	s.mu.RUnlock()
	if !ok {
		return core.RawYear{}, fmt.Errorf("%w: %q", ports.ErrYearNotFound, year)
	}
	rows := make([][]any, len(raw.Rows))
	for i, r := range raw.Rows {
		rows[i] = append([]any(nil), r...)
	}
	raw.Rows = rows
	return raw, nil
}

func sampleYears() []core.RawYear {
	header := func(y string) []any {
		return []any{"FINANCEIRO",
			"Jan/" + y, "Feb/" + y, "Mar/" + y, "Apr/" + y, "May/" + y, "Jun/" + y,
			"Jul/" + y, "Aug/" + y, "Sep/" + y, "Oct/" + y, "Nov/" + y, "Dec/" + y,
			"TOTAL", "MÉDIA"}
	}
	return []core.RawYear{
		{
			Year:          "2024",
			Profitability: "14,20%",
			Rows: [][]any{
				header("2024"),
				{"FATURAMENTO (contas a receber)", "48,210.00", "50,115.40", "51,980.00", "52,400.00", "53,027.85", "52,900.00", "49,870.00", "51,300.00", "52,640.00", "53,100.00", "54,220.00", "55,010.00", "624,773.25", "52,064.44"},
				{"DESPESAS:", "40,100.00", "41,020.00", "42,800.00", "43,150.00", "44,002.10", "43,900.00", "42,310.00", "43,000.00", "43,870.00", "44,100.00", "45,200.00", "46,010.00", "519,462.10", "43,288.51"},
				{"LUCRO TOTAL", "8,110.00", "9,095.40", "9,180.00", "9,250.00", "9,025.75", "9,000.00", "7,560.00", "8,300.00", "8,770.00", "9,000.00", "9,020.00", "9,000.00", "105,311.15", "8,775.93"},
				{"KPI ALUNOS"},
				{"ALUNOS PAGANTES", "310", "318", "322", "325", "330", "329", "312", "320", "327", "331", "335", "338", "", "325"},
				{"% META ATINGIDA", "88", "91", "93", "94", "96", "95", "89", "92", "94", "95", "97", "98", "", "93.5"},
				{"TICKET MÉDIO", "155.52", "157.60", "161.43", "161.23", "160.69", "160.79", "159.84", "160.31", "160.98", "160.42", "161.85", "162.75", "", "160.28"},
				{"PARCELA MÉDIA", "149.90", "149.90", "149.90", "149.90", "149.90", "149.90", "149.90", "149.90", "149.90", "149.90", "149.90", "149.90", "", "149.90"},
				{"LUCRO POR ALUNO", "26.16", "28.60", "28.51", "28.46", "27.35", "27.36", "24.23", "25.94", "26.82", "27.19", "26.93", "26.63", "", "27.02"},
				{"CUSTO POR ALUNO", "129.35", "128.99", "132.92", "132.77", "133.34", "133.43", "135.61", "134.38", "134.16", "133.23", "134.93", "136.12", "", "133.27"},
				{"CUSTO POR TURMA", "2,506.25", "2,563.75", "2,675.00", "2,696.88", "2,750.13", "2,743.75", "2,644.38", "2,687.50", "2,741.88", "2,756.25", "2,825.00", "2,875.63", "", "2,705.53"},
			},
		},
		{
			Year:          "2025",
			Profitability: "9,80%",
			Rows: [][]any{
				header("2025"),
				{"FATURAMENTO (contas a receber)", "55,300.00", "56,020.00", "57,110.00", "-", "-", "-", "-", "-", "-", "-", "-", "-", "168,430.00", "56,143.33"},
				{"DESPESAS:", "47,200.00", "48,050.00", "49,300.00", "-", "-", "-", "-", "-", "-", "-", "-", "-", "144,550.00", "48,183.33"},
				{"LUCRO TOTAL", "8,100.00", "7,970.00", "7,810.00", "-", "-", "-", "-", "-", "-", "-", "-", "-", "23,880.00", "7,960.00"},
				{"KPI ALUNOS"},
				{"ALUNOS PAGANTES", "340", "344", "349"},
				{"% META ATINGIDA", "81", "84", "86"},
				{"TICKET MÉDIO", "162.65", "162.85", "163.64"},
				{"PARCELA MÉDIA", "154.90", "154.90", "154.90"},
				{"LUCRO POR ALUNO", "23.82", "23.17", "22.38"},
				{"CUSTO POR ALUNO", "138.82", "139.68", "141.26"},
				{"CUSTO POR TURMA", "2,950.00", "3,003.13", "3,081.25"},
			},
		},
	}
}
