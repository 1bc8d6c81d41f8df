package core

import (
	"fmt"
	"strings"
	"time"
)

// CardCount is the number of cards on the KPI grid.
const CardCount = 10

const (
	KindPlain FormatKind = iota
	KindCurrency
	KindPercentage
)

type (
	// FormatKind selects how a card value is rendered.
	FormatKind uint8

	// KPIEntry maps a card label to the sheet indicator it shows.
	KPIEntry struct {
		Label     string
		Indicator string
		Format    FormatKind
		Icon      string
		Color     string
	}

	// KPISpec is the read-only card configuration. Entry order is the
	// display order.
	KPISpec struct {
		Entries []KPIEntry
		// KeyLabel names the card whose indicator drives the default month.
		KeyLabel string
	}

	// KPICard is one projected card. Value is already formatted for
	// currency and percentage entries; plain entries carry the raw cell.
	KPICard struct {
		Label string
		Value Cell
		Icon  string
		Color string
	}
)

// DefaultKPISpec returns the built-in card table.
func DefaultKPISpec() KPISpec {
	return KPISpec{
		KeyLabel: "Custo por Aluno",
		Entries: []KPIEntry{
			{Label: "Faturamento", Indicator: "FATURAMENTO (contas a receber)", Format: KindCurrency, Icon: "currency-dollar", Color: "bg-blue-500"},
			{Label: "Despesas", Indicator: "DESPESAS:", Format: KindCurrency, Icon: "arrow-trending-down", Color: "bg-red-500"},
			{Label: "Lucro Total", Indicator: "LUCRO TOTAL", Format: KindCurrency, Icon: "chart-bar", Color: "bg-orange-500"},
			{Label: "Alunos Ativos", Indicator: "ALUNOS PAGANTES", Format: KindPlain, Icon: "users", Color: "bg-green-500"},
			{Label: "% Meta Atingida", Indicator: "% META ATINGIDA", Format: KindPercentage, Icon: "check-circle", Color: "bg-purple-500"},
			{Label: "Ticket Médio", Indicator: "TICKET MÉDIO", Format: KindCurrency, Icon: "ticket", Color: "bg-teal-500"},
			{Label: "Parcela Média", Indicator: "PARCELA MÉDIA", Format: KindCurrency, Icon: "credit-card", Color: "bg-indigo-500"},
			{Label: "Lucro por Aluno", Indicator: "LUCRO POR ALUNO", Format: KindCurrency, Icon: "user-dollar", Color: "bg-pink-500"},
			{Label: "Custo por Aluno", Indicator: "CUSTO POR ALUNO", Format: KindCurrency, Icon: "user-cost", Color: "bg-rose-500"},
			{Label: "Custo por Turma", Indicator: "CUSTO POR TURMA", Format: KindCurrency, Icon: "building-storefront", Color: "bg-lime-600"},
		},
	}
}

// Validate checks the card table shape.
func (s KPISpec) Validate() error {
	if len(s.Entries) != CardCount {
		return fmt.Errorf("%w: got %d, want %d", ErrCardCount, len(s.Entries), CardCount)
	}
	seen := make(map[string]struct{}, len(s.Entries))
	for i, e := range s.Entries {
		label := strings.TrimSpace(e.Label)
		if label == "" {
			return fmt.Errorf("card %d: %w", i+1, ErrEmptyLabel)
		}
		if strings.TrimSpace(e.Indicator) == "" {
			return fmt.Errorf("card %q: %w", label, ErrEmptyIndicator)
		}
		if e.Format > KindPercentage {
			return fmt.Errorf("card %q: %w", label, ErrUnknownFormat)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
		seen[label] = struct{}{}
	}
	if _, ok := seen[strings.TrimSpace(s.KeyLabel)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKeyCard, s.KeyLabel)
	}
	return nil
}

// KeyIndicator returns the sheet name of the indicator driving the
// default month.
func (s KPISpec) KeyIndicator() string {
	for _, e := range s.Entries {
		if strings.TrimSpace(e.Label) == strings.TrimSpace(s.KeyLabel) {
			return e.Indicator
		}
	}
	return ""
}

// ProjectKPIs builds one card per spec entry, in spec order, for month m.
func ProjectKPIs(t FinancialTable, m time.Month, spec KPISpec) []KPICard {
	col := DataColumn(t, m)
	cards := make([]KPICard, 0, len(spec.Entries))
	for _, e := range spec.Entries {
		raw := EmptyCell()
		if col != -1 {
			if row, ok := t.Indicator(e.Indicator); ok {
				raw = row.Value(col)
			}
		}
		cards = append(cards, KPICard{
			Label: e.Label,
			Value: formatCard(raw, e.Format),
			Icon:  e.Icon,
			Color: e.Color,
		})
	}
	return cards
}

func formatCard(raw Cell, kind FormatKind) Cell {
	if raw.IsEmpty() {
		return raw
	}
	switch kind {
	case KindCurrency:
		return Cell{Kind: CellText, Text: FormatCurrency(raw)}
	case KindPercentage:
		if _, ok := parsePercentage(raw); !ok {
			return raw
		}
		return Cell{Kind: CellText, Text: FormatPercentage(raw)}
	default:
		return raw
	}
}

// Display returns the card value as shown on the grid.
func (c KPICard) Display() string {
	return FormatCell(c.Value)
}

// String returns the configuration name of the format kind.
func (k FormatKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindCurrency:
		return "currency"
	case KindPercentage:
		return "percentage"
	default:
		return fmt.Sprintf("FormatKind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k FormatKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FormatKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "plain":
		*k = KindPlain
	case "currency":
		*k = KindCurrency
	case "percentage", "percent":
		*k = KindPercentage
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(b))
	}
	return nil
}
