package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"painel/internal/core"
)

// kpiFile is the on-disk shape of the card table:
//
//	key_card = "Custo por Aluno"
//
//	[[card]]
//	label = "Faturamento"
//	indicator = "FATURAMENTO (contas a receber)"
//	format = "currency"
//	icon = "currency-dollar"
//	color = "bg-blue-500"
type kpiFile struct {
	KeyCard string    `toml:"key_card"`
	Cards   []kpiCard `toml:"card"`
}

type kpiCard struct {
	Label     string          `toml:"label"`
	Indicator string          `toml:"indicator"`
	Format    core.FormatKind `toml:"format"`
	Icon      string          `toml:"icon"`
	Color     string          `toml:"color"`
}

// LoadKPISpec returns the built-in card table when path is empty, and
// otherwise decodes and validates the TOML file at path.
func LoadKPISpec(path string) (core.KPISpec, error) {
	if path == "" {
		return core.DefaultKPISpec(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return core.KPISpec{}, fmt.Errorf("read KPI config: %w", err)
	}
	return ParseKPISpec(b)
}

// ParseKPISpec decodes a TOML card table.
func ParseKPISpec(b []byte) (core.KPISpec, error) {
	var f kpiFile
	if err := toml.Unmarshal(b, &f); err != nil {
		return core.KPISpec{}, fmt.Errorf("decode KPI config: %w", err)
	}
	spec := core.KPISpec{KeyLabel: f.KeyCard, Entries: make([]core.KPIEntry, 0, len(f.Cards))}
	for _, c := range f.Cards {
		spec.Entries = append(spec.Entries, core.KPIEntry{
			Label:     c.Label,
			Indicator: c.Indicator,
			Format:    c.Format,
			Icon:      c.Icon,
			Color:     c.Color,
		})
	}
	if err := spec.Validate(); err != nil {
		return core.KPISpec{}, fmt.Errorf("invalid KPI config: %w", err)
	}
	return spec, nil
}
