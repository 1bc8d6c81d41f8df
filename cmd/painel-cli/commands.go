package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"painel/internal/core"
	"painel/internal/services"
)

type app struct {
	dash *services.Dashboard
}

func (a *app) yearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List the year tabs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			years, err := a.dash.Years(cmd.Context())
			if err != nil {
				return fmt.Errorf("list years: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(years) == 0 {
				fmt.Fprintln(out, "Nenhum ano disponível.")
				return nil
			}
			for _, y := range years {
				fmt.Fprintln(out, y)
			}
			return nil
		},
	}
}

func (a *app) kpisCmd() *cobra.Command {
	var year, month string
	cmd := &cobra.Command{
		Use:   "kpis",
		Short: "Print the KPI cards of a year for one month",
		Long:  "Print the KPI cards of a year. Without --month the default month is\ninferred from the key indicator, as the dashboard does.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := optionalMonth(month)
			if err != nil {
				return err
			}
			r, err := a.dash.Report(cmd.Context(), year, m)
			if err != nil {
				return err
			}
			return writeKPIs(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "Year tab to read (required)")
	cmd.Flags().StringVar(&month, "month", "", "Month name, abbreviation or number")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func (a *app) tableCmd() *cobra.Command {
	var year string
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the full indicator table of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := time.January
			r, err := a.dash.Report(cmd.Context(), year, &m)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), r.Table)
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "Year tab to read (required)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func optionalMonth(s string) (*time.Month, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	m, err := core.ParseMonth(s)
	if err != nil {
		return nil, fmt.Errorf("--month: %w", err)
	}
	return &m, nil
}

func writeKPIs(w io.Writer, r services.YearReport) error {
	suffix := ""
	if r.MonthResolved {
		suffix = " (mês padrão)"
	}
	profit := r.Table.AnnualProfitability
	if profit == "" {
		profit = core.Sentinel
	}
	fmt.Fprintf(w, "%s - %s%s\n", r.Table.Year, core.MonthName(r.Month), suffix)
	fmt.Fprintf(w, "Lucratividade Anual: %s\n\n", profit)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range r.Cards {
		fmt.Fprintf(tw, "%s\t%s\n", c.Label, c.Display())
	}
	return tw.Flush()
}

func writeTable(w io.Writer, t core.FinancialTable) error {
	if len(t.IndicatorRows) == 0 {
		_, err := fmt.Fprintln(w, "Nenhum dado financeiro para "+t.Year+".")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	corner := t.Corner
	if corner == "" {
		corner = "Indicador"
	}
	fmt.Fprintf(tw, "%s\t%s\t\n", corner, strings.Join(t.ColumnHeaders, "\t"))
	for _, row := range t.IndicatorRows {
		cells := make([]string, len(row.Values))
		for i, c := range row.Values {
			cells[i] = core.FormatCell(c)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", row.Name, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
