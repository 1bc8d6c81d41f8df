// Command painel-cli prints the dashboard figures of the configured
// workbook to the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"painel/internal/backend"
	"painel/internal/cli"
	"painel/internal/config"
	"painel/internal/log"
	"painel/internal/services"
)

func main() {
	if err := newRootCmd(configuredDashboard).Execute(); err != nil {
		os.Exit(1)
	}
}

// dashboardFunc builds the dashboard a command reads from. The returned
// cleanup releases the backend.
type dashboardFunc func(ctx context.Context, envFile string, verbose bool) (*services.Dashboard, func(), error)

func newRootCmd(build dashboardFunc) *cobra.Command {
	var (
		envFile string
		verbose bool
		a       = &app{}
		cleanup func()
	)

	root := &cobra.Command{
		Use:           "painel-cli",
		Short:         "Print the financial dashboard from the command line",
		Long:          "painel-cli reads the configured workbook (memory, xlsx or Google Sheets)\nand prints year tabs, KPI cards or the full indicator table.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			dash, done, err := build(cmd.Context(), envFile, verbose)
			if err != nil {
				return err
			}
			a.dash = dash
			cleanup = done
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if cleanup != nil {
				cleanup()
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file first")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log backend activity to stderr")

	root.AddCommand(a.yearsCmd(), a.kpisCmd(), a.tableCmd(), authCmd())
	return root
}

// configuredDashboard wires the backend from the environment, the same
// way the server does.
func configuredDashboard(ctx context.Context, envFile string, verbose bool) (*services.Dashboard, func(), error) {
	if envFile != "" {
		cli.LoadEnvFile(envFile)
	} else {
		cli.LoadEnvFile()
	}

	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	logger := cli.SetupLogger(os.Stderr, level).WithComponent(log.ComponentCLI)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	spec, err := config.LoadKPISpec(cfg.KPIConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("KPI configuration: %w", err)
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	source := backend.Instrument(res.Source, cfg.DataBackend, cfg.Layout(), cfg.FetchTimeout, nil, logger)

	dash := services.NewDashboard(source, spec, services.DefaultDashboardConfig(), nil, logger)
	cleanup := func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}
	}
	return dash, cleanup, nil
}
