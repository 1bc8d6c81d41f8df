package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/services"
	"painel/internal/sheets/memory"
)

func sampleDashboard(context.Context, string, bool) (*services.Dashboard, func(), error) {
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	cfg := services.DefaultDashboardConfig()
	cfg.Now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return services.NewDashboard(memory.NewWithSample(), core.DefaultKPISpec(), cfg, nil, logger), nil, nil
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(sampleDashboard)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestYearsCommand(t *testing.T) {
	out, err := run(t, "years")
	if err != nil {
		t.Fatal(err)
	}
	if out != "2025\n2024\n" {
		t.Errorf("output = %q", out)
	}
}

func TestKPIsCommand(t *testing.T) {
	out, err := run(t, "kpis", "--year", "2025")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"2025 - Março (mês padrão)", "Lucratividade Anual: 9,80%", "Faturamento", "R$\u00a057.110,00", "Alunos Ativos"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "kpis", "--year", "2025", "--month", "jan")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2025 - Janeiro\n") || !strings.Contains(out, "R$\u00a055.300,00") {
		t.Errorf("requested month not used:\n%s", out)
	}
}

func TestKPIsCommand_Errors(t *testing.T) {
	if _, err := run(t, "kpis"); err == nil {
		t.Error("missing --year accepted")
	}
	if _, err := run(t, "kpis", "--year", "2025", "--month", "Smarch"); err == nil {
		t.Error("invalid month accepted")
	}
	if _, err := run(t, "kpis", "--year", "1999"); err == nil {
		t.Error("unknown year accepted")
	}
}

func TestTableCommand(t *testing.T) {
	out, err := run(t, "table", "--year", "2024")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("lines = %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Jan/2024") || !strings.Contains(lines[0], "MÉDIA") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(out, "FATURAMENTO (contas a receber)") || !strings.Contains(out, "624,773.25") {
		t.Errorf("table body missing values:\n%s", out)
	}
}

func TestAuthCommand_RequiresClientFile(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_CLIENT_FILE", "")
	_, err := run(t, "auth")
	if err == nil || !strings.Contains(err.Error(), "client-file") {
		t.Errorf("err = %v", err)
	}
}
