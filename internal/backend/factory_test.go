package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"painel/internal/config"
	"painel/internal/core"
	"painel/internal/metrics"
	"painel/internal/sheets"
	"painel/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sqlite"}); err == nil || !strings.Contains(err.Error(), "memory, sheets, xlsx") {
		t.Fatalf("unknown backend error = %v", err)
	}
	cfg := &config.Config{
		DataBackend:         "sheets",
		GoogleSpreadsheetID: "id",
		GoogleSheetsAPIKey:  "key",
		SheetHeaderRow:      6,
		SheetDataStartRow:   7,
		SheetMaxColumn:      "P",
		SheetExtraRows:      100,
		ProfitabilityCell:   "K1",
	}
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if bc.Type != SheetsBackend || bc.Layout != sheets.DefaultLayout() || bc.GoogleSheetsAPIKey != "key" {
		t.Fatalf("unexpected backend config %+v", bc)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"bad type", Config{Type: "sqlite"}, "must be one of memory, sheets, xlsx"},
		{"sheets without id", Config{Type: SheetsBackend, GoogleSheetsAPIKey: "k", Layout: sheets.DefaultLayout()}, "Spreadsheet ID"},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "x", Layout: sheets.DefaultLayout()}, "API key, service account or OAuth token"},
		{"sheets ok", Config{Type: SheetsBackend, GoogleSpreadsheetID: "x", GoogleSheetsAPIKey: "k", Layout: sheets.DefaultLayout()}, ""},
		{"xlsx without path", Config{Type: XLSXBackend, Layout: sheets.DefaultLayout()}, "workbook path"},
		{"xlsx bad layout", Config{Type: XLSXBackend, XLSXPath: "a.xlsx"}, "header row"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("got %v, want %q", err, tc.wantErr)
			}
		})
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "memory,sheets,xlsx" {
		t.Fatalf("backend types = %s", got)
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	years, err := res.Source.ListYears(context.Background())
	if err != nil || len(years) == 0 {
		t.Fatalf("sample years: %v %v", years, err)
	}
}

func TestCreateSheetsBackendMissingFile(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:                     SheetsBackend,
		GoogleSpreadsheetID:      "x",
		GoogleServiceAccountFile: "/non/existent/sa.json",
		Layout:                   sheets.DefaultLayout(),
	})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("got %v", err)
	}
}

type slowSource struct{}

func (slowSource) ListYears(ctx context.Context) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowSource) ReadYear(ctx context.Context, year string) (core.RawYear, error) {
	<-ctx.Done()
	return core.RawYear{}, ctx.Err()
}

func TestInstrumented(t *testing.T) {
	store := memory.New()
	store.Put(core.RawYear{Year: "2025", Rows: [][]any{{"", "Jan/2025"}}})
	m := metrics.New()
	src := Instrument(store, "memory", sheets.DefaultLayout(), 0, m, nil)

	years, err := src.ListYears(context.Background())
	if err != nil || len(years) != 1 {
		t.Fatalf("ListYears: %v %v", years, err)
	}
	if _, err := src.ReadYear(context.Background(), "2025"); err != nil {
		t.Fatalf("ReadYear: %v", err)
	}
	if _, err := src.ReadYear(context.Background(), "1999"); !errors.Is(err, sheets.ErrYearNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	slow := Instrument(slowSource{}, "slow", sheets.DefaultLayout(), 1, m, nil)
	if _, err := slow.ReadYear(context.Background(), "2025"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestFetchOutcome(t *testing.T) {
	if fetchOutcome(nil, true) != metrics.OutcomeEmpty || fetchOutcome(nil, false) != metrics.OutcomeOK {
		t.Fatal("success outcomes")
	}
	if fetchOutcome(sheets.ErrYearNotFound, true) != metrics.OutcomeNotFound {
		t.Fatal("not found outcome")
	}
	if fetchOutcome(&sheets.APIError{Status: 500}, false) != metrics.OutcomeError {
		t.Fatal("error outcome")
	}
}
