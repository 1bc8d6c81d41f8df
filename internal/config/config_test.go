package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:               "8081",
		DataBackend:        "memory",
		RateLimitPerMinute: 60,
		SheetHeaderRow:     6,
		SheetDataStartRow:  7,
		SheetMaxColumn:     "P",
		SheetExtraRows:     100,
		ProfitabilityCell:  "K1",
		AuthUsers:          "admin:secret",
		SessionTTL:         time.Hour,
		SessionMax:         10,
		LogLevel:           "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tempDir := t.TempDir()
	saFile := filepath.Join(tempDir, "sa.json")
	if err := os.WriteFile(saFile, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	workbook := filepath.Join(tempDir, "painel.xlsx")
	if err := os.WriteFile(workbook, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid memory backend config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sqlite" },
			wantErr:     true,
			errorString: "invalid data backend 'sqlite': must be one of [memory sheets xlsx]",
		},
		{
			name: "sheets backend with api key",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSpreadsheetID = "abc"
				c.GoogleSheetsAPIKey = "key"
			},
			wantErr: false,
		},
		{
			name: "sheets backend with service account file",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSpreadsheetID = "abc"
				c.GoogleServiceAccountFile = saFile
			},
			wantErr: false,
		},
		{
			name: "sheets backend with oauth token",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSpreadsheetID = "abc"
				c.GoogleOAuthClientFile = saFile
				c.GoogleOAuthTokenFile = "/non/existent/token.json"
			},
			wantErr:     true,
			errorString: "Google OAuth file does not exist: /non/existent/token.json",
		},
		{
			name: "sheets backend missing credentials",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSpreadsheetID = "abc"
			},
			wantErr:     true,
			errorString: "one of GOOGLE_SHEETS_API_KEY",
		},
		{
			name: "sheets backend missing spreadsheet id",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSheetsAPIKey = "key"
			},
			wantErr:     true,
			errorString: "Google Spreadsheet ID is required",
		},
		{
			name: "sheets backend with non-existent service account file",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSpreadsheetID = "abc"
				c.GoogleServiceAccountFile = "/non/existent/file.json"
			},
			wantErr:     true,
			errorString: "Google service account file does not exist",
		},
		{
			name: "xlsx backend",
			mutate: func(c *Config) {
				c.DataBackend = "xlsx"
				c.XLSXPath = workbook
			},
			wantErr: false,
		},
		{
			name:        "xlsx backend without path",
			mutate:      func(c *Config) { c.DataBackend = "xlsx" },
			wantErr:     true,
			errorString: "XLSX_PATH is required",
		},
		{
			name:        "data row before header row",
			mutate:      func(c *Config) { c.SheetDataStartRow = 6 },
			wantErr:     true,
			errorString: "sheet layout: data start row 6 must follow header row 6",
		},
		{
			name:        "lower case column",
			mutate:      func(c *Config) { c.SheetMaxColumn = "p" },
			wantErr:     true,
			errorString: `invalid max column "p"`,
		},
		{
			name:        "malformed users",
			mutate:      func(c *Config) { c.AuthUsers = "admin" },
			wantErr:     true,
			errorString: "invalid AUTH_USERS entry",
		},
		{
			name:        "short session ttl",
			mutate:      func(c *Config) { c.SessionTTL = time.Second },
			wantErr:     true,
			errorString: "invalid session TTL 1s",
		},
		{
			name:    "trusted proxies",
			mutate:  func(c *Config) { c.TrustedProxies = "203.0.113.0/24, 2001:db8::/32" },
			wantErr: false,
		},
		{
			name:        "invalid trusted proxy",
			mutate:      func(c *Config) { c.TrustedProxies = "203.0.113.0/24,10.0.0.1" },
			wantErr:     true,
			errorString: "invalid trusted proxy '10.0.0.1'",
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "trace" },
			wantErr:     true,
			errorString: "invalid log level 'trace'",
		},
		{
			name:        "missing KPI file",
			mutate:      func(c *Config) { c.KPIConfigFile = "/non/existent/cards.toml" },
			wantErr:     true,
			errorString: "KPI config file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Config.Validate() error = %v, want it to contain %q", err, tt.errorString)
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.SessionMax = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "configuration validation failed:\n- ") || strings.Count(msg, "\n- ") != 2 {
		t.Fatalf("unexpected message:\n%s", msg)
	}
}

func TestLoad(t *testing.T) {
	keys := []string{
		"PORT", "DATA_BACKEND", "SHEET_HEADER_ROW", "SHEET_MAX_COLUMN",
		"SESSION_TTL", "LOG_LEVEL", "AUTH_USERS", "DASHBOARD_TITLE",
		"GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()
		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "memory" {
			t.Errorf("Load() DataBackend = %v, want memory", cfg.DataBackend)
		}
		if cfg.DashboardTitle != "Painel de Gestão Financeira" {
			t.Errorf("Load() DashboardTitle = %v", cfg.DashboardTitle)
		}
		l := cfg.Layout()
		if l.MainRange("2025") != "'2025'!A6:P107" || l.ProfitabilityRange("2025") != "'2025'!K1" {
			t.Errorf("Load() layout = %+v", l)
		}
		if cfg.SessionTTL != 8*time.Hour {
			t.Errorf("Load() SessionTTL = %v, want 8h", cfg.SessionTTL)
		}
		if cfg.SlogLevel() != slog.LevelInfo {
			t.Errorf("Load() level = %v", cfg.SlogLevel())
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "sheets")
		t.Setenv("SHEET_HEADER_ROW", "2")
		t.Setenv("SHEET_MAX_COLUMN", "q")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/sa.json")

		cfg := Load()
		if cfg.Port != "9090" || cfg.DataBackend != "sheets" {
			t.Errorf("Load() = %+v", cfg)
		}
		if cfg.SheetHeaderRow != 2 || cfg.SheetMaxColumn != "Q" {
			t.Errorf("Load() layout = %d %s", cfg.SheetHeaderRow, cfg.SheetMaxColumn)
		}
		if cfg.SessionTTL != 30*time.Minute {
			t.Errorf("Load() SessionTTL = %v", cfg.SessionTTL)
		}
		if cfg.SlogLevel() != slog.LevelDebug {
			t.Errorf("Load() level = %v", cfg.SlogLevel())
		}
		if cfg.GoogleServiceAccountFile != "/etc/sa.json" {
			t.Errorf("Load() service account fallback = %q", cfg.GoogleServiceAccountFile)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("SHEET_HEADER_ROW", "six")
		t.Setenv("SESSION_TTL", "forever")

		cfg := Load()
		if cfg.SheetHeaderRow != 6 {
			t.Errorf("Load() SheetHeaderRow = %v, want 6 (default for invalid input)", cfg.SheetHeaderRow)
		}
		if cfg.SessionTTL != 8*time.Hour {
			t.Errorf("Load() SessionTTL = %v, want 8h (default for invalid input)", cfg.SessionTTL)
		}
	})
}

func TestConfig_TrustedProxyCIDRs(t *testing.T) {
	c := &Config{TrustedProxies: " 203.0.113.0/24,, 198.51.100.0/24 "}
	got := c.TrustedProxyCIDRs()
	if len(got) != 2 || got[0] != "203.0.113.0/24" || got[1] != "198.51.100.0/24" {
		t.Errorf("TrustedProxyCIDRs = %v", got)
	}
	if got := (&Config{}).TrustedProxyCIDRs(); len(got) != 0 {
		t.Errorf("empty TrustedProxyCIDRs = %v", got)
	}
}
