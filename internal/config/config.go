package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"painel/internal/sheets"
)

type Config struct {
	// HTTP Server
	Port               string
	DashboardTitle     string
	RateLimitPerMinute int
	// TrustedProxies is a comma-separated CIDR list whose forwarding
	// headers are believed, on top of the loopback and private ranges.
	TrustedProxies string

	// Backend selection
	DataBackend string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetsAPIKey       string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenFile     string
	FetchTimeout             time.Duration

	// Excel workbook
	XLSXPath string

	// Sheet layout
	SheetHeaderRow    int
	SheetDataStartRow int
	SheetMaxColumn    string
	SheetExtraRows    int
	ProfitabilityCell string

	// Cards
	KPIConfigFile string

	// Sessions
	AuthUsers  string
	SessionTTL time.Duration
	SessionMax int

	// Logging
	LogLevel string
}

var validBackends = []string{"memory", "sheets", "xlsx"}

func Load() *Config {
	def := sheets.DefaultLayout()
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		DashboardTitle:     getEnv("DASHBOARD_TITLE", "Painel de Gestão Financeira"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnv("TRUSTED_PROXIES", ""),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetsAPIKey:       getEnv("GOOGLE_SHEETS_API_KEY", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
		GoogleOAuthClientFile:    getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:     getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		FetchTimeout:             getEnvDuration("FETCH_TIMEOUT", 0),

		XLSXPath: getEnv("XLSX_PATH", ""),

		SheetHeaderRow:    getEnvInt("SHEET_HEADER_ROW", def.HeaderRow),
		SheetDataStartRow: getEnvInt("SHEET_DATA_START_ROW", def.DataStartRow),
		SheetMaxColumn:    strings.ToUpper(getEnv("SHEET_MAX_COLUMN", def.MaxColumn)),
		SheetExtraRows:    getEnvInt("SHEET_EXTRA_ROWS", def.ExtraRows),
		ProfitabilityCell: strings.ToUpper(getEnv("PROFITABILITY_CELL", def.ProfitabilityCell)),

		KPIConfigFile: getEnv("KPI_CONFIG_FILE", ""),

		AuthUsers:  getEnv("AUTH_USERS", ""),
		SessionTTL: getEnvDuration("SESSION_TTL", 8*time.Hour),
		SessionMax: getEnvInt("SESSION_MAX", 1000),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	return cfg
}

// Layout returns the sheet layout described by the configuration.
func (c *Config) Layout() sheets.Layout {
	return sheets.Layout{
		HeaderRow:         c.SheetHeaderRow,
		DataStartRow:      c.SheetDataStartRow,
		ExtraRows:         c.SheetExtraRows,
		MaxColumn:         c.SheetMaxColumn,
		ProfitabilityCell: c.ProfitabilityCell,
	}
}

// TrustedProxyCIDRs splits TRUSTED_PROXIES into its entries.
func (c *Config) TrustedProxyCIDRs() []string {
	var out []string
	for _, cidr := range strings.Split(c.TrustedProxies, ",") {
		if cidr = strings.TrimSpace(cidr); cidr != "" {
			out = append(out, cidr)
		}
	}
	return out
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		hasKey := c.GoogleSheetsAPIKey != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		hasOAuth := c.GoogleOAuthClientFile != "" && c.GoogleOAuthTokenFile != ""
		if !hasKey && !hasJSON && !hasFile && !hasOAuth {
			errors = append(errors, "one of GOOGLE_SHEETS_API_KEY, GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_OAUTH_CLIENT_FILE with GOOGLE_OAUTH_TOKEN_FILE must be provided for sheets backend")
		}
		if hasOAuth {
			for _, f := range []string{c.GoogleOAuthClientFile, c.GoogleOAuthTokenFile} {
				if _, err := os.Stat(f); os.IsNotExist(err) {
					errors = append(errors, fmt.Sprintf("Google OAuth file does not exist: %s", f))
				}
			}
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	case "xlsx":
		if c.XLSXPath == "" {
			errors = append(errors, "XLSX_PATH is required when using xlsx backend")
		} else if _, err := os.Stat(c.XLSXPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("workbook does not exist: %s", c.XLSXPath))
		}
	}

	// Validate sheet layout
	if err := c.Layout().Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			errors = append(errors, "sheet layout: "+line)
		}
	}

	// Validate KPI file if given
	if c.KPIConfigFile != "" {
		if _, err := os.Stat(c.KPIConfigFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("KPI config file does not exist: %s", c.KPIConfigFile))
		}
	}

	// Validate sessions
	if _, err := ParseUsers(c.AuthUsers); err != nil {
		errors = append(errors, err.Error())
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}
	for _, cidr := range c.TrustedProxyCIDRs() {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR such as 203.0.113.0/24", cidr))
		}
	}
	if c.FetchTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must not be negative", c.FetchTimeout))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
