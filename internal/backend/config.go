package backend

import (
	"errors"
	"fmt"
	"strings"

	"painel/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s (must be one of %s)",
			appConfig.DataBackend, strings.Join(GetBackendTypeStrings(), ", "))
	}

	return Config{
		Type:   backendType,
		Layout: appConfig.Layout(),

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetsAPIKey:       appConfig.GoogleSheetsAPIKey,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleOAuthClientFile:    appConfig.GoogleOAuthClientFile,
		GoogleOAuthTokenFile:     appConfig.GoogleOAuthTokenFile,

		XLSXPath: appConfig.XLSXPath,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s (must be one of %s)", c.Type, strings.Join(GetBackendTypeStrings(), ", "))
	}

	switch c.Type {
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
		hasOAuth := c.GoogleOAuthClientFile != "" && c.GoogleOAuthTokenFile != ""
		if c.GoogleSheetsAPIKey == "" && c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" && !hasOAuth {
			return errors.New("an API key, service account or OAuth token is required for sheets backend")
		}
		return c.Layout.Validate()
	case XLSXBackend:
		if c.XLSXPath == "" {
			return errors.New("workbook path is required for xlsx backend")
		}
		return c.Layout.Validate()
	case MemoryBackend:
		// Memory backend serves built-in sample data
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SheetsBackend, XLSXBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
