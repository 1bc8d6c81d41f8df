package backend

import (
	"context"

	"painel/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the source and an optional cleanup function
type BackendResult struct {
	Source  sheets.Source
	Cleanup CleanupFunc
}

// Factory creates data sources based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type   BackendType
	Layout sheets.Layout

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetsAPIKey       string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenFile     string

	// Excel specific
	XLSXPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SheetsBackend BackendType = "sheets"
	XLSXBackend   BackendType = "xlsx"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SheetsBackend, XLSXBackend:
		return true
	default:
		return false
	}
}
