package backend

import (
	"context"
	"fmt"
	"os"

	"painel/internal/log"
	gsheet "painel/internal/sheets/google"
	"painel/internal/sheets/memory"
	"painel/internal/sheets/xlsx"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case XLSXBackend:
		return f.createXLSXBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	opts := gsheet.Options{
		SpreadsheetID: config.GoogleSpreadsheetID,
		APIKey:        config.GoogleSheetsAPIKey,
		Layout:        config.Layout,
	}
	switch {
	case config.GoogleServiceAccountJSON != "":
		opts.CredentialsJSON = []byte(config.GoogleServiceAccountJSON)
	case config.GoogleServiceAccountFile != "":
		b, err := os.ReadFile(config.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		opts.CredentialsJSON = b
	case config.GoogleOAuthClientFile != "" && config.GoogleOAuthTokenFile != "":
		b, err := os.ReadFile(config.GoogleOAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
		tok, err := gsheet.LoadToken(config.GoogleOAuthTokenFile)
		if err != nil {
			return nil, err
		}
		opts.OAuthClientJSON = b
		opts.OAuthToken = tok
	}

	cli, err := gsheet.New(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"api_key", config.GoogleSheetsAPIKey != "",
		"service_account", len(opts.CredentialsJSON) > 0,
		"oauth", opts.OAuthToken != nil)

	return &BackendResult{Source: cli}, nil
}

func (f *DefaultFactory) createXLSXBackend(config Config) (*BackendResult, error) {
	wb, err := xlsx.New(config.XLSXPath, config.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize workbook backend: %w", err)
	}
	f.logger.Info("Initialized workbook backend", "path", config.XLSXPath)
	return &BackendResult{Source: wb}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend with sample data")
	return &BackendResult{Source: memory.NewWithSample()}, nil
}
