package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"painel/internal/core"
	ports "painel/internal/sheets"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads year tabs from a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	layout        ports.Layout
}

// Ensure interface conformance
var _ ports.Source = (*Client)(nil)

// Options configure a Client. One of APIKey, CredentialsJSON or the
// OAuth pair is normally set; Endpoint and HTTPClient exist for tests and
// proxies.
type Options struct {
	SpreadsheetID   string
	APIKey          string
	CredentialsJSON []byte
	// OAuthClientJSON and OAuthToken authenticate as a user, with a token
	// obtained by Authorize.
	OAuthClientJSON []byte
	OAuthToken      *oauth2.Token
	Layout          ports.Layout
	Endpoint        string
	HTTPClient      *http.Client
}

// New creates a Sheets client. An API key is enough for spreadsheets
// shared by link; service account credentials are used for private ones.
func New(ctx context.Context, opts Options) (*Client, error) {
	id := strings.TrimSpace(opts.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("sheet layout: %w", err)
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: id, layout: opts.Layout}, nil
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	var copts []goption.ClientOption

	key := strings.TrimSpace(opts.APIKey)
	switch {
	case key != "":
		slog.InfoContext(ctx, "Creating Google Sheets service with API key")
		base := opts.HTTPClient
		if base == nil {
			base = newHTTPClientWithPooling()
		}
		hc := *base
		hc.Transport = &apiKeyTransport{key: key, base: base.Transport}
		copts = append(copts, goption.WithHTTPClient(&hc))
	case len(opts.CredentialsJSON) > 0:
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(opts.CredentialsJSON),
			"scope", gsheet.SpreadsheetsReadonlyScope)
		copts = append(copts,
			goption.WithCredentialsJSON(opts.CredentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	case len(opts.OAuthClientJSON) > 0 && opts.OAuthToken != nil:
		cfg, err := OAuthConfig(opts.OAuthClientJSON)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Creating Google Sheets service with OAuth user token",
			"scope", gsheet.SpreadsheetsReadonlyScope)
		copts = append(copts, goption.WithTokenSource(cfg.TokenSource(ctx, opts.OAuthToken)))
	case opts.HTTPClient != nil:
		copts = append(copts, goption.WithHTTPClient(opts.HTTPClient))
	default:
		return nil, errors.New("missing credentials (set GOOGLE_SHEETS_API_KEY, a service account or an OAuth client with a token file)")
	}
	if opts.Endpoint != "" {
		copts = append(copts, goption.WithEndpoint(opts.Endpoint))
	}

	service, err := gsheet.NewService(ctx, copts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// apiKeyTransport adds the key query parameter to every request. The API
// client skips its own key handling once an HTTP client is supplied.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("key", t.key)
	r.URL.RawQuery = q.Encode()
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// ListYears returns every tab title, most recent year first.
func (c *Client) ListYears(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", mapError(err))
	}
	years := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s == nil || s.Properties == nil {
			continue
		}
		if title := strings.TrimSpace(s.Properties.Title); title != "" {
			years = append(years, title)
		}
	}
	ports.SortYearsDesc(years)
	return years, nil
}

// ReadYear fetches the table range and the profitability cell of a tab
// concurrently. Both reads must succeed.
func (c *Client) ReadYear(ctx context.Context, year string) (core.RawYear, error) {
	if c.svc == nil {
		return core.RawYear{}, errors.New("sheets service not initialized")
	}
	mainRange := c.layout.MainRange(year)
	profRange := c.layout.ProfitabilityRange(year)

	var (
		rows [][]any
		prof any
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, mainRange).Context(gctx).Do()
		if err != nil {
			return fmt.Errorf("read %s: %w", mainRange, mapError(err))
		}
		rows = resp.Values
		return nil
	})
	g.Go(func() error {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, profRange).Context(gctx).Do()
		if err != nil {
			return fmt.Errorf("read %s: %w", profRange, mapError(err))
		}
		if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
			prof = resp.Values[0][0]
		} else {
			slog.WarnContext(ctx, "No value returned for profitability cell", "range", profRange)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.RawYear{}, err
	}
	if len(rows) == 0 {
		slog.WarnContext(ctx, "No values returned for range", "range", mainRange)
	}
	return core.RawYear{Year: year, Rows: rows, Profitability: prof}, nil
}

// mapError converts Google API failures into ports.APIError so callers do
// not depend on googleapi. A request for a tab that does not exist is
// also reported as ports.ErrYearNotFound.
func mapError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	apiErr := &ports.APIError{Status: gerr.Code, Message: gerr.Message}
	if gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range") {
		return fmt.Errorf("%w: %w", ports.ErrYearNotFound, apiErr)
	}
	return apiErr
}
