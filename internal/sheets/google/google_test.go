package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	ports "painel/internal/sheets"
)

func newTestClient(t *testing.T, h http.HandlerFunc, apiKey string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-123",
		APIKey:        apiKey,
		Layout:        ports.DefaultLayout(),
		Endpoint:      srv.URL + "/",
		HTTPClient:    srv.Client(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(context.Background(), Options{Layout: ports.DefaultLayout(), APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if _, err := New(context.Background(), Options{SpreadsheetID: "x", Layout: ports.DefaultLayout()}); err == nil ||
		!strings.Contains(err.Error(), "missing credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
	if _, err := New(context.Background(), Options{SpreadsheetID: "x", APIKey: "k"}); err == nil {
		t.Fatal("expected layout error for zero layout")
	}
}

func TestListYears_SortedDescending(t *testing.T) {
	var gotKey, gotFields string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotFields = r.URL.Query().Get("fields")
		if !strings.HasSuffix(r.URL.Path, "/v4/spreadsheets/sheet-123") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, map[string]any{"sheets": []any{
			map[string]any{"properties": map[string]any{"title": "2023"}},
			map[string]any{"properties": map[string]any{"title": "2025"}},
			map[string]any{"properties": map[string]any{"title": " "}},
			map[string]any{"properties": map[string]any{"title": "2024"}},
		}})
	}, "secret")

	years, err := c.ListYears(context.Background())
	if err != nil {
		t.Fatalf("ListYears: %v", err)
	}
	if strings.Join(years, ",") != "2025,2024,2023" {
		t.Fatalf("unexpected years: %v", years)
	}
	if gotKey != "secret" {
		t.Errorf("api key not sent, got %q", gotKey)
	}
	if gotFields != "sheets.properties.title" {
		t.Errorf("unexpected fields mask %q", gotFields)
	}
}

func TestReadYear_FetchesBothRanges(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch {
		case strings.HasSuffix(r.URL.Path, "'2025'!A6:P107"):
			writeJSON(w, map[string]any{
				"range": "'2025'!A6:P107",
				"values": [][]any{
					{"FINANCEIRO", "Jan/2025", "Feb/2025"},
					{"FATURAMENTO (contas a receber)", "1.000,00", "2.000,00"},
				},
			})
		case strings.HasSuffix(r.URL.Path, "'2025'!K1"):
			writeJSON(w, map[string]any{"range": "'2025'!K1", "values": [][]any{{"12,5%"}}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}, "k")

	raw, err := c.ReadYear(context.Background(), "2025")
	if err != nil {
		t.Fatalf("ReadYear: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", calls.Load())
	}
	if raw.Year != "2025" || len(raw.Rows) != 2 || raw.Rows[1][0] != "FATURAMENTO (contas a receber)" {
		t.Fatalf("unexpected raw year: %+v", raw)
	}
	if raw.Profitability != "12,5%" {
		t.Fatalf("unexpected profitability: %v", raw.Profitability)
	}
}

func TestReadYear_EmptyProfitability(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"range": "x"})
	}, "k")
	raw, err := c.ReadYear(context.Background(), "2024")
	if err != nil {
		t.Fatalf("ReadYear: %v", err)
	}
	if raw.Profitability != nil || len(raw.Rows) != 0 {
		t.Fatalf("expected empty raw year, got %+v", raw)
	}
}

func TestReadYear_MapsAPIErrors(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
		notFound   bool
	}{
		{
			name:       "missing tab",
			status:     http.StatusBadRequest,
			body:       `{"error":{"code":400,"message":"Unable to parse range: '1999'!A6:P107","status":"INVALID_ARGUMENT"}}`,
			wantStatus: 400,
			wantMsg:    "Unable to parse range: '1999'!A6:P107",
			notFound:   true,
		},
		{
			name:       "permission denied",
			status:     http.StatusForbidden,
			body:       `{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`,
			wantStatus: 403,
			wantMsg:    "The caller does not have permission",
		},
		{
			name:       "no json body",
			status:     http.StatusForbidden,
			body:       `oops`,
			wantStatus: 403,
			wantMsg:    "HTTP error 403",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, "k")
			_, err := c.ReadYear(context.Background(), "1999")
			var apiErr *ports.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tc.wantStatus || apiErr.Error() != tc.wantMsg {
				t.Fatalf("got status=%d msg=%q", apiErr.Status, apiErr.Error())
			}
			if got := errors.Is(err, ports.ErrYearNotFound); got != tc.notFound {
				t.Fatalf("ErrYearNotFound = %v, want %v", got, tc.notFound)
			}
		})
	}
}

func TestListYears_UninitializedService(t *testing.T) {
	c := &Client{}
	if _, err := c.ListYears(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := c.ReadYear(context.Background(), "2025"); err == nil {
		t.Fatal("expected error")
	}
}
