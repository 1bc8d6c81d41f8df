package http

import (
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"painel/internal/log"
	"painel/internal/middleware/trace"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusAccepted).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusAccepted {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusAccepted)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerYearLoaded("2025", 3).
		TriggerMonthChanged("2025", 4).
		Write(w)

	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	if got["year:loaded"]["year"] != "2025" || got["year:loaded"]["month"] != float64(3) {
		t.Errorf("year:loaded = %v", got["year:loaded"])
	}
	if got["month:changed"]["month"] != float64(4) {
		t.Errorf("month:changed = %v", got["month:changed"])
	}
}

func TestHTMXResponseBuilder_Template(t *testing.T) {
	tmpl := template.Must(template.New("x").Parse(`{{define "hello"}}<p>{{.}}</p>{{end}}{{define "broken"}}{{.Missing}}{{end}}`))

	w := httptest.NewRecorder()
	NewHTMXResponse().Template(tmpl, "hello", "<b>").Write(w)
	if w.Body.String() != "<p>&lt;b&gt;</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}

	w = httptest.NewRecorder()
	NewHTMXResponse().Template(tmpl, "broken", 42).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("broken template status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	NewHTMXResponse().Template(nil, "hello", nil).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("nil templates status = %d", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		status  int
	}{
		{"bad request", BadRequestError("<x>"), http.StatusBadRequest},
		{"unauthorized", UnauthorizedError(), http.StatusUnauthorized},
		{"custom", ErrorResponse(http.StatusBadGateway, "falhou"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if strings.Contains(w.Body.String(), "<x>") {
				t.Errorf("message not escaped: %s", w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	UnauthorizedError().Write(w)
	if w.Header().Get("HX-Redirect") != "/" {
		t.Errorf("HX-Redirect = %q", w.Header().Get("HX-Redirect"))
	}
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound, "nope")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"error":"nope"}` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestJSONError_CarriesRequestID(t *testing.T) {
	var body map[string]string
	h := trace.NewMiddleware(log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)}), nil).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			JSONError(w, r, http.StatusBadRequest, "invalid year")
		}))
	req := httptest.NewRequest(http.MethodGet, "/api/years/x", nil)
	req.Header.Set(trace.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "invalid year" || body["request_id"] != "abc-123" {
		t.Errorf("body = %v", body)
	}
}
