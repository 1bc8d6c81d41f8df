package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Component: ComponentApp,
		Handler:   slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	buf.Reset()
	return m
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.Info("hello")
	if got := decodeLine(t, &buf)[FieldComponent]; got != ComponentApp {
		t.Fatalf("component = %v", got)
	}

	l.WithComponent(ComponentDashboard).With(FieldYear, "2025").Warn("stale")
	m := decodeLine(t, &buf)
	if m[FieldComponent] != ComponentDashboard || m[FieldYear] != "2025" {
		t.Fatalf("unexpected record %v", m)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))

	sl.LogYearLoaded(context.Background(), "2025", "'2025'!A6:P107", 12, 85)
	m := decodeLine(t, &buf)
	if m[FieldComponent] != ComponentSheets || m[FieldRange] != "'2025'!A6:P107" || m[FieldRows] != float64(12) {
		t.Fatalf("unexpected record %v", m)
	}

	sl.LogError(context.Background(), "fetch failed", errors.New("boom"), ComponentSheets, OpReadYear, nil)
	m = decodeLine(t, &buf)
	if m[FieldError] != "boom" || m[FieldOperation] != OpReadYear || m["level"] != "ERROR" {
		t.Fatalf("unexpected record %v", m)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/years?x=1", nil)
	sl.LogHTTPEnd(context.Background(), r, 503, 3, "10.0.0.1")
	m = decodeLine(t, &buf)
	if m["level"] != "ERROR" || m[FieldStatusCode] != float64(503) || m[FieldSuccess] != false {
		t.Fatalf("unexpected record %v", m)
	}
}

func TestWithContextAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).With(NewFields().WithRequestID("req-1").ToSlice()...)

	got := FromContext(WithContext(context.Background(), l))
	got.Info("inside")

	if m := decodeLine(t, &buf); m[FieldRequestID] != "req-1" {
		t.Fatalf("request id missing: %v", m)
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must fall back to the default logger")
	}
}
