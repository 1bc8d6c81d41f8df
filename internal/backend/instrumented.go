package backend

import (
	"context"
	"errors"
	"time"

	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/metrics"
	"painel/internal/sheets"
)

// Instrumented decorates a source with logging, metrics and an optional
// per-call deadline.
type Instrumented struct {
	next    sheets.Source
	name    string
	layout  sheets.Layout
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *log.StructuredLogger
	base    *log.Logger
}

var _ sheets.Source = (*Instrumented)(nil)

// Instrument wraps next. A zero timeout leaves the caller's deadline alone.
func Instrument(next sheets.Source, name string, layout sheets.Layout, timeout time.Duration, m *metrics.Metrics, logger *log.Logger) *Instrumented {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Instrumented{
		next:    next,
		name:    name,
		layout:  layout,
		timeout: timeout,
		metrics: m,
		logger:  log.NewStructuredLogger(logger),
		base:    logger.WithComponent(log.ComponentSheets),
	}
}

func (s *Instrumented) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListYears implements sheets.YearLister.
func (s *Instrumented) ListYears(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	years, err := s.next.ListYears(ctx)
	d := time.Since(start)

	outcome := fetchOutcome(err, len(years) == 0)
	s.metrics.ObserveFetch(log.OpListYears, s.name, outcome, d)
	if err != nil {
		s.logger.LogError(ctx, "Failed to list year tabs", err, log.ComponentSheets, log.OpListYears,
			log.NewFields().With(log.FieldBackend, s.name).With(log.FieldDuration, d.Milliseconds()))
		return nil, err
	}
	s.base.DebugContext(ctx, "Year tabs listed", log.FieldBackend, s.name, "count", len(years), log.FieldDuration, d.Milliseconds())
	return years, nil
}

// ReadYear implements sheets.YearReader.
func (s *Instrumented) ReadYear(ctx context.Context, year string) (core.RawYear, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	raw, err := s.next.ReadYear(ctx, year)
	d := time.Since(start)

	outcome := fetchOutcome(err, len(raw.Rows) == 0)
	s.metrics.ObserveFetch(log.OpReadYear, s.name, outcome, d)
	if err != nil {
		s.logger.LogError(ctx, "Failed to read year tab", err, log.ComponentSheets, log.OpReadYear,
			log.NewFields().WithYear(year, "").With(log.FieldBackend, s.name).With(log.FieldRange, s.layout.MainRange(year)))
		return core.RawYear{}, err
	}
	s.logger.LogYearLoaded(ctx, year, s.layout.MainRange(year), len(raw.Rows), d.Milliseconds())
	return raw, nil
}

func fetchOutcome(err error, empty bool) string {
	switch {
	case errors.Is(err, sheets.ErrYearNotFound):
		return metrics.OutcomeNotFound
	case err != nil:
		return metrics.OutcomeError
	case empty:
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeOK
	}
}
