package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"painel/internal/cache"
	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/metrics"
	"painel/internal/sheets"
)

// User-facing messages for the error slot.
const (
	msgNoYears = "Nenhum ano (aba) encontrado na planilha. Verifique se a planilha contém abas nomeadas como anos " +
		"e se as credenciais e o compartilhamento da planilha estão corretos."
	msgYearsFailed = "Falha ao buscar os anos da planilha. Verifique a chave da API, o ID da planilha e as " +
		"configurações de compartilhamento. Erro: %s. Consulte os logs do servidor para mais detalhes técnicos."
	msgYearFailed = "Falha ao buscar dados para o ano %s. Erro: %s. Consulte os logs do servidor."
	msgNoData     = "Nenhum dado encontrado para o ano %s na planilha. Verifique se a aba do ano contém dados."
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownYear     = errors.New("year is not listed in the workbook")
)

// DashboardConfig holds configuration for the dashboard service
type DashboardConfig struct {
	// SessionTTL is the idle lifetime of a login (default: 8h)
	SessionTTL time.Duration

	// SessionMax bounds the number of concurrent sessions (default: 1000)
	SessionMax int

	// Now returns the current time; the default year depends on it
	Now func() time.Time
}

// DefaultDashboardConfig returns sensible defaults
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		SessionTTL: 8 * time.Hour,
		SessionMax: 1000,
		Now:        time.Now,
	}
}

// Dashboard drives the per-session dashboard: it lists the year tabs,
// loads and normalizes a year, picks its default month once and projects
// the KPI cards.
type Dashboard struct {
	source   sheets.Source
	spec     core.KPISpec
	sessions *cache.LRUCache[*Session]
	metrics  *metrics.Metrics
	logger   *log.Logger
	now      func() time.Time
}

func NewDashboard(source sheets.Source, spec core.KPISpec, cfg DashboardConfig, m *metrics.Metrics, logger *log.Logger) *Dashboard {
	def := DefaultDashboardConfig()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.SessionMax <= 0 {
		cfg.SessionMax = def.SessionMax
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	d := &Dashboard{
		source:  source,
		spec:    spec,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentDashboard),
		now:     cfg.Now,
	}
	d.sessions = cache.NewLRUCache(cfg.SessionMax, cfg.SessionTTL,
		cache.WithSlidingExpiration[*Session](),
		cache.WithClock[*Session](cfg.Now),
		cache.WithEvictCallback(func(id string, s *Session) {
			d.logger.Info("Session expired", log.FieldSessionID, id, log.FieldUser, s.User)
		}),
	)
	return d
}

// Spec returns the card table in use.
func (d *Dashboard) Spec() core.KPISpec { return d.spec }

// Sessions exposes the session store for periodic cleanup.
func (d *Dashboard) Sessions() cache.Cleaner { return d.sessions }

// StartSession creates a session for an authenticated user.
func (d *Dashboard) StartSession(user string) *Session {
	s := newSession(uuid.NewString(), user, d.now())
	d.sessions.Set(s.ID, s)
	d.metrics.SetActiveSessions(d.sessions.Size())
	d.logger.Info("Session started", log.FieldSessionID, s.ID, log.FieldUser, user, log.FieldOperation, log.OpLogin)
	return s
}

// Session returns a live session.
func (d *Dashboard) Session(id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	s, ok := d.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// EndSession discards a session and everything it loaded.
func (d *Dashboard) EndSession(id string) {
	d.sessions.Delete(id)
	d.metrics.SetActiveSessions(d.sessions.Size())
	d.logger.Info("Session ended", log.FieldSessionID, id, log.FieldOperation, log.OpLogout)
}

// Open loads the year list the first time it is called for a session and
// then selects the default year: the current calendar year when listed,
// otherwise the last entry of the list. Once a year is selected later calls
// return the current view.
func (d *Dashboard) Open(ctx context.Context, s *Session) View {
	v := d.EnsureYears(ctx, s)
	if v.Year != "" || v.LoadingYears || len(v.Years) == 0 {
		return v
	}
	return d.SelectYear(ctx, s, d.defaultYear(v.Years))
}

// EnsureYears loads the year list if this session has none yet, without
// selecting a year. A failed listing is retried on the next call.
func (d *Dashboard) EnsureYears(ctx context.Context, s *Session) View {
	s.mu.Lock()
	if s.yearsLoaded || s.loadingYears {
		defer s.mu.Unlock()
		return s.view()
	}
	s.loadingYears = true
	s.notice = nil
	s.monthAppliedFor = ""
	s.mu.Unlock()

	years, err := d.source.ListYears(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingYears = false
	if err != nil {
		s.notice = &Notice{Kind: NoticeFetch, Message: fmt.Sprintf(msgYearsFailed, remoteMessage(err))}
		d.logger.WarnContext(ctx, "Year list unavailable", log.FieldSessionID, s.ID, log.FieldError, err)
		return s.view()
	}
	s.years = years
	s.yearsLoaded = true
	if len(years) == 0 {
		s.notice = &Notice{Kind: NoticeNoYears, Message: msgNoYears}
	}
	return s.view()
}

func (d *Dashboard) defaultYear(years []string) string {
	current := strconv.Itoa(d.now().Year())
	if slices.Contains(years, current) {
		return current
	}
	return years[len(years)-1]
}

// SelectYear fetches and normalizes a year and resolves its default month.
// A response that arrives after a newer selection was made is discarded.
func (d *Dashboard) SelectYear(ctx context.Context, s *Session, year string) View {
	s.mu.Lock()
	if s.yearsLoaded && !slices.Contains(s.years, year) {
		defer s.mu.Unlock()
		d.logger.WarnContext(ctx, "Rejected unknown year", log.FieldSessionID, s.ID, log.FieldYear, year)
		return s.view()
	}
	s.generation++
	gen := s.generation
	s.year = year
	s.monthAppliedFor = ""
	s.loadingData = true
	s.notice = nil
	s.table = nil
	s.cards = nil
	s.mu.Unlock()

	raw, err := d.source.ReadYear(ctx, year)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.year != year {
		d.metrics.StaleResponse()
		d.logger.DebugContext(ctx, "Discarded stale year response",
			log.FieldSessionID, s.ID, log.FieldYear, year, log.FieldGeneration, gen)
		return s.view()
	}
	s.loadingData = false

	if err != nil {
		s.notice = &Notice{Kind: NoticeFetch, Message: fmt.Sprintf(msgYearFailed, year, remoteMessage(err))}
		return s.view()
	}

	t := core.NewFinancialTable(raw)
	s.table = &t
	if t.IsEmpty() {
		s.notice = &Notice{Kind: NoticeNoData, Message: fmt.Sprintf(msgNoData, year)}
	}

	if s.monthAppliedFor != year {
		s.month = core.ResolveMonth(t, d.spec.KeyIndicator())
		s.monthAppliedFor = year
		d.logger.DebugContext(ctx, "Default month resolved",
			log.FieldSessionID, s.ID, log.FieldYear, year, log.FieldMonth, core.MonthName(s.month))
	}
	s.cards = core.ProjectKPIs(t, s.month, d.spec)
	return s.view()
}

// SelectMonth changes the month and re-projects the cards. The default
// month logic is not re-run.
func (d *Dashboard) SelectMonth(s *Session, m time.Month) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m < time.January || m > time.December {
		return s.view()
	}
	s.month = m
	if s.table != nil {
		s.cards = core.ProjectKPIs(*s.table, m, d.spec)
	}
	return s.view()
}

// DismissNotice clears the error slot.
func (d *Dashboard) DismissNotice(s *Session) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = nil
	return s.view()
}

// YearReport is the stateless projection of one year used by the JSON
// API and the CLI.
type YearReport struct {
	Table core.FinancialTable
	Month time.Month
	// MonthResolved is true when Month was inferred rather than requested.
	MonthResolved bool
	Cards         []core.KPICard
}

// Years lists the year tabs without touching any session.
func (d *Dashboard) Years(ctx context.Context) ([]string, error) {
	return d.source.ListYears(ctx)
}

// Report loads a year and projects it for month, or for the inferred
// default month when month is nil.
func (d *Dashboard) Report(ctx context.Context, year string, month *time.Month) (YearReport, error) {
	raw, err := d.source.ReadYear(ctx, year)
	if err != nil {
		return YearReport{}, fmt.Errorf("read year %s: %w", year, err)
	}
	t := core.NewFinancialTable(raw)
	r := YearReport{Table: t}
	if month != nil {
		r.Month = *month
	} else {
		r.Month = core.ResolveMonth(t, d.spec.KeyIndicator())
		r.MonthResolved = true
	}
	r.Cards = core.ProjectKPIs(t, r.Month, d.spec)
	return r, nil
}

// remoteMessage prefers the message reported by the spreadsheet service.
func remoteMessage(err error) string {
	var apiErr *sheets.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}
