package services

import (
	"sync"
	"time"

	"painel/internal/core"
)

// NoticeKind classifies the message held in a session's error slot.
type NoticeKind uint8

const (
	// NoticeFetch is a transport or remote API failure.
	NoticeFetch NoticeKind = iota + 1
	// NoticeNoYears means the workbook has no tabs.
	NoticeNoYears
	// NoticeNoData means the selected tab holds no table.
	NoticeNoData
)

// Notice is the single user-visible error of a session.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Session is the per-login dashboard state. All fields are guarded by mu;
// callers go through Dashboard and read state through View.
type Session struct {
	ID        string
	User      string
	CreatedAt time.Time

	mu sync.Mutex

	years       []string
	yearsLoaded bool
	year        string
	month       time.Month
	table       *core.FinancialTable
	cards       []core.KPICard
	// monthAppliedFor is the year whose default month has been resolved.
	monthAppliedFor string
	generation      uint64
	notice          *Notice

	loadingYears bool
	loadingData  bool
}

func newSession(id, user string, now time.Time) *Session {
	return &Session{ID: id, User: user, CreatedAt: now, month: time.January}
}

// View is an immutable snapshot of a session for rendering.
type View struct {
	User          string
	Years         []string
	Year          string
	Month         time.Month
	MonthName     string
	Table         *core.FinancialTable
	Cards         []core.KPICard
	Profitability string
	Notice        *Notice
	LoadingYears  bool
	LoadingData   bool
}

// Loading reports whether any fetch is in flight; selectors are disabled
// while it is true.
func (v View) Loading() bool { return v.LoadingYears || v.LoadingData }

// HasTable reports whether a year table is loaded.
func (v View) HasTable() bool { return v.Table != nil }

// view must be called with s.mu held.
func (s *Session) view() View {
	v := View{
		User:         s.User,
		Years:        append([]string(nil), s.years...),
		Year:         s.year,
		Month:        s.month,
		MonthName:    core.MonthName(s.month),
		Cards:        append([]core.KPICard(nil), s.cards...),
		LoadingYears: s.loadingYears,
		LoadingData:  s.loadingData,
	}
	if s.table != nil {
		t := *s.table
		v.Table = &t
		v.Profitability = t.AnnualProfitability
	}
	if s.notice != nil {
		n := *s.notice
		v.Notice = &n
	}
	return v
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}
