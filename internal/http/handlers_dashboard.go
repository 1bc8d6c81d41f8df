package http

import (
	"net/http"

	"painel/internal/log"
	"painel/internal/services"
)

// dashboardPartial is the template swapped into #dashboard by htmx.
const dashboardPartial = "dashboard_body"

// respondDashboard renders the dashboard partial for htmx, or redirects a
// plain form post back to the page.
func (s *Server) respondDashboard(w http.ResponseWriter, r *http.Request, v services.View, b *HTMXResponseBuilder) {
	if !isHTMX(r) {
		seeOther(w, r, "/")
		return
	}
	if b == nil {
		b = NewHTMXResponse()
	}
	b.Template(s.templates, dashboardPartial, s.dashboardPage(v)).Write(w)
}

func (s *Server) handleSelectYear(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	year, err := ParseYear(r.PostForm)
	if err != nil {
		BadRequestError("Ano inválido").Write(w)
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentDashboard).DebugContext(r.Context(), "Year selected",
		log.FieldSessionID, sess.ID, log.FieldYear, year, log.FieldOperation, log.OpSelectYear)

	// The year list must exist before the selection is validated.
	s.dash.EnsureYears(r.Context(), sess)
	v := s.dash.SelectYear(r.Context(), sess, year)
	s.respondDashboard(w, r, v, NewHTMXResponse().TriggerYearLoaded(v.Year, int(v.Month)))
}

func (s *Server) handleSelectMonth(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	month, err := ParseMonth(r.PostForm)
	if err != nil {
		BadRequestError("Mês inválido").Write(w)
		return
	}

	v := s.dash.SelectMonth(sess, month)
	log.FromContext(r.Context()).WithComponent(log.ComponentDashboard).DebugContext(r.Context(), "Month selected",
		log.FieldSessionID, sess.ID, log.FieldYear, v.Year, log.FieldMonth, v.MonthName, log.FieldOperation, log.OpSelectMonth)
	s.respondDashboard(w, r, v, NewHTMXResponse().TriggerMonthChanged(v.Year, int(v.Month)))
}

func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	s.respondDashboard(w, r, s.dash.DismissNotice(sess), nil)
}
