package http

import (
	"context"
	"net/http"
	"time"

	"painel/internal/log"
	"painel/internal/services"
)

const msgInvalidLogin = "Usuário ou senha inválidos."

type sessionHandler func(http.ResponseWriter, *http.Request, *services.Session)

// withSession resolves the session for UI partials. Without one, htmx
// clients are redirected to the login page and plain posts go back to /.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(r)
		if sess == nil {
			if isHTMX(r) {
				UnauthorizedError().Write(w)
				return
			}
			seeOther(w, r, "/")
			return
		}
		next(w, r, sess)
	}
}

// withAPISession is withSession for JSON endpoints.
func (s *Server) withAPISession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(r)
		if sess == nil {
			JSONError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r, sess)
	}
}

// handleIndex renders the login page, or the dashboard for a live session.
// The first dashboard render loads the year list and the default year.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if sess == nil {
		NewHTMXResponse().Template(s.templates, "login.html", s.loginPage("", "")).Write(w)
		return
	}
	v := s.dash.Open(r.Context(), sess)
	s.render(w, r, http.StatusOK, "dashboard.html", s.dashboardPage(v))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	creds := ParseCredentials(r.PostForm)
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentAuth)

	if !s.users.Check(creds.Username, creds.Password) {
		s.metrics.Login(false)
		logger.WarnContext(r.Context(), "Login rejected",
			log.FieldUser, creds.Username,
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldOperation, log.OpLogin)
		s.render(w, r, http.StatusUnauthorized, "login.html", s.loginPage(creds.Username, msgInvalidLogin))
		return
	}

	if old := s.session(r); old != nil {
		s.dash.EndSession(old.ID)
	}
	sess := s.dash.StartSession(creds.Username)
	s.metrics.Login(true)
	setSessionCookie(w, r, sess.ID, s.ttl)
	seeOther(w, r, "/")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := s.session(r); sess != nil {
		s.dash.EndSession(sess.ID)
	}
	clearSessionCookie(w, r)
	if isHTMX(r) {
		NewHTMXResponse().Redirect("/").Write(w)
		return
	}
	seeOther(w, r, "/")
}

// render writes a full-page template, logging rendering failures.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	b := NewHTMXResponse().Status(status).Template(s.templates, name, data)
	if b.statusCode == http.StatusInternalServerError && status != http.StatusInternalServerError {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Template execution failed", "template", name, log.FieldOperation, log.OpRender)
	}
	b.Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks that templates are loaded and the workbook answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if years, err := s.dash.Years(ctx); err != nil {
		checks["workbook"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["workbook"] = map[string]any{"status": "ok", "years": len(years)}
	}

	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients()}
	checks["security"] = map[string]any{"suspicious_requests": s.detector.GetMetrics().SuspiciousRequests}
	checks["requests"] = s.tracer.GetMetrics()

	JSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
