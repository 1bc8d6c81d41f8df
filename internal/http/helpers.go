package http

import (
	"net/http"
	"strings"
	"time"

	"painel/internal/log"
	"painel/internal/services"
)

// SessionCookie is the name of the cookie holding the session ID.
const SessionCookie = "painel_session"

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// isSecure reports whether the client reached us over TLS, directly or
// through a proxy that says so.
func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// session resolves the request's session, or nil when there is none.
func (s *Server) session(r *http.Request) *services.Session {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	sess, err := s.dash.Session(c.Value)
	if err != nil {
		return nil
	}
	return sess
}

// seeOther redirects a plain form post back to a page.
func seeOther(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// recoveryLogger adapts the structured logger to gorilla's RecoveryHandlerLogger.
type recoveryLogger struct {
	logger *log.Logger
}

func (l recoveryLogger) Println(v ...any) {
	args := make([]any, 0, 2)
	if len(v) > 0 {
		args = append(args, "panic", v[0])
	}
	l.logger.Error("Recovered from panic in HTTP handler", args...)
}
