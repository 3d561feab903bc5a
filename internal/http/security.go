package http

import (
	"net/http"

	"expensetracker/internal/auth"
	"expensetracker/internal/log"
)

const (
	sessionCookieName = "expense_session"
	csrfCookieName    = "expense_csrf"
	csrfFormField     = "csrf_token"
)

// sessionFromCookie resolves the session token cookie. A missing, expired or
// forged token is an anonymous session; only the latter two are logged.
func (s *Server) sessionFromCookie(r *http.Request) (auth.Session, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return auth.Session{}, false
	}
	session, err := s.gate.SessionFromToken(c.Value)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentAuth).DebugContext(r.Context(),
			"Discarding invalid session token", log.FieldError, err)
		return auth.Session{}, true
	}
	return session, false
}

// ensureCSRFToken returns the CSRF cookie value, issuing a fresh token when
// the request carries none.
func (s *Server) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(csrfCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	token, err := auth.NewCSRFToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.gate.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
