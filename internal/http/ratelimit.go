package http

import (
	"fmt"
	"net/http"

	"expensetracker/internal/middleware/ratelimit"
)

// newLoginLimiter limits login attempts per client IP.
func newLoginLimiter(perMinute int) *ratelimit.Limiter {
	cfg := ratelimit.DefaultConfig()
	if perMinute > 0 {
		cfg.RequestsPerMinute = perMinute
	}
	return ratelimit.NewLimiter(cfg)
}

// isLoginAttempt reports whether r is a credential submission.
func isLoginAttempt(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Path == pathLogin
}

// onLoginLimited re-renders the login page with a 429 status.
func (s *Server) onLoginLimited(w http.ResponseWriter, r *http.Request) {
	retry := s.limiter.RetryAfter(s.detector.ExtractClientIP(r))
	model := loginModel{Error: fmt.Sprintf("Too many login attempts. Try again in %d seconds.", int(retry.Seconds())+1)}
	req := &Request{Method: r.Method, Path: r.URL.Path}
	req.CSRFToken, _ = s.ensureCSRFToken(w, r)
	s.write(w, r, req, Render("login.html", model).Status(http.StatusTooManyRequests))
}
