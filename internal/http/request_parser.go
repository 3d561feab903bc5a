// Package http adapts net/http to the expense tracker's view handlers.
//
// This file defines the plain request value handlers receive. The server
// adapter builds one per request from the matched route, the parsed form,
// the session cookie and the CSRF cookie.

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	"expensetracker/internal/router"
)

// maxFormBytes bounds the size of a submitted form.
const maxFormBytes = 64 << 10

// Request is the transport-independent view of an HTTP request.
type Request struct {
	Method    string
	Path      string
	Params    router.Params
	Form      url.Values
	Session   auth.Session
	CSRFToken string
	CSRFValid bool
	ClientIP  string
	// FormErr holds a body parse failure; Form is empty when set.
	FormErr error
}

// Value returns a trimmed, sanitized form field.
func (r *Request) Value(key string) string {
	if r.Form == nil {
		return ""
	}
	return sanitizeInput(r.Form.Get(key))
}

// ID returns the numeric {id} path segment.
func (r *Request) ID() (int64, error) {
	if !r.Params.HasID {
		return 0, fmt.Errorf("%w: missing id", core.ErrNotFound)
	}
	return r.Params.ID, nil
}

// parseForm reads url-encoded POST bodies. Query parameters are ignored for
// POST so a form field cannot be smuggled through the URL.
func parseForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	if r.Method != http.MethodPost {
		return url.Values{}, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: malformed form: %v", core.ErrValidation, err)
	}
	return r.PostForm, nil
}

// submittedCSRF returns the token from the form or the X-CSRF-Token header.
func submittedCSRF(r *http.Request, form url.Values) string {
	if token := strings.TrimSpace(form.Get(csrfFormField)); token != "" {
		return token
	}
	return strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
}
