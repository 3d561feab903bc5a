package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
)

var errInvalidCSRF = fmt.Errorf("%w: invalid csrf token", core.ErrValidation)

type errorModel struct {
	Status  int
	Title   string
	Message string
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrStorage):
		return http.StatusServiceUnavailable
	case auth.IsTokenError(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// userMessage strips the error kind prefix from a validation error.
func userMessage(err error) string {
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		msg = msg[i+len(marker):]
	}
	if msg == "" {
		return "invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// errorResponse renders the error page. Internal details of 5xx errors are
// never shown.
func errorResponse(err error) *Response {
	status := statusFor(err)
	model := errorModel{Status: status, Title: http.StatusText(status)}
	switch status {
	case http.StatusBadRequest:
		model.Message = userMessage(err)
	case http.StatusForbidden:
		model.Message = "You need to log in to do that."
	case http.StatusNotFound:
		model.Message = "The page or expense you requested does not exist."
	case http.StatusServiceUnavailable:
		model.Message = "The expense store is temporarily unavailable. Please try again later."
	default:
		model.Message = "Something went wrong. Please try again later."
	}
	return Render("error.html", model).Status(status)
}
