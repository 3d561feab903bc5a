package trace

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/log"
)

func TestMiddleware_AssignsRequestIDAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Format: "json", Output: &buf, Component: log.ComponentApp})

	var seenID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		log.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNotFound)
	})

	mw := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.9" })
	srv := log.Middleware(logger)(mw.Middleware(handler))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses/9", nil))

	require.NotEmpty(t, seenID)
	_, err := uuid.Parse(seenID)
	assert.NoError(t, err)
	assert.Equal(t, seenID, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, int64(1), mw.TotalRequests())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var inside, end map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &inside))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &end))

	assert.Equal(t, seenID, inside[log.FieldRequestID])
	assert.Equal(t, "WARN", end["level"])
	assert.Equal(t, float64(404), end[log.FieldStatusCode])
	assert.Equal(t, "203.0.113.9", end[log.FieldClientIP])
	assert.Equal(t, log.ComponentHTTP, end[log.FieldComponent])
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	_, _ = rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusOK, rw.statusCode)
}

func TestGetRequestID_Missing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetRequestID(r.Context()))
}
