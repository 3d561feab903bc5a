package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const pathMetrics = "/metrics"

// Metrics reports request, rate limit and security counters in the
// Prometheus text format.
func (s *Server) Metrics(ctx context.Context, req *Request) (*Response, error) {
	var b strings.Builder

	writeMetric(&b, "http_requests_total", "Total number of HTTP requests", "counter", s.tracer.TotalRequests())
	writeMetric(&b, "rate_limit_hits_total", "Total login rate limit hits", "counter", s.limiter.Hits())
	writeMetric(&b, "suspicious_requests_total", "Total suspicious requests detected", "counter", s.detector.SuspiciousRequests())
	writeMetric(&b, "active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", s.limiter.ActiveClients())

	fmt.Fprintf(&b, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(&b, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(&b, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())

	return Text(http.StatusOK, b.String()), nil
}

func writeMetric[N int | int64](b *strings.Builder, name, help, kind string, value N) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(b, "%s %d\n\n", name, value)
}
