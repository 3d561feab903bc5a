package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"expensetracker/internal/auth"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/router"
	"expensetracker/internal/services"
	appweb "expensetracker/web"
)

// page is the value every template executes against.
type page struct {
	Authenticated bool
	Username      string
	CSRFToken     string
	Data          any
}

// Server is the expense tracker's HTTP front end.
type Server struct {
	http.Server
	templates    *template.Template
	routes       *router.Table[HandlerFunc]
	gate         *auth.Gate
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	started      time.Time
	logger       *log.Logger
	structured   *log.StructuredLogger
	cookieSecure bool
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(cfg *config.Config, expenses *services.ExpenseService, gate *auth.Gate, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates:    t,
		routes:       NewHandlers(expenses, gate, logger).Routes(),
		gate:         gate,
		limiter:      newLoginLimiter(cfg.LoginRateLimit),
		detector:     security.NewDetector(logger),
		logger:       logger.WithComponent(log.ComponentHTTP),
		cookieSecure: cfg.CookieSecure,
		started:      time.Now(),
	}
	s.structured = log.NewStructuredLogger(s.logger)
	s.routes.Handle("metrics", http.MethodGet, pathMetrics, s.Metrics)

	for _, cidr := range cfg.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.limiter.Stop()
			return nil, fmt.Errorf("trusted proxies: %w", err)
		}
	}

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	mux.Handle("/", security.NoStore(http.HandlerFunc(s.dispatch)))

	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, isLoginAttempt, s.onLoginLimited)(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.detector.Middleware(handler)
	handler = headers.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Shutdown gracefully shuts down the server and the limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// dispatch matches the route, builds the request value, runs the handler
// and writes its response. The body is read only for a matched route, and a
// malformed body is reported by the handler after its permission check.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := s.buildRequest(w, r)
	if err != nil {
		s.write(w, r, req, errorResponse(err))
		return
	}

	route, params, err := s.routes.Match(r.Method, r.URL.Path)
	if err != nil {
		// Allow lists the methods the path does serve.
		if allowed := s.routes.Allowed(r.URL.Path); len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
		}
		s.write(w, r, req, errorResponse(fmt.Errorf("%w: %s %s", core.ErrNotFound, r.Method, r.URL.Path)))
		return
	}
	req.Params = params
	s.readForm(w, r, req)

	ctx = auth.WithSession(ctx, req.Session)
	resp, err := route.Handler(ctx, req)
	if err != nil {
		s.logHandlerError(ctx, route.Name, err)
		resp = errorResponse(err)
	}
	s.write(w, r.WithContext(ctx), req, resp)
}

// buildRequest resolves the session and CSRF cookies. The body is untouched.
func (s *Server) buildRequest(w http.ResponseWriter, r *http.Request) (*Request, error) {
	req := &Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		ClientIP: s.detector.ExtractClientIP(r),
		Form:     url.Values{},
	}

	session, stale := s.sessionFromCookie(r)
	if stale {
		s.clearSessionCookie(w)
	}
	req.Session = session

	token, err := s.ensureCSRFToken(w, r)
	if err != nil {
		return req, fmt.Errorf("issue csrf token: %w", err)
	}
	req.CSRFToken = token
	return req, nil
}

// readForm parses the body into req. A parse failure is kept in FormErr and
// leaves the CSRF check failed.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request, req *Request) {
	form, err := parseForm(w, r)
	if err != nil {
		req.FormErr = err
		return
	}
	req.Form = form
	if r.Method == http.MethodPost {
		req.CSRFValid = auth.ValidCSRF(req.CSRFToken, submittedCSRF(r, form))
	}
}

func (s *Server) logHandlerError(ctx context.Context, route string, err error) {
	status := statusFor(err)
	logger := log.FromContext(ctx).WithComponent(log.ComponentHTTP)
	switch {
	case status >= http.StatusInternalServerError:
		s.structured.LogError(ctx, "Handler failed", err, log.ComponentHTTP, route,
			log.NewFields().WithErrorType(errorType(err)))
	case status == http.StatusForbidden:
		logger.WarnContext(ctx, "Permission denied", log.FieldRoute, route, log.FieldError, err)
	default:
		logger.DebugContext(ctx, "Handler rejected request", log.FieldRoute, route, log.FieldError, err)
	}
}

// write turns a Response into bytes on the wire.
func (s *Server) write(w http.ResponseWriter, r *http.Request, req *Request, resp *Response) {
	switch {
	case resp.startSession:
		s.setSessionCookie(w, resp.sessionToken)
	case resp.endSession:
		s.clearSessionCookie(w)
	}
	for k, v := range resp.headers {
		w.Header().Set(k, v)
	}

	switch resp.kind {
	case kindRedirect:
		http.Redirect(w, r, resp.redirect, resp.status)
	case kindJSON:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(resp.status)
		if err := json.NewEncoder(w).Encode(resp.model); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "JSON encoding failed", log.FieldError, err)
		}
	case kindText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	default:
		s.render(w, r, req, resp)
	}
}

// render executes the template into a buffer so a template failure can still
// produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, req *Request, resp *Response) {
	data := page{Data: resp.model}
	if req != nil {
		data.Authenticated = req.Session.IsAuthenticated()
		data.Username = req.Session.Username
		data.CSRFToken = req.CSRFToken
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, resp.template, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			"template", resp.template)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(resp.status)
	_, _ = buf.WriteTo(w)
}

func errorType(err error) string {
	switch statusFor(err) {
	case http.StatusServiceUnavailable:
		return log.ErrorTypeDatabase
	default:
		return log.ErrorTypeInternal
	}
}

var templateFuncs = template.FuncMap{
	"expensePath": func(id int64) string { return router.Path(pathDetail, id) },
	"editPath":    func(id int64) string { return router.Path(pathEdit, id) },
	"deletePath":  func(id int64) string { return router.Path(pathDelete, id) },
}
