package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/router"
	"expensetracker/internal/services"
)

// HandlerFunc is a view handler: a function of the request value returning
// a response value or an error mapped by statusFor.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

const (
	pathHome   = "/"
	pathDetail = "/expenses/{id}"
	pathCreate = "/expenses/new-expense"
	pathEdit   = "/expenses/{id}/edit"
	pathDelete = "/expenses/{id}/delete"
	pathAPI    = "/api/expenses/{id}"
	pathLogin  = "/login"
	pathLogout = "/logout"
	pathHealth = "/healthz"
	pathReady  = "/readyz"
)

// Render-models

type listModel struct {
	Expenses []core.ExpenseView
	Count    int
	Total    string
}

type detailModel struct {
	Expense core.ExpenseView
}

type formModel struct {
	ID      int64
	Editing bool
	Action  string
	Title   string
	Amount  string
	DueDate string
	Error   string
}

type loginModel struct {
	Username string
	Error    string
}

// Handlers holds the view handlers and their dependencies.
type Handlers struct {
	expenses *services.ExpenseService
	gate     *auth.Gate
	logger   *log.Logger
}

// NewHandlers creates the view handlers.
func NewHandlers(expenses *services.ExpenseService, gate *auth.Gate, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Handlers{expenses: expenses, gate: gate, logger: logger.WithComponent(log.ComponentExpense)}
}

// Routes returns the static route table.
func (h *Handlers) Routes() *router.Table[HandlerFunc] {
	t := router.New[HandlerFunc]()
	t.Handle("home", http.MethodGet, pathHome, h.List)
	t.Handle("create", http.MethodGet, pathCreate, h.CreateForm)
	t.Handle("create", http.MethodPost, pathCreate, h.CreateSubmit)
	t.Handle("detail", http.MethodGet, pathDetail, h.Detail)
	t.Handle("update", http.MethodGet, pathEdit, h.EditForm)
	t.Handle("update", http.MethodPost, pathEdit, h.EditSubmit)
	t.Handle("delete", http.MethodPost, pathDelete, h.Delete)
	t.Handle("api_detail", http.MethodGet, pathAPI, h.APIDetail)
	t.Handle("login", http.MethodGet, pathLogin, h.LoginForm)
	t.Handle("login", http.MethodPost, pathLogin, h.LoginSubmit)
	t.Handle("logout", http.MethodPost, pathLogout, h.Logout)
	t.Handle("health", http.MethodGet, pathHealth, h.Health)
	t.Handle("ready", http.MethodGet, pathReady, h.Ready)
	return t
}

// List renders every expense. An empty store is a not-found outcome.
func (h *Handlers) List(ctx context.Context, _ *Request) (*Response, error) {
	expenses, err := h.expenses.List(ctx)
	if err != nil {
		return nil, err
	}
	summary := core.Summarize(expenses)
	return Render("list.html", listModel{
		Expenses: core.Views(expenses),
		Count:    summary.Count,
		Total:    summary.TotalString(),
	}), nil
}

// Detail renders a single expense.
func (h *Handlers) Detail(ctx context.Context, req *Request) (*Response, error) {
	id, err := req.ID()
	if err != nil {
		return nil, err
	}
	e, err := h.expenses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Render("detail.html", detailModel{Expense: e.View()}), nil
}

// CreateForm renders an empty form. Submitting it requires a login.
func (h *Handlers) CreateForm(_ context.Context, _ *Request) (*Response, error) {
	return Render("form.html", formModel{Action: pathCreate}), nil
}

// CreateSubmit persists a new expense and redirects home.
func (h *Handlers) CreateSubmit(ctx context.Context, req *Request) (*Response, error) {
	if err := guardMutation(req); err != nil {
		return nil, err
	}

	model := formModel{
		Action:  pathCreate,
		Title:   req.Value("title"),
		Amount:  req.Value("amount"),
		DueDate: req.Value("due_date"),
	}
	in, err := core.ParseExpenseInput(model.Title, model.Amount, model.DueDate)
	if err != nil {
		return invalidForm(model, err)
	}
	if _, err := h.expenses.Create(ctx, in); err != nil {
		if errors.Is(err, core.ErrValidation) {
			return invalidForm(model, err)
		}
		return nil, err
	}
	return Redirect(pathHome), nil
}

// EditForm renders the current values of an expense.
func (h *Handlers) EditForm(ctx context.Context, req *Request) (*Response, error) {
	if err := auth.RequireAuthenticated(req.Session); err != nil {
		return nil, err
	}
	id, err := req.ID()
	if err != nil {
		return nil, err
	}
	e, err := h.expenses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Render("form.html", formModel{
		ID:      e.ID,
		Editing: true,
		Action:  router.Path(pathEdit, e.ID),
		Title:   e.Title,
		Amount:  e.Amount.String(),
		DueDate: e.DueDate.InputValue(),
	}), nil
}

// EditSubmit overwrites all three fields and redirects to the detail page.
func (h *Handlers) EditSubmit(ctx context.Context, req *Request) (*Response, error) {
	if err := guardMutation(req); err != nil {
		return nil, err
	}
	id, err := req.ID()
	if err != nil {
		return nil, err
	}

	model := formModel{
		ID:      id,
		Editing: true,
		Action:  router.Path(pathEdit, id),
		Title:   req.Value("title"),
		Amount:  req.Value("amount"),
		DueDate: req.Value("due_date"),
	}
	in, err := core.ParseExpenseInput(model.Title, model.Amount, model.DueDate)
	if err != nil {
		return invalidForm(model, err)
	}
	if _, err := h.expenses.Update(ctx, id, in); err != nil {
		if errors.Is(err, core.ErrValidation) {
			return invalidForm(model, err)
		}
		return nil, err
	}
	return Redirect(router.Path(pathDetail, id)), nil
}

// Delete removes an expense and redirects home.
func (h *Handlers) Delete(ctx context.Context, req *Request) (*Response, error) {
	if err := guardMutation(req); err != nil {
		return nil, err
	}
	id, err := req.ID()
	if err != nil {
		return nil, err
	}
	if err := h.expenses.Delete(ctx, id); err != nil {
		return nil, err
	}
	return Redirect(pathHome), nil
}

// APIDetail returns the external representation of an expense as JSON.
func (h *Handlers) APIDetail(ctx context.Context, req *Request) (*Response, error) {
	id, err := req.ID()
	if err != nil {
		return jsonError(http.StatusNotFound, "expense not found"), nil
	}
	e, err := h.expenses.Get(ctx, id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return jsonError(http.StatusNotFound, fmt.Sprintf("expense %d not found", id)), nil
	case err != nil:
		status := statusFor(err)
		return jsonError(status, http.StatusText(status)), nil
	}
	return JSON(http.StatusOK, e.View()), nil
}

// LoginForm renders the login page, or redirects home when already logged in.
func (h *Handlers) LoginForm(_ context.Context, req *Request) (*Response, error) {
	if req.Session.IsAuthenticated() {
		return Redirect(pathHome), nil
	}
	return Render("login.html", loginModel{}), nil
}

// LoginSubmit checks the credentials. Bad credentials re-render the form.
func (h *Handlers) LoginSubmit(ctx context.Context, req *Request) (*Response, error) {
	if req.Session.IsAuthenticated() {
		return Redirect(pathHome), nil
	}

	username := req.Value("username")
	model := loginModel{Username: username}

	if req.FormErr != nil || !req.CSRFValid {
		model.Error = "Invalid request, please try again"
		return Render("login.html", model).Status(http.StatusBadRequest), nil
	}

	token, ok, err := h.gate.Login(username, req.Form.Get("password"))
	if err != nil {
		return nil, err
	}
	if !ok {
		h.logger.WithComponent(log.ComponentAuth).WarnContext(ctx, "Login failed",
			log.FieldOperation, log.OpLogin,
			log.FieldUsername, username,
			log.FieldClientIP, req.ClientIP)
		model.Error = "Invalid username or password"
		return Render("login.html", model), nil
	}

	h.logger.WithComponent(log.ComponentAuth).InfoContext(ctx, "Login succeeded",
		log.FieldOperation, log.OpLogin,
		log.FieldUsername, username)
	return Redirect(pathHome).StartSession(token), nil
}

// Logout clears the session token and redirects home.
func (h *Handlers) Logout(_ context.Context, req *Request) (*Response, error) {
	if req.Session.IsAuthenticated() {
		if req.FormErr != nil {
			return nil, req.FormErr
		}
		if !req.CSRFValid {
			return nil, errInvalidCSRF
		}
	}
	return Redirect(pathHome).EndSession(), nil
}

// Health reports liveness.
func (h *Handlers) Health(_ context.Context, _ *Request) (*Response, error) {
	return Text(http.StatusOK, "ok"), nil
}

// Ready reports whether the record store answers.
func (h *Handlers) Ready(ctx context.Context, _ *Request) (*Response, error) {
	if err := h.expenses.Ready(ctx); err != nil {
		h.logger.WithComponent(log.ComponentStorage).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		return Text(http.StatusServiceUnavailable, "storage unavailable"), nil
	}
	return Text(http.StatusOK, "ready"), nil
}

// guardMutation runs the permission check before the body and CSRF checks,
// so an anonymous mutation is always a permission error.
func guardMutation(req *Request) error {
	if err := auth.RequireAuthenticated(req.Session); err != nil {
		return err
	}
	if req.FormErr != nil {
		return req.FormErr
	}
	if !req.CSRFValid {
		return errInvalidCSRF
	}
	return nil
}

func invalidForm(model formModel, err error) (*Response, error) {
	if !errors.Is(err, core.ErrValidation) {
		return nil, err
	}
	model.Error = userMessage(err)
	return Render("form.html", model).Status(http.StatusBadRequest), nil
}

func jsonError(status int, message string) *Response {
	return JSON(status, map[string]string{"error": message})
}
