// Package router maps a method and path to a handler through a static table.
//
// Patterns are literal paths that may contain a single numeric {id}
// segment, for example "/expenses/{id}/edit". The router knows nothing about
// net/http; it returns whatever handler value was registered.
package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoRoute is returned when no entry matches the method and path.
var ErrNoRoute = errors.New("no route")

const idParam = "{id}"

// Params holds the values extracted from a matched path.
type Params struct {
	ID    int64
	HasID bool
}

// Route is one entry of the table.
type Route[H any] struct {
	Name    string
	Method  string
	Pattern string
	Handler H

	segments []string
}

// Table is an ordered set of routes. The first match wins.
type Table[H any] struct {
	routes []Route[H]
}

// New returns an empty table.
func New[H any]() *Table[H] {
	return &Table[H]{}
}

// Handle registers handler for method and pattern. It panics on a malformed
// pattern, matching net/http.ServeMux.
func (t *Table[H]) Handle(name, method, pattern string, handler H) {
	segments, err := splitPattern(pattern)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	t.routes = append(t.routes, Route[H]{
		Name:     name,
		Method:   strings.ToUpper(method),
		Pattern:  pattern,
		Handler:  handler,
		segments: segments,
	})
}

// Routes returns the registered routes in order.
func (t *Table[H]) Routes() []Route[H] {
	out := make([]Route[H], len(t.routes))
	copy(out, t.routes)
	return out
}

// Match finds the handler for method and path.
func (t *Table[H]) Match(method, path string) (Route[H], Params, error) {
	parts := splitPath(path)
	method = strings.ToUpper(method)

	for _, r := range t.routes {
		if r.Method != method {
			continue
		}
		if params, ok := r.match(parts); ok {
			return r, params, nil
		}
	}
	var zero Route[H]
	return zero, Params{}, fmt.Errorf("%w: %s %s", ErrNoRoute, method, path)
}

// Allowed returns the methods registered for path.
func (t *Table[H]) Allowed(path string) []string {
	parts := splitPath(path)
	var methods []string
	for _, r := range t.routes {
		if _, ok := r.match(parts); ok {
			methods = append(methods, r.Method)
		}
	}
	return methods
}

func (r Route[H]) match(parts []string) (Params, bool) {
	if len(parts) != len(r.segments) {
		return Params{}, false
	}
	var params Params
	for i, seg := range r.segments {
		if seg == idParam {
			id, ok := parseID(parts[i])
			if !ok {
				return Params{}, false
			}
			params.ID = id
			params.HasID = true
			continue
		}
		if seg != parts[i] {
			return Params{}, false
		}
	}
	return params, true
}

// Path renders pattern with id substituted for the {id} segment.
func Path(pattern string, id int64) string {
	return strings.Replace(pattern, idParam, strconv.FormatInt(id, 10), 1)
}

func parseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func splitPattern(pattern string) ([]string, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", pattern)
	}
	segments := splitPath(pattern)
	ids := 0
	for _, seg := range segments {
		switch {
		case seg == idParam:
			ids++
		case strings.ContainsAny(seg, "{}*"):
			return nil, fmt.Errorf("pattern %q: only %s is supported", pattern, idParam)
		}
	}
	if ids > 1 {
		return nil, fmt.Errorf("pattern %q: at most one %s segment", pattern, idParam)
	}
	return segments, nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
