// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for the responses view handlers
// return. A response is a render-model, a redirect or a JSON document; the
// server adapter turns it into bytes on the wire.

package http

import "net/http"

type responseKind int

const (
	kindRender responseKind = iota
	kindRedirect
	kindJSON
	kindText
)

// Response provides a fluent API for describing a handler's outcome.
type Response struct {
	kind     responseKind
	status   int
	template string
	model    any
	redirect string
	body     string
	headers  map[string]string

	sessionToken string
	startSession bool
	endSession   bool
}

// Render creates a 200 response rendering template with model.
func Render(template string, model any) *Response {
	return &Response{kind: kindRender, status: http.StatusOK, template: template, model: model}
}

// Redirect creates a 303 See Other response to target.
func Redirect(target string) *Response {
	return &Response{kind: kindRedirect, status: http.StatusSeeOther, redirect: target}
}

// JSON creates a JSON response.
func JSON(status int, v any) *Response {
	return &Response{kind: kindJSON, status: status, model: v}
}

// Text creates a plain-text response.
func Text(status int, body string) *Response {
	return &Response{kind: kindText, status: status, body: body}
}

// Status sets the HTTP status code for the response.
func (b *Response) Status(code int) *Response {
	b.status = code
	return b
}

// Header adds a custom header to the response.
func (b *Response) Header(name, value string) *Response {
	if b.headers == nil {
		b.headers = make(map[string]string)
	}
	b.headers[name] = value
	return b
}

// StartSession sets the session cookie to token.
func (b *Response) StartSession(token string) *Response {
	b.sessionToken = token
	b.startSession = true
	b.endSession = false
	return b
}

// EndSession clears the session cookie.
func (b *Response) EndSession() *Response {
	b.sessionToken = ""
	b.startSession = false
	b.endSession = true
	return b
}

// StatusCode returns the status that will be written.
func (b *Response) StatusCode() int { return b.status }

// Template returns the template name of a render response.
func (b *Response) Template() string { return b.template }

// Model returns the render-model or JSON value.
func (b *Response) Model() any { return b.model }

// Location returns the redirect target, if any.
func (b *Response) Location() string { return b.redirect }

// IsRedirect reports whether the response is a redirect.
func (b *Response) IsRedirect() bool { return b.kind == kindRedirect }
