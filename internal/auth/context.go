package auth

import "context"

// sessionContextKey is the key type for storing a Session in context.Context.
type sessionContextKey struct{}

// WithSession returns a new context with the session attached.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext returns the request's session, or an anonymous one.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionContextKey{}).(Session)
	return s
}
