// Package auth gates mutating operations behind a single operator login.
//
// A request is either anonymous or authenticated. The state is carried
// entirely by a signed session token; nothing is kept server side, so a
// token stays valid until it expires or the cookie is cleared on logout.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"expensetracker/internal/core"
)

// Session is the authentication state derived from a request.
type Session struct {
	Username string
}

// IsAuthenticated reports whether the session belongs to the operator.
func (s Session) IsAuthenticated() bool {
	return s.Username != ""
}

// Gate checks operator credentials and issues session tokens.
type Gate struct {
	username     string
	passwordHash string
	tokens       *TokenIssuer
	ttl          time.Duration
}

// NewGate creates a gate for the configured operator identity.
func NewGate(username, passwordHash string, tokens *TokenIssuer, ttl time.Duration) *Gate {
	return &Gate{
		username:     username,
		passwordHash: passwordHash,
		tokens:       tokens,
		ttl:          ttl,
	}
}

// TTL is the lifetime of issued tokens.
func (g *Gate) TTL() time.Duration {
	return g.ttl
}

// Authenticate reports whether username and password identify the operator.
// The username comparison is exact and case-sensitive.
func (g *Gate) Authenticate(username, password string) bool {
	if username == "" || password == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) != 1 {
		checkPassword(dummyHash, password)
		return false
	}
	return checkPassword(g.passwordHash, password)
}

// Login issues a session token when the credentials are valid. Bad
// credentials return ok=false with a nil error.
func (g *Gate) Login(username, password string) (token string, ok bool, err error) {
	if !g.Authenticate(username, password) {
		return "", false, nil
	}
	token, err = g.tokens.Issue(username, g.ttl)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// SessionFromToken derives the session for a token. Missing, tampered and
// expired tokens all yield an anonymous session together with the reason.
func (g *Gate) SessionFromToken(token string) (Session, error) {
	if token == "" {
		return Session{}, nil
	}
	subject, err := g.tokens.Verify(token)
	if err != nil {
		return Session{}, err
	}
	if subject != g.username {
		return Session{}, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
	}
	return Session{Username: subject}, nil
}

// RequireAuthenticated returns core.ErrPermission for anonymous sessions.
func RequireAuthenticated(s Session) error {
	if !s.IsAuthenticated() {
		return fmt.Errorf("authentication required: %w", core.ErrPermission)
	}
	return nil
}

// IsTokenError reports whether err came from token verification.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken) || errors.Is(err, ErrMissingClaim)
}
