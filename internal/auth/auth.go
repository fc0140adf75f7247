// Package auth authenticates callers that change the quote collection.
package auth

import (
	"context"
	"errors"
	"net/http"
)

// Method names how a caller proved its identity.
type Method string

// Supported authentication methods.
const (
	MethodNone   Method = "none"
	MethodBasic  Method = "basic"
	MethodAPIKey Method = "apikey"
	MethodMulti  Method = "multi"
)

// Principal is the identity behind an authenticated request.
type Principal struct {
	Method  Method
	Subject string
}

// Authenticator validates a request and returns its principal.
type Authenticator interface {
	Authenticate(r *http.Request) (*Principal, error)
	Method() Method
}

// Sentinel errors for authentication failures.
var (
	ErrUnauthenticated    = errors.New("unauthenticated: no credentials provided")
	ErrInvalidAPIKey      = errors.New("invalid API key")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidConfig      = errors.New("invalid credentials config")
)

type contextKey string

const principalKey contextKey = "principal"

// FromContext retrieves the Principal stored by WithPrincipal.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// WithPrincipal stores p in the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
