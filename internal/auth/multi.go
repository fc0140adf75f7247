package auth

import (
	"errors"
	"net/http"
)

// MultiAuthenticator tries authenticators in order. A method that finds no
// credentials passes to the next one; a method that finds bad credentials
// fails the request.
type MultiAuthenticator struct {
	authenticators []Authenticator
}

// NewMultiAuthenticator creates a MultiAuthenticator.
func NewMultiAuthenticator(authenticators ...Authenticator) *MultiAuthenticator {
	return &MultiAuthenticator{authenticators: authenticators}
}

// Authenticate returns the first successful principal.
func (a *MultiAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	for _, authenticator := range a.authenticators {
		p, err := authenticator.Authenticate(r)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrUnauthenticated) {
			return nil, err
		}
	}

	return nil, ErrUnauthenticated
}

// Method returns MethodMulti.
func (a *MultiAuthenticator) Method() Method {
	return MethodMulti
}
