package auth

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader is the HTTP header name for API key authentication.
const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator accepts requests carrying a configured key in the
// X-API-Key header.
type APIKeyAuthenticator struct {
	keys map[string]string // key -> client name
}

// NewAPIKeyAuthenticator parses "key1:name1,key2:name2".
func NewAPIKeyAuthenticator(keysConfig string) (*APIKeyAuthenticator, error) {
	keys, err := parsePairs("apikey auth", keysConfig)
	if err != nil {
		return nil, err
	}
	return &APIKeyAuthenticator{keys: keys}, nil
}

// Authenticate compares the presented key against every configured key in
// constant time.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	presented := r.Header.Get(APIKeyHeader)
	if presented == "" {
		return nil, ErrUnauthenticated
	}

	for key, name := range a.keys {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
			return &Principal{Method: MethodAPIKey, Subject: name}, nil
		}
	}

	return nil, ErrInvalidAPIKey
}

// Method returns MethodAPIKey.
func (a *APIKeyAuthenticator) Method() Method {
	return MethodAPIKey
}
