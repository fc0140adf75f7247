package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/quotestore/internal/auth"
	"github.com/vyrodovalexey/quotestore/internal/model"
)

const principalHolderKey contextKey = "principal_holder"

func withPrincipalHolder(ctx context.Context, holder **auth.Principal) context.Context {
	return context.WithValue(ctx, principalHolderKey, holder)
}

func recordPrincipal(ctx context.Context, p *auth.Principal) {
	if holder, ok := ctx.Value(principalHolderKey).(**auth.Principal); ok {
		*holder = p
	}
}

// readOnlyMethods never change the quote collection.
var readOnlyMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// RequireAuth returns a middleware that authenticates requests which change
// data. Reads, CORS preflight and the change feed upgrade (a GET) pass
// through untouched.
func RequireAuth(authenticator auth.Authenticator, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if readOnlyMethods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := authenticator.Authenticate(r)
			if err != nil {
				logger.Warn("authentication failed",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeAuthError(w, err)
				return
			}

			logger.Debug("authentication successful",
				zap.String("subject", principal.Subject),
				zap.String("auth_method", string(principal.Method)),
				zap.String("path", r.URL.Path),
			)

			recordPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// writeAuthError writes a 401 with a WWW-Authenticate challenge matching err.
func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", `Basic realm="quotestore"`)
	case errors.Is(err, auth.ErrInvalidAPIKey):
		w.Header().Set("WWW-Authenticate", "API-Key")
	default:
		w.Header().Set("WWW-Authenticate", `Basic realm="quotestore", API-Key`)
	}

	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Code:    http.StatusUnauthorized,
		Message: err.Error(),
	})
}
