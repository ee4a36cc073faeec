package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/fulmenhq/gofulmen/errors"
)

// credentialContextKey is a custom type to avoid context key collisions
type credentialContextKey string

const CredentialContextKey credentialContextKey = "credential"

// BearerAuth enforces a static bearer token on protected routes. The
// presented token is compared in constant time and, on success, stored in
// the request context so downstream middleware can key off it.
func BearerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, r, "Missing or malformed Authorization header")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				unauthorized(w, r, "Invalid authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), CredentialContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCredential retrieves the authenticated bearer token from context.
func GetCredential(ctx context.Context) string {
	if credential, ok := ctx.Value(CredentialContextKey).(string); ok {
		return credential
	}
	return ""
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	envelope := errors.NewErrorEnvelope("UNAUTHORIZED", message).
		WithCorrelationID(GetRequestID(r.Context()))

	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeErrorResponse(w, envelope, http.StatusUnauthorized)
}
