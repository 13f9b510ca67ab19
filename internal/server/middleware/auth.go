// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jonathan/resume-scorer/internal/apperr"
	"github.com/jonathan/resume-scorer/internal/types"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// identityKey is the context key for storing the authenticated client.
const identityKey ContextKey = "identity"

// APIKeyHeader carries the shared client key.
const APIKeyHeader = "X-API-Key"

// Authentication methods recorded on an Identity.
const (
	MethodAnonymous = "anonymous"
	MethodAPIKey    = "api_key"
	MethodBearer    = "bearer"
)

// APIKeyClientID identifies callers authenticated with the shared key.
const APIKeyClientID = "api-key"

// Identity is the authenticated caller.
type Identity struct {
	ClientID string
	Method   string
}

// KeyVerifier checks shared API keys.
type KeyVerifier interface {
	Enabled() bool
	Verify(key string) bool
}

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (ClientIDGetter, error)
}

// ClientIDGetter is an interface for extracting the client ID from token claims.
type ClientIDGetter interface {
	GetClientID() string
}

// RequireAuth admits requests carrying a valid X-API-Key or, when tokens is non-nil, a
// valid bearer token. When keys is not enabled every request is admitted anonymously.
func RequireAuth(keys KeyVerifier, tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keys == nil || !keys.Enabled() {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), Identity{Method: MethodAnonymous})))
				return
			}

			if key := r.Header.Get(APIKeyHeader); key != "" {
				if !keys.Verify(key) {
					unauthorized(w, "Invalid API key.")
					return
				}
				id := Identity{ClientID: APIKeyClientID, Method: MethodAPIKey}
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || tokens == nil {
				unauthorized(w, "Missing API key.")
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "Malformed Authorization header.")
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				unauthorized(w, "Invalid or expired token.")
				return
			}

			id := Identity{ClientID: claims.GetClientID(), Method: MethodBearer}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: apperr.CodeAuth, Message: message})
}

// WithIdentity stores the caller on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the authenticated caller from ctx.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
