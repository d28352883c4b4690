package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/balasai14/multi-face-reg/internal/auth"
)

type contextKey string

const subjectContextKey contextKey = "subject"

// BearerToken extracts the bearer token from the Authorization header.
// Returns an empty string if the header is missing or not a bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// RequireAuth is middleware that requires a valid session token.
// The verified identity key is added to the request context.
func RequireAuth(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			subject, err := issuer.Verify(token)
			if err != nil {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubjectFromContext retrieves the verified identity key from the request
// context, or an empty string when the request was not authenticated.
func GetSubjectFromContext(ctx context.Context) string {
	subject, ok := ctx.Value(subjectContextKey).(string)
	if !ok {
		return ""
	}
	return subject
}

// SetSubjectInContext adds a verified identity key to the context.
// This is primarily for testing - use RequireAuth middleware in production.
func SetSubjectInContext(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}
