package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonar/internal/server"
)

// NotAuthenticatedMessage is the body of every guard rejection.
const NotAuthenticatedMessage = "Not authenticated. Please login with Spotify."

type contextKeyToken struct{}

// WithToken returns a context carrying token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyToken{}, token)
}

// TokenFromContext returns the bearer token resolved by [RequireAuth].
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(contextKeyToken{}).(string)
	return token, ok && token != ""
}

// ExtractToken reads the Authorization bearer token, then the access cookie.
// The token is not validated.
func ExtractToken(r *http.Request) (string, bool) {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if token := strings.TrimSpace(after); token != "" {
			return token, true
		}
	}
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// RequireAuth rejects requests without a token with 401 before they reach next.
func RequireAuth(logger *log.Logger) server.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := ExtractToken(r)
			if !ok {
				guardRejections.Inc()
				logger.Debug("unauthenticated request", "path", r.URL.Path, "request_id", server.RequestID(r.Context()))
				server.WriteError(w, http.StatusUnauthorized, NotAuthenticatedMessage)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
		})
	}
}
