package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ctxEmailKey contextKey = "email"

// TokenVerifier validates a bearer token and returns the verified email.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// RequireIdentity authenticates requests by verifying the Bearer token and
// sets the verified email into request context. Handlers compare it against
// the target identity in the path.
func RequireIdentity(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}
			email, err := verifier.VerifyToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEmail(r.Context(), email)))
		})
	}
}

// EmailFromCtx returns the verified email or "".
func EmailFromCtx(ctx context.Context) string {
	email, _ := ctx.Value(ctxEmailKey).(string)
	return email
}

// WithEmail returns a context carrying the given verified email.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxEmailKey, email)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
