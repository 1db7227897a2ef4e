package auth

import (
	"context"
	"live-poll/domain"
	"net/http"
	"strings"
	"time"
)

// Identity is the authenticated user behind a request or a live connection.
type Identity struct {
	UserID domain.UserID `json:"id"`
	Name   string        `json:"name"`
}

type contextKey string

const identityKey contextKey = "identity"

// Validator is the part of TokenIssuer the middleware needs.
type Validator interface {
	Validate(token string) (Identity, error)
}

// SessionCookies issues and reads the session cookie carrying the JWT.
type SessionCookies struct {
	Name   string
	Secure bool
}

func (s SessionCookies) Set(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest looks for the session cookie first, then a Bearer header.
func (s SessionCookies) TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(s.Name); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Authenticate resolves the caller identity, when there is one, and stores it in the request context.
// Anonymous requests go through untouched; RequireUser rejects them where needed.
func Authenticate(cookies SessionCookies, tokens Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookies.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			identity, err := tokens.Validate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity stored by Authenticate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// UserFromRequest is the currentUser lookup used by HTTP handlers and the live endpoint.
func UserFromRequest(r *http.Request) (Identity, bool) {
	return IdentityFromContext(r.Context())
}
