package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Rubemlrm/jogging-tracker/internal/domain"
)

// SessionCookie is the name of the cookie carrying the session id.
const SessionCookie = "sessionid"

// Resolver turns verified credentials into a requester.
type Resolver interface {
	ResolveToken(ctx context.Context, userID, tokenID string, expiresAt time.Time) (domain.Requester, error)
	ResolveCredentials(ctx context.Context, username, password string) (domain.Requester, error)
	ResolveSession(ctx context.Context, sessionID string) (domain.Requester, error)
}

// ErrorHandler writes the response for a failed authentication.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware authenticates requests with a bearer token, HTTP basic credentials or a
// session cookie, in that order.
type Middleware struct {
	Config   Config
	Resolver Resolver
	OnError  ErrorHandler
}

// NewMiddleware constructs Middleware.
func NewMiddleware(cfg Config, resolver Resolver, onError ErrorHandler) Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return Middleware{Config: cfg, Resolver: resolver, OnError: onError}
}

// Required rejects requests without valid credentials.
func (m Middleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester, err := m.resolve(r)
		if err != nil {
			m.OnError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithRequester(r.Context(), requester)))
	})
}

// Optional lets anonymous requests through but still rejects bad credentials.
func (m Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester, err := m.resolve(r)
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			next.ServeHTTP(w, r)
		case err != nil:
			m.OnError(w, r, err)
		default:
			next.ServeHTTP(w, r.WithContext(WithRequester(r.Context(), requester)))
		}
	})
}

func (m Middleware) resolve(r *http.Request) (domain.Requester, error) {
	ctx := r.Context()
	header := r.Header.Get("Authorization")
	lower := strings.ToLower(header)

	switch {
	case strings.HasPrefix(lower, "bearer "):
		claims, err := Parse(header[len("Bearer "):], m.Config)
		if err != nil {
			return domain.Requester{}, err
		}
		return m.Resolver.ResolveToken(ctx, claims.Subject, claims.TokenID, claims.ExpiresAt)
	case strings.HasPrefix(lower, "basic "):
		username, password, ok := r.BasicAuth()
		if !ok {
			return domain.Requester{}, domain.ErrInvalidCredentials
		}
		return m.Resolver.ResolveCredentials(ctx, username, password)
	case header != "":
		return domain.Requester{}, ErrInvalidToken
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return m.Resolver.ResolveSession(ctx, cookie.Value)
	}
	return domain.Requester{}, domain.ErrUnauthenticated
}
