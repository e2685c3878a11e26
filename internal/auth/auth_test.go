package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rubemlrm/jogging-tracker/internal/domain"
)

var testConfig = Config{Secret: "test-secret", Issuer: "jogging-tracker", TTL: time.Hour}

func TestIssueAndParse(t *testing.T) {
	token, issued, err := Issue(testConfig, "u-1", "alice", time.Now())
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.Subject)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, issued.TokenID, claims.TokenID)
	require.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestParseRejectsBadTokens(t *testing.T) {
	_, err := Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)

	expired, _, err := Issue(testConfig, "u-1", "alice", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = Parse(expired, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	token, _, err := Issue(testConfig, "u-1", "alice", time.Now())
	require.NoError(t, err)
	_, err = Parse(token, Config{Secret: "other", Issuer: testConfig.Issuer})
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = Parse(token, Config{Secret: testConfig.Secret, Issuer: "someone-else"})
	require.ErrorIs(t, err, ErrInvalidToken)
}

type stubResolver struct {
	tokens   map[string]bool
	sessions map[string]bool
}

func (s stubResolver) ResolveToken(ctx context.Context, userID, tokenID string, expiresAt time.Time) (domain.Requester, error) {
	if !s.tokens[tokenID] {
		return domain.Requester{}, domain.ErrInvalidCredentials
	}
	return domain.Requester{UserID: userID, TokenID: tokenID}, nil
}

func (s stubResolver) ResolveCredentials(ctx context.Context, username, password string) (domain.Requester, error) {
	if username != "alice" || password != "pw" {
		return domain.Requester{}, domain.ErrInvalidCredentials
	}
	return domain.Requester{UserID: "u-1", Username: username}, nil
}

func (s stubResolver) ResolveSession(ctx context.Context, sessionID string) (domain.Requester, error) {
	if !s.sessions[sessionID] {
		return domain.Requester{}, domain.ErrInvalidCredentials
	}
	return domain.Requester{UserID: "u-1", SessionID: sessionID}, nil
}

func TestMiddlewareSchemes(t *testing.T) {
	token, claims, err := Issue(testConfig, "u-1", "alice", time.Now())
	require.NoError(t, err)
	resolver := stubResolver{
		tokens:   map[string]bool{claims.TokenID: true},
		sessions: map[string]bool{"sess-1": true},
	}
	mw := NewMiddleware(testConfig, resolver, nil)

	var seen domain.Requester
	handler := mw.Required(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		check  func(t *testing.T)
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK,
			func(t *testing.T) { require.Equal(t, claims.TokenID, seen.TokenID) }},
		{"basic", func(r *http.Request) { r.SetBasicAuth("alice", "pw") }, http.StatusOK,
			func(t *testing.T) { require.Equal(t, "alice", seen.Username) }},
		{"session", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess-1"}) }, http.StatusOK,
			func(t *testing.T) { require.Equal(t, "sess-1", seen.SessionID) }},
		{"wrong password", func(r *http.Request) { r.SetBasicAuth("alice", "nope") }, http.StatusUnauthorized, nil},
		{"unknown scheme", func(r *http.Request) { r.Header.Set("Authorization", "Digest abc") }, http.StatusUnauthorized, nil},
		{"anonymous", func(r *http.Request) {}, http.StatusUnauthorized, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = domain.Requester{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			require.Equal(t, tc.status, rr.Code)
			if tc.check != nil {
				tc.check(t)
			}
		})
	}
}

func TestOptionalMiddlewareAllowsAnonymous(t *testing.T) {
	mw := NewMiddleware(testConfig, stubResolver{}, nil)
	var authenticated bool
	handler := mw.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, authenticated = FromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, authenticated)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.SetBasicAuth("alice", "nope")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
