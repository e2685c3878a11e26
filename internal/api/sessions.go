package api

import (
	"net/http"
	"time"

	"github.com/Rubemlrm/jogging-tracker/internal/auth"
	"github.com/Rubemlrm/jogging-tracker/internal/domain"
	"github.com/Rubemlrm/jogging-tracker/internal/logging"
	"github.com/Rubemlrm/jogging-tracker/internal/observability"
)

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token; the session id travels in a cookie.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

type sessionController struct {
	service    *domain.Service
	tokens     auth.Config
	sessionTTL time.Duration
	secure     bool
}

func (c *sessionController) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if _, ok := decodeJSON(w, r, &body); !ok {
		return
	}

	user, err := c.service.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	token, claims, err := auth.Issue(c.tokens, user.ID, user.Username, time.Now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	session, err := c.service.OpenSession(r.Context(), *user, c.sessionTTL)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	logging.Ctx(r.Context()).Info().Str("username", user.Username).Msg("user logged in")
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: claims.ExpiresAt, User: toUserView(*user)})
}

// Logout revokes whatever credential authenticated the request and always answers 200
// once the caller is authenticated.
func (c *sessionController) Logout(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	if err := c.service.Logout(r.Context(), req); err != nil {
		observability.RecordLogout("error")
		writeDomainError(w, r, err)
		return
	}
	observability.RecordLogout("ok")

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"detail": "successfully logged out"})
}
