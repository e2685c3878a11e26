package domain

import "time"

// Requester is the authenticated identity behind a request.
type Requester struct {
	UserID    string
	Username  string
	IsAdmin   bool
	IsManager bool

	// TokenID is the jti of the bearer token used, if any.
	TokenID        string
	TokenExpiresAt time.Time
	// SessionID is set when the request authenticated with a session cookie.
	SessionID string
}

// RequesterFor builds a Requester from a stored user.
func RequesterFor(u User) Requester {
	return Requester{
		UserID:    u.ID,
		Username:  u.Username,
		IsAdmin:   u.IsStaff,
		IsManager: u.IsManager,
	}
}
