package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Authenticate checks a username/password pair. Unknown users and users without
// a password still pay for one bcrypt comparison.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.store.GetUserByUsername(ctx, username, UserScope{All: true})
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(s.decoyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if !checkPassword(*user, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// decoyHash is a hash of a random secret at the service's password cost.
func (s *Service) decoyHash() []byte {
	s.decoyOnce.Do(func() {
		s.decoy, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.passwordCost)
	})
	return s.decoy
}

// OpenSession starts a server-side session for u lasting ttl.
func (s *Service) OpenSession(ctx context.Context, u User, ttl time.Duration) (*Session, error) {
	now := s.now()
	session := Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout invalidates the credentials r authenticated with.
func (s *Service) Logout(ctx context.Context, r Requester) error {
	return s.terminator.Logout(ctx, r)
}

// ResolveToken turns verified bearer token claims into a Requester.
func (s *Service) ResolveToken(ctx context.Context, userID, tokenID string, expiresAt time.Time) (Requester, error) {
	if tokenID != "" {
		revoked, err := s.store.IsTokenRevoked(ctx, tokenID)
		if err != nil {
			return Requester{}, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return Requester{}, ErrInvalidCredentials
		}
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return Requester{}, err
	}
	r := RequesterFor(*user)
	r.TokenID = tokenID
	r.TokenExpiresAt = expiresAt
	return r, nil
}

// ResolveCredentials turns HTTP basic credentials into a Requester.
func (s *Service) ResolveCredentials(ctx context.Context, username, password string) (Requester, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return Requester{}, err
	}
	return RequesterFor(*user), nil
}

// ResolveSession turns a session id into a Requester.
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (Requester, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return Requester{}, err
	}
	if session == nil || sessionExpired(*session, s.now()) {
		return Requester{}, ErrInvalidCredentials
	}
	user, err := s.activeUser(ctx, session.UserID)
	if err != nil {
		return Requester{}, err
	}
	r := RequesterFor(*user)
	r.SessionID = session.ID
	return r, nil
}

func (s *Service) activeUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
