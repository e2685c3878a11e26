package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoToken means the request did not authenticate with a bearer token.
	ErrNoToken = errors.New("no token to invalidate")
	// ErrNoSession means the request did not authenticate with a session.
	ErrNoSession = errors.New("no session to invalidate")
	// ErrAlreadyInvalidated means the token or session was already gone.
	ErrAlreadyInvalidated = errors.New("credential already invalidated")
)

// CredentialStore persists sessions and revoked bearer tokens.
type CredentialStore interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	// DeleteSession reports whether a session was removed.
	DeleteSession(ctx context.Context, sessionID string) (bool, error)
	// RevokeToken reports whether the token was newly revoked.
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SessionTerminator invalidates whatever credentials a requester presented.
type SessionTerminator struct {
	store CredentialStore
}

// NewSessionTerminator constructs a SessionTerminator.
func NewSessionTerminator(store CredentialStore) *SessionTerminator {
	return &SessionTerminator{store: store}
}

// Logout revokes the requester's bearer token and deletes its session. Missing or
// already invalidated credentials are not failures; store errors are returned.
func (t *SessionTerminator) Logout(ctx context.Context, r Requester) error {
	if err := ignoreSettled(t.revokeToken(ctx, r)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if err := ignoreSettled(t.endSession(ctx, r)); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (t *SessionTerminator) revokeToken(ctx context.Context, r Requester) error {
	if r.TokenID == "" {
		return ErrNoToken
	}
	revoked, err := t.store.RevokeToken(ctx, r.TokenID, r.TokenExpiresAt)
	if err != nil {
		return err
	}
	if !revoked {
		return ErrAlreadyInvalidated
	}
	return nil
}

func (t *SessionTerminator) endSession(ctx context.Context, r Requester) error {
	if r.SessionID == "" {
		return ErrNoSession
	}
	deleted, err := t.store.DeleteSession(ctx, r.SessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAlreadyInvalidated
	}
	return nil
}

// settledErrors are the outcomes Logout treats as success.
var settledErrors = []error{ErrNoToken, ErrNoSession, ErrAlreadyInvalidated}

func ignoreSettled(err error) error {
	for _, settled := range settledErrors {
		if errors.Is(err, settled) {
			return nil
		}
	}
	return err
}
