package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserInput carries the writable user fields. Nil fields are absent from the payload.
type UserInput struct {
	Username  *string
	Password  *string
	Email     *string
	FirstName *string
	LastName  *string
	IsStaff   *bool
	IsManager *bool
}

func (in UserInput) setsRoles() bool {
	return (in.IsStaff != nil && *in.IsStaff) || (in.IsManager != nil && *in.IsManager)
}

// CreateUser signs up a new user. r is nil for anonymous signups; only admins may grant roles.
func (s *Service) CreateUser(ctx context.Context, r *Requester, input UserInput) (*User, error) {
	verr := &ValidationError{}
	if input.Username == nil || *input.Username == "" {
		verr.Add("username", "this field is required")
	}
	if input.Password == nil || *input.Password == "" {
		verr.Add("password", "this field is required")
	}
	if verr.HasErrors() {
		return nil, verr
	}
	if input.setsRoles() && (r == nil || !r.IsAdmin) {
		return nil, ErrForbidden
	}

	user := User{
		ID:         uuid.NewString(),
		DateJoined: s.now(),
	}
	if err := s.applyUserInput(&user, input); err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, NewValidationError("username", "a user with that username already exists")
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns the page of users visible to r.
func (s *Service) ListUsers(ctx context.Context, r Requester, page Page) ([]User, int, error) {
	return s.store.ListUsers(ctx, s.policy.UserFilter(r), page)
}

// GetUser fetches a user visible to r by username.
func (s *Service) GetUser(ctx context.Context, r Requester, username string) (*User, error) {
	user, err := s.store.GetUserByUsername(ctx, username, s.policy.UserFilter(r))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !s.policy.CanAccessUser(r, *user) {
		return nil, ErrForbidden
	}
	return user, nil
}

// UpdateUser replaces (full) or patches a user. Role flags can only be changed by admins.
func (s *Service) UpdateUser(ctx context.Context, r Requester, username string, input UserInput, full bool) (*User, error) {
	if full && (input.Username == nil || *input.Username == "") {
		return nil, NewValidationError("username", "this field is required")
	}

	user, err := s.GetUser(ctx, r, username)
	if err != nil {
		return nil, err
	}
	if !r.IsAdmin && changesRoles(*user, input) {
		return nil, ErrForbidden
	}
	if full {
		// Omitted optional fields are reset on a full replacement.
		user.Email, user.FirstName, user.LastName = "", "", ""
	}
	if err := s.applyUserInput(user, input); err != nil {
		return nil, err
	}

	if err := s.store.UpdateUser(ctx, *user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, NewValidationError("username", "a user with that username already exists")
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user and, through the store, their activities.
func (s *Service) DeleteUser(ctx context.Context, r Requester, username string) error {
	user, err := s.GetUser(ctx, r, username)
	if err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, user.ID)
}

// WeeklyReport returns a page of the per-ISO-week distance totals for a user visible to r.
func (s *Service) WeeklyReport(ctx context.Context, r Requester, username string, page Page) ([]WeeklyReportRow, int, error) {
	user, err := s.GetUser(ctx, r, username)
	if err != nil {
		return nil, 0, err
	}
	activities, err := s.store.ListActivitiesByOwner(ctx, user.ID)
	if err != nil {
		return nil, 0, err
	}
	rows := WeeklyReport(activities)
	start, end := page.Slice(len(rows))
	return rows[start:end], len(rows), nil
}

func changesRoles(u User, in UserInput) bool {
	return (in.IsStaff != nil && *in.IsStaff != u.IsStaff) ||
		(in.IsManager != nil && *in.IsManager != u.IsManager)
}

func (s *Service) applyUserInput(u *User, in UserInput) error {
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.IsStaff != nil {
		u.IsStaff = *in.IsStaff
	}
	if in.IsManager != nil {
		u.IsManager = *in.IsManager
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.passwordCost)
		if err != nil {
			if errors.Is(err, bcrypt.ErrPasswordTooLong) {
				return NewValidationError("password", "ensure this field has no more than 72 bytes")
			}
			return err
		}
		u.PasswordHash = string(hash)
	}
	return nil
}

// checkPassword compares a plaintext password with the stored hash.
func checkPassword(u User, password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// sessionExpired reports whether a session is past its expiry at now.
func sessionExpired(session Session, now time.Time) bool {
	return !session.ExpiresAt.IsZero() && !now.Before(session.ExpiresAt)
}
