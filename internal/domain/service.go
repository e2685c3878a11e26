package domain

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ActivityRepository captures activity persistence. Lookups return (nil, nil) when
// the row does not exist or falls outside the scope.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity Activity) error
	GetActivity(ctx context.Context, id string, scope ActivityScope) (*Activity, error)
	ListActivities(ctx context.Context, scope ActivityScope, page Page) ([]Activity, int, error)
	ListActivitiesByOwner(ctx context.Context, ownerID string) ([]Activity, error)
	UpdateActivity(ctx context.Context, activity Activity) error
	DeleteActivity(ctx context.Context, activity Activity) error
}

// UserRepository captures user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string, scope UserScope) (*User, error)
	ListUsers(ctx context.Context, scope UserScope, page Page) ([]User, int, error)
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error
}

// WeatherRepository captures read-only weather lookups.
type WeatherRepository interface {
	GetWeather(ctx context.Context, title string) (*Weather, error)
	ListWeather(ctx context.Context, page Page) ([]Weather, int, error)
}

// Store is everything the service needs from a backing data store.
type Store interface {
	ActivityRepository
	UserRepository
	WeatherRepository
	CredentialStore
}

// Service orchestrates activity, user and weather workflows.
type Service struct {
	store        Store
	policy       Policy
	terminator   *SessionTerminator
	passwordCost int
	now          func() time.Time

	decoyOnce sync.Once
	decoy     []byte
}

// Option customises a Service.
type Option func(*Service)

// WithPasswordCost overrides the bcrypt cost used for new password hashes.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a Service.
func NewService(store Store, policy Policy, opts ...Option) *Service {
	s := &Service{
		store:        store,
		policy:       policy,
		terminator:   NewSessionTerminator(store),
		passwordCost: bcrypt.DefaultCost,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy exposes the access policy in use.
func (s *Service) Policy() Policy {
	return s.policy
}

// ListWeather returns a page of weather records.
func (s *Service) ListWeather(ctx context.Context, page Page) ([]Weather, int, error) {
	return s.store.ListWeather(ctx, page)
}

// GetWeather fetches a weather record by title.
func (s *Service) GetWeather(ctx context.Context, title string) (*Weather, error) {
	w, err := s.store.GetWeather(ctx, title)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrNotFound
	}
	return w, nil
}
