// Package memory provides an in-process store for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Rubemlrm/jogging-tracker/internal/domain"
)

// Store keeps users, activities, weather and credentials in maps guarded by a single lock.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	activities  map[string]domain.Activity
	weather     map[string]domain.Weather
	sessions    map[string]domain.Session
	revoked     map[string]time.Time
	nextWeather int64
}

var _ domain.Store = (*Store)(nil)

// DefaultWeather mirrors the weather rows seeded by the SQL migrations.
var DefaultWeather = []domain.Weather{
	{Title: "sunny", Description: "Clear skies"},
	{Title: "cloudy", Description: "Overcast"},
	{Title: "rainy", Description: "Rain showers"},
	{Title: "snowy", Description: "Snowfall"},
	{Title: "windy", Description: "Strong wind"},
}

// NewStore constructs an empty store seeded with DefaultWeather.
func NewStore() *Store {
	s := &Store{
		users:      make(map[string]domain.User),
		activities: make(map[string]domain.Activity),
		weather:    make(map[string]domain.Weather),
		sessions:   make(map[string]domain.Session),
		revoked:    make(map[string]time.Time),
	}
	for _, w := range DefaultWeather {
		s.AddWeather(w)
	}
	return s
}

// AddWeather inserts or replaces a weather row, assigning an id when missing.
func (s *Store) AddWeather(w domain.Weather) domain.Weather {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.weather[w.Title]; ok && w.ID == 0 {
		w.ID = existing.ID
	}
	if w.ID == 0 {
		s.nextWeather++
		w.ID = s.nextWeather
	}
	s.weather[w.Title] = w
	return w
}

// CreateActivity implements domain.ActivityRepository.
func (s *Store) CreateActivity(ctx context.Context, a domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[a.ID] = cloneActivity(a)
	return nil
}

// GetActivity implements domain.ActivityRepository.
func (s *Store) GetActivity(ctx context.Context, id string, scope domain.ActivityScope) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.activities[id]
	if !ok || !scope.Allows(a.OwnerID) {
		return nil, nil
	}
	a = s.withOwner(a)
	return &a, nil
}

// ListActivities implements domain.ActivityRepository. Newest dates first.
func (s *Store) ListActivities(ctx context.Context, scope domain.ActivityScope, page domain.Page) ([]domain.Activity, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		if scope.Allows(a.OwnerID) {
			all = append(all, s.withOwner(a))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID > all[j].ID
	})
	start, end := page.Slice(len(all))
	return all[start:end], len(all), nil
}

// ListActivitiesByOwner implements domain.ActivityRepository.
func (s *Store) ListActivitiesByOwner(ctx context.Context, ownerID string) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Activity, 0)
	for _, a := range s.activities {
		if a.OwnerID == ownerID {
			out = append(out, s.withOwner(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateActivity implements domain.ActivityRepository.
func (s *Store) UpdateActivity(ctx context.Context, a domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[a.ID]; !ok {
		return domain.ErrNotFound
	}
	s.activities[a.ID] = cloneActivity(a)
	return nil
}

// DeleteActivity implements domain.ActivityRepository.
func (s *Store) DeleteActivity(ctx context.Context, a domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[a.ID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.activities, a.ID)
	return nil
}

// CreateUser implements domain.UserRepository.
func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernameTaken(u.Username, u.ID) {
		return domain.ErrUsernameTaken
	}
	s.users[u.ID] = u
	return nil
}

// GetUserByID implements domain.UserRepository.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetUserByUsername implements domain.UserRepository.
func (s *Store) GetUserByUsername(ctx context.Context, username string, scope domain.UserScope) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			if !scope.Allows(u.ID) {
				return nil, nil
			}
			return &u, nil
		}
	}
	return nil, nil
}

// ListUsers implements domain.UserRepository. Most recently joined first.
func (s *Store) ListUsers(ctx context.Context, scope domain.UserScope, page domain.Page) ([]domain.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if scope.Allows(u.ID) {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].DateJoined.Equal(all[j].DateJoined) {
			return all[i].DateJoined.After(all[j].DateJoined)
		}
		return all[i].Username < all[j].Username
	})
	start, end := page.Slice(len(all))
	return all[start:end], len(all), nil
}

// UpdateUser implements domain.UserRepository.
func (s *Store) UpdateUser(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	if s.usernameTaken(u.Username, u.ID) {
		return domain.ErrUsernameTaken
	}
	s.users[u.ID] = u
	return nil
}

// DeleteUser implements domain.UserRepository, cascading to the user's activities and sessions.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	for aid, a := range s.activities {
		if a.OwnerID == id {
			delete(s.activities, aid)
		}
	}
	for sid, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, sid)
		}
	}
	return nil
}

// GetWeather implements domain.WeatherRepository.
func (s *Store) GetWeather(ctx context.Context, title string) (*domain.Weather, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.weather[title]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// ListWeather implements domain.WeatherRepository, ordered by title.
func (s *Store) ListWeather(ctx context.Context, page domain.Page) ([]domain.Weather, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]domain.Weather, 0, len(s.weather))
	for _, w := range s.weather {
		all = append(all, w)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	start, end := page.Slice(len(all))
	return all[start:end], len(all), nil
}

// CreateSession implements domain.CredentialStore.
func (s *Store) CreateSession(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// GetSession implements domain.CredentialStore.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// DeleteSession implements domain.CredentialStore.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false, nil
	}
	delete(s.sessions, sessionID)
	return true, nil
}

// RevokeToken implements domain.CredentialStore.
func (s *Store) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[tokenID]; ok {
		return false, nil
	}
	s.revoked[tokenID] = expiresAt
	return true, nil
}

// IsTokenRevoked implements domain.CredentialStore.
func (s *Store) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}

// withOwner refreshes the denormalised owner username. Callers hold the lock.
func (s *Store) withOwner(a domain.Activity) domain.Activity {
	a = cloneActivity(a)
	if u, ok := s.users[a.OwnerID]; ok {
		a.Owner = u.Username
	}
	return a
}

func (s *Store) usernameTaken(username, exceptID string) bool {
	for id, u := range s.users {
		if id != exceptID && u.Username == username {
			return true
		}
	}
	return false
}

func cloneActivity(a domain.Activity) domain.Activity {
	if a.Weather != nil {
		title := *a.Weather
		a.Weather = &title
	}
	return a
}
