package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityInput carries the writable activity fields. Nil fields are absent from the payload.
type ActivityInput struct {
	Owner    *string // username
	Date     *time.Time
	Distance *float64
	// WeatherSet distinguishes an explicit null weather from an absent one.
	WeatherSet bool
	Weather    *string
}

// CreateActivity records an activity. Without an explicit owner the requester owns it;
// naming another owner requires the same access the requester would need to edit it.
func (s *Service) CreateActivity(ctx context.Context, r Requester, input ActivityInput) (*Activity, error) {
	verr := &ValidationError{}
	if input.Date == nil {
		verr.Add("date", "this field is required")
	}
	if input.Distance == nil {
		verr.Add("distance", "this field is required")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	now := s.now()
	activity := Activity{
		ID:        uuid.NewString(),
		OwnerID:   r.UserID,
		Owner:     r.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.applyActivityInput(ctx, r, &activity, input, true); err != nil {
		return nil, err
	}

	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListActivities returns the page of activities visible to r.
func (s *Service) ListActivities(ctx context.Context, r Requester, page Page) ([]Activity, int, error) {
	return s.store.ListActivities(ctx, s.policy.ActivityFilter(r), page)
}

// GetActivity fetches an activity visible to r.
func (s *Service) GetActivity(ctx context.Context, r Requester, id string) (*Activity, error) {
	activity, err := s.store.GetActivity(ctx, id, s.policy.ActivityFilter(r))
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrNotFound
	}
	if !s.policy.CanAccessActivity(r, *activity) {
		return nil, ErrForbidden
	}
	return activity, nil
}

// UpdateActivity replaces (full) or patches the activity fields.
func (s *Service) UpdateActivity(ctx context.Context, r Requester, id string, input ActivityInput, full bool) (*Activity, error) {
	if full {
		verr := &ValidationError{}
		if input.Date == nil {
			verr.Add("date", "this field is required")
		}
		if input.Distance == nil {
			verr.Add("distance", "this field is required")
		}
		if verr.HasErrors() {
			return nil, verr
		}
	}

	activity, err := s.GetActivity(ctx, r, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyActivityInput(ctx, r, activity, input, full); err != nil {
		return nil, err
	}
	activity.UpdatedAt = s.now()

	if err := s.store.UpdateActivity(ctx, *activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// DeleteActivity removes an activity visible to and editable by r.
func (s *Service) DeleteActivity(ctx context.Context, r Requester, id string) error {
	activity, err := s.GetActivity(ctx, r, id)
	if err != nil {
		return err
	}
	return s.store.DeleteActivity(ctx, *activity)
}

func (s *Service) applyActivityInput(ctx context.Context, r Requester, activity *Activity, input ActivityInput, full bool) error {
	verr := &ValidationError{}

	if input.Date != nil {
		activity.Date = truncateToDate(*input.Date)
	}
	if input.Distance != nil {
		if *input.Distance < 0 {
			verr.Add("distance", "ensure this value is greater than or equal to 0")
		}
		activity.Distance = *input.Distance
	}

	if input.WeatherSet || full {
		activity.Weather = nil
		if input.Weather != nil {
			w, err := s.store.GetWeather(ctx, *input.Weather)
			if err != nil {
				return err
			}
			if w == nil {
				verr.Add("weather", "object with title="+*input.Weather+" does not exist")
			} else {
				title := w.Title
				activity.Weather = &title
			}
		}
	}

	if input.Owner != nil && *input.Owner != activity.Owner {
		owner, err := s.store.GetUserByUsername(ctx, *input.Owner, UserScope{All: true})
		if err != nil {
			return err
		}
		if owner == nil {
			verr.Add("user", "object with username="+*input.Owner+" does not exist")
		} else {
			if !verr.HasErrors() && !s.policy.CanAccessOwner(r, owner.ID) {
				return ErrForbidden
			}
			activity.OwnerID = owner.ID
			activity.Owner = owner.Username
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
