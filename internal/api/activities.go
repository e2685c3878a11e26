package api

import (
	"net/http"
	"time"

	"github.com/Rubemlrm/jogging-tracker/internal/domain"
)

// ActivityRequest is the payload for POST, PUT and PATCH on /activities.
type ActivityRequest struct {
	User     *string  `json:"user" validate:"omitempty,username"`
	Date     *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Distance *float64 `json:"distance" validate:"omitempty,gte=0"`
	Weather  *string  `json:"weather"`
}

// ActivityView is the serialized activity.
type ActivityView struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Date      string    `json:"date"`
	Distance  float64   `json:"distance"`
	Weather   *string   `json:"weather"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type activityController struct {
	service *domain.Service
	pager
}

var (
	_ ResourceReader = (*activityController)(nil)
	_ ResourceWriter = (*activityController)(nil)
)

func (c *activityController) List(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	page, ok := c.page(w, r)
	if !ok {
		return
	}

	activities, total, err := c.service.ListActivities(r.Context(), req, page)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	views := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, toActivityView(a))
	}
	respondPage(w, r, page, total, views)
}

func (c *activityController) Retrieve(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	activity, err := c.service.GetActivity(r.Context(), req, lookupKey(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (c *activityController) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	input, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	activity, err := c.service.CreateActivity(r.Context(), req, input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (c *activityController) Replace(w http.ResponseWriter, r *http.Request) {
	c.update(w, r, true)
}

func (c *activityController) Patch(w http.ResponseWriter, r *http.Request) {
	c.update(w, r, false)
}

func (c *activityController) update(w http.ResponseWriter, r *http.Request, full bool) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	input, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	activity, err := c.service.UpdateActivity(r.Context(), req, lookupKey(r), input, full)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (c *activityController) Destroy(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	if err := c.service.DeleteActivity(r.Context(), req, lookupKey(r)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeActivity(w http.ResponseWriter, r *http.Request) (domain.ActivityInput, bool) {
	var body ActivityRequest
	present, ok := decodeJSON(w, r, &body)
	if !ok {
		return domain.ActivityInput{}, false
	}

	input := domain.ActivityInput{
		Owner:    body.User,
		Distance: body.Distance,
		Weather:  body.Weather,
	}
	_, input.WeatherSet = present["weather"]
	if body.Date != nil {
		date, err := time.Parse(domain.DateLayout, *body.Date)
		if err != nil {
			writeValidation(w, map[string]string{"date": "date has wrong format, use YYYY-MM-DD"})
			return domain.ActivityInput{}, false
		}
		input.Date = &date
	}
	return input, true
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:        a.ID,
		User:      a.Owner,
		Date:      a.Date.Format(domain.DateLayout),
		Distance:  a.Distance,
		Weather:   a.Weather,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
