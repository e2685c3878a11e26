package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rubemlrm/jogging-tracker/internal/auth"
	"github.com/Rubemlrm/jogging-tracker/internal/domain"
)

// UserRequest is the payload for POST, PUT and PATCH on /users.
type UserRequest struct {
	Username  *string `json:"username" validate:"omitempty,max=150,username"`
	Password  *string `json:"password" validate:"omitempty,max=128"`
	Email     *string `json:"email" validate:"omitempty,optional_email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	IsStaff   *bool   `json:"is_staff"`
	IsManager *bool   `json:"is_manager"`

	// Read-only; accepted so a retrieved user can be sent back unchanged.
	ID         *string `json:"id"`
	DateJoined *string `json:"date_joined"`
}

// UserView is the serialized user; the password never leaves the service.
type UserView struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsStaff    bool      `json:"is_staff"`
	IsManager  bool      `json:"is_manager"`
	DateJoined time.Time `json:"date_joined"`
}

// ReportRowView is one week of the distance report.
type ReportRowView struct {
	Year        int     `json:"year"`
	Week        int     `json:"week"`
	SumDistance float64 `json:"sum_distance"`
}

type userController struct {
	service *domain.Service
	pager
}

var (
	_ ResourceReader = (*userController)(nil)
	_ ResourceWriter = (*userController)(nil)
)

func (c *userController) List(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	page, ok := c.page(w, r)
	if !ok {
		return
	}

	users, total, err := c.service.ListUsers(r.Context(), req, page)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	respondPage(w, r, page, total, views)
}

func (c *userController) Retrieve(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	user, err := c.service.GetUser(r.Context(), req, lookupKey(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(*user))
}

// Create signs up a user; the route admits anonymous callers.
func (c *userController) Create(w http.ResponseWriter, r *http.Request) {
	var body UserRequest
	if _, ok := decodeJSON(w, r, &body); !ok {
		return
	}

	var req *domain.Requester
	if authenticated, ok := auth.FromContext(r.Context()); ok {
		req = &authenticated
	}
	user, err := c.service.CreateUser(r.Context(), req, body.input())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(*user))
}

func (c *userController) Replace(w http.ResponseWriter, r *http.Request) {
	c.update(w, r, true)
}

func (c *userController) Patch(w http.ResponseWriter, r *http.Request) {
	c.update(w, r, false)
}

func (c *userController) update(w http.ResponseWriter, r *http.Request, full bool) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	var body UserRequest
	if _, ok := decodeJSON(w, r, &body); !ok {
		return
	}
	user, err := c.service.UpdateUser(r.Context(), req, lookupKey(r), body.input(), full)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (c *userController) Destroy(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	if err := c.service.DeleteUser(r.Context(), req, lookupKey(r)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Report serves the paginated per-ISO-week distance totals of one user.
func (c *userController) Report(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	page, ok := c.page(w, r)
	if !ok {
		return
	}

	rows, total, err := c.service.WeeklyReport(r.Context(), req, lookupKey(r), page)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	views := make([]ReportRowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ReportRowView{Year: row.Year, Week: row.Week, SumDistance: row.SumDistance})
	}
	respondPage(w, r, page, total, views)
}

func (c *userController) routes(r chi.Router, mw auth.Middleware) {
	r.With(mw.Required).Get("/{key}/report", c.Report)
}

func (b UserRequest) input() domain.UserInput {
	return domain.UserInput{
		Username:  b.Username,
		Password:  b.Password,
		Email:     b.Email,
		FirstName: b.FirstName,
		LastName:  b.LastName,
		IsStaff:   b.IsStaff,
		IsManager: b.IsManager,
	}
}

func toUserView(u domain.User) UserView {
	return UserView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsStaff:    u.IsStaff,
		IsManager:  u.IsManager,
		DateJoined: u.DateJoined,
	}
}
