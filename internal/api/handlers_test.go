package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rubemlrm/jogging-tracker/internal/auth"
	"github.com/Rubemlrm/jogging-tracker/internal/domain"
	"github.com/Rubemlrm/jogging-tracker/internal/persistence/memory"
)

type fixture struct {
	t       *testing.T
	handler http.Handler
	service *domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	service := domain.NewService(store, domain.NewPolicy(nil), domain.WithPasswordCost(bcrypt.MinCost))

	admin := &domain.Requester{IsAdmin: true}
	seed := []domain.UserInput{
		userInput("admin", true, false),
		userInput("manager", false, true),
		userInput("alice", false, false),
		userInput("bob", false, false),
	}
	for _, in := range seed {
		_, err := service.CreateUser(context.Background(), admin, in)
		require.NoError(t, err)
	}

	handler := NewRouter(service, Config{
		Auth:        auth.Config{Secret: "test-secret", Issuer: "jogging-tracker", TTL: time.Hour},
		SessionTTL:  time.Hour,
		PageSize:    10,
		MaxPageSize: 50,
	})
	return &fixture{t: t, handler: handler, service: service}
}

func userInput(username string, staff, manager bool) domain.UserInput {
	password := "pw-" + username
	return domain.UserInput{Username: &username, Password: &password, IsStaff: &staff, IsManager: &manager}
}

// do sends a request authenticated with HTTP basic credentials of user; an empty user is anonymous.
func (f *fixture) do(method, path, user string, body interface{}) *httptest.ResponseRecorder {
	return f.doWith(method, path, body, func(r *http.Request) {
		if user != "" {
			r.SetBasicAuth(user, "pw-"+user)
		}
	})
}

func (f *fixture) doWith(method, path string, body interface{}, setup func(*http.Request)) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if setup != nil {
		setup(req)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (f *fixture) createActivity(user string, body map[string]interface{}) ActivityView {
	f.t.Helper()
	rr := f.do(http.MethodPost, "/api/v1/activities", user, body)
	require.Equal(f.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[ActivityView](f.t, rr)
}

func TestActivityRoundTrip(t *testing.T) {
	f := newFixture(t)

	created := f.createActivity("alice", map[string]interface{}{
		"date":     "2023-01-02",
		"distance": 5.25,
		"weather":  "rainy",
	})
	require.NotEmpty(t, created.ID)
	require.Equal(t, "alice", created.User)

	rr := f.do(http.MethodGet, "/api/v1/activities/"+created.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[ActivityView](t, rr)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "alice", got.User)
	require.Equal(t, "2023-01-02", got.Date)
	require.Equal(t, 5.25, got.Distance)
	require.NotNil(t, got.Weather)
	require.Equal(t, "rainy", *got.Weather)
}

func TestActivityStrangerNeverSucceeds(t *testing.T) {
	f := newFixture(t)
	created := f.createActivity("alice", map[string]interface{}{"date": "2024-03-01", "distance": 3})
	path := "/api/v1/activities/" + created.ID

	cases := []struct {
		method string
		body   interface{}
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]interface{}{"date": "2024-03-02", "distance": 1}},
		{http.MethodPatch, map[string]interface{}{"distance": 1}},
		{http.MethodDelete, nil},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			rr := f.do(tc.method, path, "bob", tc.body)
			require.Contains(t, []int{http.StatusForbidden, http.StatusNotFound}, rr.Code)
		})
	}

	rr := f.do(http.MethodGet, path, "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 3.0, decode[ActivityView](t, rr).Distance, "bob's attempts changed nothing")
}

func TestActivityListFiltering(t *testing.T) {
	f := newFixture(t)
	f.createActivity("alice", map[string]interface{}{"date": "2024-01-01", "distance": 1})
	f.createActivity("alice", map[string]interface{}{"date": "2024-01-02", "distance": 2})
	f.createActivity("bob", map[string]interface{}{"date": "2024-01-03", "distance": 3})

	rr := f.do(http.MethodGet, "/api/v1/activities", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[PageResponse[ActivityView]](t, rr)
	require.Equal(t, 2, page.Count)
	for _, a := range page.Results {
		require.Equal(t, "alice", a.User)
	}

	for _, user := range []string{"admin", "manager"} {
		rr := f.do(http.MethodGet, "/api/v1/activities", user, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, 3, decode[PageResponse[ActivityView]](t, rr).Count, user)
	}
}

func TestActivityOwnerOverride(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/api/v1/activities", "alice",
		map[string]interface{}{"user": "bob", "date": "2024-01-01", "distance": 1})
	require.Equal(t, http.StatusForbidden, rr.Code)

	created := f.createActivity("manager", map[string]interface{}{"user": "bob", "date": "2024-01-01", "distance": 1})
	require.Equal(t, "bob", created.User)

	rr = f.do(http.MethodGet, "/api/v1/activities/"+created.ID, "bob", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodPost, "/api/v1/activities", "admin",
		map[string]interface{}{"user": "ghost", "date": "2024-01-01", "distance": 1})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, decode[ErrorResponse](t, rr).Fields, "user")
}

func TestActivityValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		body  interface{}
		field string
	}{
		{"missing date", map[string]interface{}{"distance": 1}, "date"},
		{"missing distance", map[string]interface{}{"date": "2024-01-01"}, "distance"},
		{"negative distance", map[string]interface{}{"date": "2024-01-01", "distance": -1}, "distance"},
		{"bad date", map[string]interface{}{"date": "01/02/2024", "distance": 1}, "date"},
		{"unknown weather", map[string]interface{}{"date": "2024-01-01", "distance": 1, "weather": "foggy"}, "weather"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(http.MethodPost, "/api/v1/activities", "alice", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			require.Contains(t, decode[ErrorResponse](t, rr).Fields, tc.field)
		})
	}

	rr := f.do(http.MethodPost, "/api/v1/activities", "alice", `{"date":"2024-01-01","distance":1,"pace":4}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_request", decode[ErrorResponse](t, rr).Type)

	rr = f.do(http.MethodPost, "/api/v1/activities", "alice", `not json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestActivityPartialAndFullUpdate(t *testing.T) {
	f := newFixture(t)
	created := f.createActivity("alice", map[string]interface{}{"date": "2024-01-01", "distance": 4, "weather": "sunny"})
	path := "/api/v1/activities/" + created.ID

	rr := f.do(http.MethodPatch, path, "alice", map[string]interface{}{"distance": 6})
	require.Equal(t, http.StatusOK, rr.Code)
	patched := decode[ActivityView](t, rr)
	require.Equal(t, 6.0, patched.Distance)
	require.Equal(t, "sunny", *patched.Weather, "patch keeps omitted fields")

	rr = f.do(http.MethodPatch, path, "alice", `{"weather": null}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Nil(t, decode[ActivityView](t, rr).Weather)

	rr = f.do(http.MethodPut, path, "alice", map[string]interface{}{"distance": 2})
	require.Equal(t, http.StatusBadRequest, rr.Code, "put requires every field")

	rr = f.do(http.MethodPut, path, "alice", map[string]interface{}{"date": "2024-02-02", "distance": 2, "weather": "windy"})
	require.Equal(t, http.StatusOK, rr.Code)
	replaced := decode[ActivityView](t, rr)
	require.Equal(t, "2024-02-02", replaced.Date)
	require.Equal(t, "windy", *replaced.Weather)

	rr = f.do(http.MethodDelete, path, "manager", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(http.MethodGet, path, "alice", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWeatherIsReadOnly(t *testing.T) {
	f := newFixture(t)

	for _, user := range []string{"", "alice", "manager", "admin"} {
		for _, tc := range []struct{ method, path string }{
			{http.MethodPost, "/api/v1/weather"},
			{http.MethodPut, "/api/v1/weather/sunny"},
			{http.MethodPatch, "/api/v1/weather/sunny"},
			{http.MethodDelete, "/api/v1/weather/sunny"},
		} {
			rr := f.do(tc.method, tc.path, user, map[string]string{"title": "sunny"})
			require.Equal(t, http.StatusMethodNotAllowed, rr.Code, "%s %s as %q", tc.method, tc.path, user)
		}
	}

	rr := f.do(http.MethodGet, "/api/v1/weather", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[PageResponse[WeatherView]](t, rr)
	require.Equal(t, len(memory.DefaultWeather), page.Count)
	require.Equal(t, "cloudy", page.Results[0].Title)

	rr = f.do(http.MethodGet, "/api/v1/weather/sunny", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "sunny", decode[WeatherView](t, rr).Title)

	rr = f.do(http.MethodGet, "/api/v1/weather/foggy", "alice", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUserVisibilityAndRoles(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/api/v1/users", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[PageResponse[UserView]](t, rr)
	require.Equal(t, 1, page.Count)
	require.Equal(t, "alice", page.Results[0].Username)

	rr = f.do(http.MethodGet, "/api/v1/users", "admin", nil)
	require.Equal(t, 4, decode[PageResponse[UserView]](t, rr).Count)

	rr = f.do(http.MethodGet, "/api/v1/users/bob", "alice", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(http.MethodPatch, "/api/v1/users/alice", "alice", map[string]interface{}{"is_staff": true})
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(http.MethodPatch, "/api/v1/users/alice", "alice", map[string]interface{}{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "alice@example.com", decode[UserView](t, rr).Email)

	rr = f.do(http.MethodPatch, "/api/v1/users/alice", "alice", map[string]interface{}{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, decode[ErrorResponse](t, rr).Fields, "email")

	rr = f.do(http.MethodPatch, "/api/v1/users/bob", "admin", map[string]interface{}{"is_manager": true})
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, decode[UserView](t, rr).IsManager)
}

func TestUserReplaceWithRetrievedBody(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/api/v1/users/alice", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, `"email":""`)

	rr = f.do(http.MethodPut, "/api/v1/users/alice", "alice", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "alice", decode[UserView](t, rr).Username)

	rr = f.do(http.MethodPatch, "/api/v1/users/alice", "alice", map[string]interface{}{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = f.do(http.MethodPatch, "/api/v1/users/alice", "alice", map[string]interface{}{"email": ""})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Empty(t, decode[UserView](t, rr).Email)
}

func TestUserSignup(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/api/v1/users", "", map[string]interface{}{"username": "carol", "password": "s3cret", "email": ""})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.NotContains(t, rr.Body.String(), "password")

	rr = f.doWith(http.MethodGet, "/api/v1/users/carol", nil, func(r *http.Request) { r.SetBasicAuth("carol", "s3cret") })
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodPost, "/api/v1/users", "", map[string]interface{}{"username": "carol", "password": "x"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, decode[ErrorResponse](t, rr).Fields, "username")

	rr = f.do(http.MethodPost, "/api/v1/users", "", map[string]interface{}{"username": "mallory", "password": "x", "is_staff": true})
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(http.MethodPost, "/api/v1/users", "admin", map[string]interface{}{"username": "dave", "password": "x", "is_manager": true})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(http.MethodPost, "/api/v1/users", "", map[string]interface{}{"username": "bad name!", "password": "x"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserDeleteCascades(t *testing.T) {
	f := newFixture(t)
	created := f.createActivity("bob", map[string]interface{}{"date": "2024-01-01", "distance": 1})

	rr := f.do(http.MethodDelete, "/api/v1/users/bob", "bob", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(http.MethodGet, "/api/v1/activities/"+created.ID, "admin", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(http.MethodGet, "/api/v1/users", "bob", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWeeklyReport(t *testing.T) {
	f := newFixture(t)
	f.createActivity("alice", map[string]interface{}{"date": "2023-01-02", "distance": 5.0})
	f.createActivity("alice", map[string]interface{}{"date": "2023-01-09", "distance": 3.0})
	f.createActivity("alice", map[string]interface{}{"date": "2023-01-10", "distance": 2.0})
	f.createActivity("bob", map[string]interface{}{"date": "2023-01-02", "distance": 9.0})

	rr := f.do(http.MethodGet, "/api/v1/users/alice/report", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	first := rr.Body.String()
	page := decode[PageResponse[ReportRowView]](t, rr)
	require.Equal(t, []ReportRowView{
		{Year: 2023, Week: 1, SumDistance: 5.0},
		{Year: 2023, Week: 2, SumDistance: 5.0},
	}, page.Results)

	rr = f.do(http.MethodGet, "/api/v1/users/alice/report", "alice", nil)
	require.Equal(t, first, rr.Body.String(), "report is idempotent")

	rr = f.do(http.MethodGet, "/api/v1/users/alice/report", "bob", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(http.MethodGet, "/api/v1/users/alice/report", "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodGet, "/api/v1/users/alice/report?page_size=1", "alice", nil)
	paged := decode[PageResponse[ReportRowView]](t, rr)
	require.Equal(t, 2, paged.Count)
	require.Len(t, paged.Results, 1)
	require.NotNil(t, paged.Next)
	require.True(t, strings.HasSuffix(*paged.Next, "/api/v1/users/alice/report?page=2&page_size=1"), *paged.Next)
	require.Nil(t, paged.Previous)

	rr = f.do(http.MethodGet, "/api/v1/users/bob/report", "bob", nil)
	require.Equal(t, 1, decode[PageResponse[ReportRowView]](t, rr).Count)
}

func TestEmptyReport(t *testing.T) {
	f := newFixture(t)
	rr := f.do(http.MethodGet, "/api/v1/users/bob/report", "bob", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[PageResponse[ReportRowView]](t, rr)
	require.Zero(t, page.Count)
	require.Empty(t, page.Results)
	require.Contains(t, rr.Body.String(), `"results":[]`)
}

func TestPagination(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 3; i++ {
		f.createActivity("alice", map[string]interface{}{"date": "2024-01-0" + string(rune('0'+i)), "distance": i})
	}

	rr := f.do(http.MethodGet, "/api/v1/activities?page=2&page_size=2", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[PageResponse[ActivityView]](t, rr)
	require.Equal(t, 3, page.Count)
	require.Len(t, page.Results, 1)
	require.Equal(t, "2024-01-01", page.Results[0].Date, "newest first")
	require.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	require.True(t, strings.HasSuffix(*page.Previous, "/api/v1/activities?page_size=2"), *page.Previous)

	rr = f.do(http.MethodGet, "/api/v1/activities?page=3&page_size=2", "alice", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(http.MethodGet, "/api/v1/activities?page=zero", "alice", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	for _, path := range []string{
		"/api/v1/activities?page=184467440737095518&page_size=50",
		"/api/v1/weather?page=184467440737095518&page_size=50",
		"/api/v1/users/alice/report?page=184467440737095518&page_size=50",
		"/api/v1/activities?page=9223372036854775807",
	} {
		rr = f.do(http.MethodGet, path, "alice", nil)
		require.Equal(t, http.StatusNotFound, rr.Code, path)
		require.Equal(t, "invalid page", decode[ErrorResponse](t, rr).Detail, path)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/v1/activities", "/api/v1/users", "/api/v1/weather", "/api/v1/logout"} {
		rr := f.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := f.doWith(http.MethodGet, "/api/v1/activities", nil, func(r *http.Request) { r.SetBasicAuth("alice", "wrong") })
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.doWith(http.MethodGet, "/api/v1/activities", nil, func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") })
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginTokenAndSession(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/api/v1/login", "", map[string]string{"username": "alice", "password": "pw-alice"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	login := decode[LoginResponse](t, rr)
	require.NotEmpty(t, login.Token)
	require.Equal(t, "alice", login.User.Username)

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+login.Token) }
	cookie := func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: session.Value}) }

	require.Equal(t, http.StatusOK, f.doWith(http.MethodGet, "/api/v1/activities", nil, bearer).Code)
	require.Equal(t, http.StatusOK, f.doWith(http.MethodGet, "/api/v1/activities", nil, cookie).Code)

	require.Equal(t, http.StatusOK, f.doWith(http.MethodGet, "/api/v1/logout", nil, bearer).Code)
	require.Equal(t, http.StatusUnauthorized, f.doWith(http.MethodGet, "/api/v1/activities", nil, bearer).Code, "token revoked")
	require.Equal(t, http.StatusOK, f.doWith(http.MethodGet, "/api/v1/activities", nil, cookie).Code, "session survives token logout")

	require.Equal(t, http.StatusOK, f.doWith(http.MethodGet, "/api/v1/logout", nil, cookie).Code)
	require.Equal(t, http.StatusUnauthorized, f.doWith(http.MethodGet, "/api/v1/activities", nil, cookie).Code, "session ended")

	rr = f.do(http.MethodPost, "/api/v1/login", "", map[string]string{"username": "alice", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(http.MethodPost, "/api/v1/login", "", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogoutTwiceSucceeds(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 2; i++ {
		rr := f.do(http.MethodGet, "/api/v1/logout", "alice", nil)
		require.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestLogoutTwiceWithRevokedCredentials(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/api/v1/login", "", map[string]string{"username": "bob", "password": "pw-bob"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	login := decode[LoginResponse](t, rr)
	var sessionID string
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			sessionID = c.Value
		}
	}
	require.NotEmpty(t, sessionID)

	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+login.Token) }
	cookie := func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: sessionID}) }

	for name, setup := range map[string]func(*http.Request){"bearer": bearer, "cookie": cookie} {
		rr = f.doWith(http.MethodGet, "/api/v1/logout", nil, setup)
		require.Equal(t, http.StatusOK, rr.Code, name)
		require.Contains(t, rr.Body.String(), "successfully logged out")

		rr = f.doWith(http.MethodGet, "/api/v1/logout", nil, setup)
		require.Equal(t, http.StatusUnauthorized, rr.Code, name)
	}
}

func TestLoginRateLimit(t *testing.T) {
	store := memory.NewStore()
	service := domain.NewService(store, domain.NewPolicy(nil), domain.WithPasswordCost(bcrypt.MinCost))
	handler := NewRouter(service, Config{
		Auth:           auth.Config{Secret: "s", Issuer: "i", TTL: time.Hour},
		SessionTTL:     time.Hour,
		PageSize:       10,
		MaxPageSize:    10,
		LoginRateLimit: 2,
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"x","password":"y"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	require.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestHealthzAndRequestID(t *testing.T) {
	f := newFixture(t)
	rr := f.doWith(http.MethodGet, "/healthz", nil, func(r *http.Request) { r.Header.Set(requestIDHeader, "req-123") })
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
	require.Equal(t, "req-123", rr.Header().Get(requestIDHeader))

	rr = f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "jogging_tracker_http_requests_total")
}
