package api

import (
	"net/http"

	"github.com/Rubemlrm/jogging-tracker/internal/domain"
)

// WeatherView is the serialized weather record.
type WeatherView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// weatherController is read-only: no ResourceWriter, so write verbs get 405.
type weatherController struct {
	service *domain.Service
	pager
}

var _ ResourceReader = (*weatherController)(nil)

func (c *weatherController) List(w http.ResponseWriter, r *http.Request) {
	page, ok := c.page(w, r)
	if !ok {
		return
	}
	records, total, err := c.service.ListWeather(r.Context(), page)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	views := make([]WeatherView, 0, len(records))
	for _, rec := range records {
		views = append(views, toWeatherView(rec))
	}
	respondPage(w, r, page, total, views)
}

func (c *weatherController) Retrieve(w http.ResponseWriter, r *http.Request) {
	rec, err := c.service.GetWeather(r.Context(), lookupKey(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeatherView(*rec))
}

func toWeatherView(w domain.Weather) WeatherView {
	return WeatherView{ID: w.ID, Title: w.Title, Description: w.Description}
}
