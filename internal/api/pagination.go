package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Rubemlrm/jogging-tracker/internal/domain"
	"github.com/Rubemlrm/jogging-tracker/internal/persistence"
)

// PageResponse is the envelope for every collection response.
type PageResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type pager struct {
	defaultSize int
	maxSize     int
}

func (p pager) page(w http.ResponseWriter, r *http.Request) (domain.Page, bool) {
	q := r.URL.Query()
	page, err := persistence.ParsePage(q.Get("page"), q.Get("page_size"), p.defaultSize, p.maxSize)
	if err != nil {
		writeInvalidPage(w)
		return domain.Page{}, false
	}
	return page, true
}

func writeInvalidPage(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not_found", "invalid page")
}

var errPageOutOfRange = errors.New("page out of range")

// respondPage writes a page of results, or 404 for a page past the end.
func respondPage[T any](w http.ResponseWriter, r *http.Request, page domain.Page, total int, results []T) {
	if err := checkRange(page, total); err != nil {
		writeInvalidPage(w)
		return
	}
	if results == nil {
		results = []T{}
	}

	resp := PageResponse[T]{Count: total, Results: results}
	if page.Offset()+len(results) < total {
		next := pageURL(r, page.Number+1)
		resp.Next = &next
	}
	if page.Number > 1 {
		prev := pageURL(r, page.Number-1)
		resp.Previous = &prev
	}
	writeJSON(w, http.StatusOK, resp)
}

// checkRange allows an empty first page but nothing beyond the last row.
func checkRange(page domain.Page, total int) error {
	if page.Number > 1 && page.Offset() >= total {
		return errPageOutOfRange
	}
	return nil
}

// pageURL rebuilds the absolute request URL pointing at another page; page 1 drops the parameter.
func pageURL(r *http.Request, number int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	q := r.URL.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
