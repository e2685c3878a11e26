// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Rubemlrm/jogging-tracker/internal/domain"
)

// ErrInvalidPage is returned for a page number that is not a positive integer
// or whose offset does not fit in an int.
var ErrInvalidPage = errors.New("invalid page")

// ParsePage reads page and page_size query values. A missing or malformed
// page_size falls back to def and is capped at max.
func ParsePage(page, size string, def, max int) (domain.Page, error) {
	p := domain.Page{Number: 1, Size: def}

	if page = strings.TrimSpace(page); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return domain.Page{}, ErrInvalidPage
		}
		p.Number = n
	}

	if size = strings.TrimSpace(size); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			p.Size = n
		}
	}
	if max > 0 && p.Size > max {
		p.Size = max
	}
	if p.Size > 0 && p.Number-1 > math.MaxInt/p.Size {
		return domain.Page{}, ErrInvalidPage
	}
	return p, nil
}

// Window translates a page into SQL LIMIT and OFFSET values.
func Window(p domain.Page) (limit, offset int) {
	return p.Size, p.Offset()
}
