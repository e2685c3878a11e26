// Package domain defines the business logic for the jogging tracker.
package domain

import (
	"math"
	"time"
)

// DateLayout is the wire and storage layout for activity dates.
const DateLayout = "2006-01-02"

// User is an account that owns activities.
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsStaff      bool
	IsManager    bool
	DateJoined   time.Time
}

// Weather is a read-only reference record describing conditions.
type Weather struct {
	ID          int64
	Title       string
	Description string
}

// Activity is a single recorded run.
type Activity struct {
	ID        string
	OwnerID   string
	Owner     string // owner username
	Date      time.Time
	Distance  float64
	Weather   *string // weather title
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WeeklyReportRow is the total distance a user covered in one ISO week.
type WeeklyReportRow struct {
	Year        int
	Week        int
	SumDistance float64
}

// Session is a server-side login session.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Page selects a 1-based page of a collection.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip, saturating at math.MaxInt.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// Slice applies the page to an in-memory collection of length n.
func (p Page) Slice(n int) (start, end int) {
	start = p.Offset()
	if start > n {
		start = n
	}
	end = n
	if p.Size > 0 && p.Size < n-start {
		end = start + p.Size
	}
	return start, end
}
