package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Username *string  `json:"username" validate:"omitempty,max=10,username"`
	Email    *string  `json:"email" validate:"omitempty,optional_email"`
	Date     *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Distance *float64 `json:"distance" validate:"omitempty,gte=0"`
}

func strPtr(s string) *string { return &s }

func TestStructValid(t *testing.T) {
	d := 3.5
	require.Nil(t, Struct(sample{
		Username: strPtr("alice.b"),
		Email:    strPtr(""),
		Date:     strPtr("2023-01-02"),
		Distance: &d,
	}))
	require.Nil(t, Struct(sample{}))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	d := -1.0
	errs := Struct(sample{
		Username: strPtr("bad name!"),
		Email:    strPtr("nope"),
		Date:     strPtr("02/01/2023"),
		Distance: &d,
	})
	require.Len(t, errs, 4)
	require.Contains(t, errs["username"], "valid username")
	require.Contains(t, errs["email"], "email")
	require.Contains(t, errs["date"], "2006-01-02")
	require.Contains(t, errs["distance"], "greater than or equal to 0")
}
