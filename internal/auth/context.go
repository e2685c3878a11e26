package auth

import (
	"context"

	"github.com/Rubemlrm/jogging-tracker/internal/domain"
)

type contextKey string

const requesterKey contextKey = "auth-requester"

// WithRequester stores the authenticated requester on the context.
func WithRequester(ctx context.Context, r domain.Requester) context.Context {
	return context.WithValue(ctx, requesterKey, r)
}

// FromContext retrieves the requester stored by WithRequester.
func FromContext(ctx context.Context) (domain.Requester, bool) {
	r, ok := ctx.Value(requesterKey).(domain.Requester)
	return r, ok
}
