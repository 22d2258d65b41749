package userctx

import (
	"context"
	"net/http"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// Create a new context with the authenticated user
func New(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Extract the user from the context
func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// FromRequest extracts the user the auth middleware stored on the request.
// ok is false on requests that skipped authentication.
func FromRequest(r *http.Request) (models.User, bool) {
	return FromContext(r.Context())
}
