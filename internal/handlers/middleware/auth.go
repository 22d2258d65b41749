package middleware

import (
	"context"
	"net/http"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/render"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/userctx"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

// AuthMiddleware rejects unauthenticated requests with a generic 401.
// Whether the token was missing, malformed, expired or belonged to a
// deactivated user is deliberately not distinguishable from outside.
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Auth(r.Context(), r)
			if err != nil {
				render.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
