package handlers

import (
	"context"
	"net/http"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/middleware"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/logger"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/ratelimit"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// authenticator is what the router needs from the auth service: the login
// and register flows plus per-request authentication for the middleware
type authenticator interface {
	authService
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

// fullBoxService joins the user-facing and the device-facing box surfaces,
// both are implemented by the box service
type fullBoxService interface {
	boxService
	deviceService
}

// NewRouter assembles the full API surface.
//
// /api/arduino is the unauthenticated device surface, every other group sits
// behind the auth middleware. The rate limiter and request logger wrap
// everything including the device endpoints.
func NewRouter(
	authSvc authenticator,
	boxSvc fullBoxService,
	storage repository.Storage,
	limiter ratelimit.Limiter,
	l logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authSvc)

	authHandler := NewAuth(authSvc, storage.User(), l)
	arduinoHandler := NewArduino(boxSvc, storage, l)
	boxHandler := NewBox(boxSvc, l)
	itemHandler := NewItem(storage.Item(), l)
	requestHandler := NewRequest(storage, l)
	messageHandler := NewMessage(storage.Message(), storage.Request(), l)

	root := http.NewServeMux()
	root.Handle("/api/arduino/", http.StripPrefix("/api/arduino", arduinoHandler.Handler()))
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", authHandler.Handler(withAuth)))
	root.Handle("/api/boxes/", http.StripPrefix("/api/boxes", withAuth(boxHandler.Handler())))
	root.Handle("/api/items/", http.StripPrefix("/api/items", withAuth(itemHandler.Handler())))
	root.Handle("/api/requests/", http.StripPrefix("/api/requests", withAuth(requestHandler.Handler())))
	root.Handle("/api/messages/", http.StripPrefix("/api/messages", withAuth(messageHandler.Handler())))

	return chain(root,
		middleware.LoggerMiddleware(l),
		middleware.RateLimitMiddleware(limiter, l),
	)
}
