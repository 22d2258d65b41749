package e2e

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/logger"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/ratelimit"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository/postgres"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/auth"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/auth/tokenmanager"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/box"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
	BoxService  *box.Service
	Storage     repository.Storage
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
		require.NoError(t, err, "auth service starting error")

		boxService, err := box.NewService(box.Config{}, storage.Box())
		require.NoError(t, err, "box service starting error")

		// Generous limit so the limiter never trips ordinary test traffic
		limiter := ratelimit.NewMemoryLimiter(10000, time.Minute)

		router := handlers.NewRouter(authService, boxService, storage, limiter, logger.NewNoOp())

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService: authService,
			BoxService:  boxService,
			Storage:     storage,
		})
	})
}
