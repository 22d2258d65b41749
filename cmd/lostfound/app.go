package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/db"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/logger"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/ratelimit"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository/postgres"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/auth"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/auth/tokenmanager"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/box"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	closers []func() error
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey, TTL: c.TokenTTL})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{AllowQueryToken: c.AllowQueryToken}, tokenManager, storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	boxService, err := box.NewService(box.Config{}, storage.Box())
	if err != nil {
		return nil, fmt.Errorf("error while creating box service. Err: %w", err)
	}

	app := &ServerApp{ListenAddr: c.ListenAddr}
	app.closers = append(app.closers, func() error { pool.Close(); return nil })

	// Rate limiter: redis when configured, in-process otherwise
	var limiter ratelimit.Limiter
	if c.RedisURL != "" {
		redisLimiter, err := ratelimit.NewRedisLimiter(ctx, c.RedisURL, c.RateLimit, c.RateWindow)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}
		app.closers = append(app.closers, redisLimiter.Close)
		limiter = redisLimiter
	} else {
		limiter = ratelimit.NewMemoryLimiter(c.RateLimit, c.RateWindow)
	}

	app.Handler = handlers.NewRouter(authService, boxService, storage, limiter, logger)

	return app, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	s.Close()

	return err
}

// Close releases resources the app acquired on startup
func (s *ServerApp) Close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			slog.Error("error while closing resource", "error", err.Error())
		}
	}
}
