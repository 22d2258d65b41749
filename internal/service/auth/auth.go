package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/auth/tokenmanager"
)

// Token sources, checked in order. First match wins, nothing is merged.
// The query parameter exists for low-friction device-side testing: it leaks
// into logs and caches, production deployments should disable it.
const (
	authorizationHeader = "Authorization"
	altTokenHeader      = "X-Auth-Token"
	tokenQueryParam     = "token"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type tokenManager interface {
	Issue(user models.User) (models.IssuedToken, error)
	Parse(token string) (tokenmanager.AccessTokenClaims, error)
}

type Config struct {
	// Hasher to use during registration and login
	// Defaults to bcrypt
	Hasher PasswordHasher

	// Accept the ?token= query fallback (testing convenience)
	AllowQueryToken bool
}

type RegisterParams struct {
	Name     string
	Email    string
	Phone    string
	Role     models.Role
	Password string
}

// AuthService authenticates requests: it verifies the bearer token and then
// re-validates the subject against the user store, so deactivating a user
// invalidates every token issued to them
type AuthService struct {
	token           tokenManager
	hasher          PasswordHasher
	userRepo        repository.UserRepo
	allowQueryToken bool
}

func NewService(cfg Config, token tokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	if token == nil || userRepo == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	return &AuthService{
		token:           token,
		hasher:          hasher,
		userRepo:        userRepo,
		allowQueryToken: cfg.AllowQueryToken,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (models.User, models.IssuedToken, error) {
	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return models.User{}, models.IssuedToken{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Name:           arg.Name,
		Email:          arg.Email,
		Phone:          arg.Phone,
		Role:           arg.Role,
		HashedPassword: hash,
	})
	if err != nil {
		return models.User{}, models.IssuedToken{}, err
	}

	token, err := s.token.Issue(user)
	if err != nil {
		return models.User{}, models.IssuedToken{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and issues a fresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.IssuedToken, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil || !user.IsActive {
		// Compare against an empty hash anyway to keep timing flat
		_ = s.hasher.Compare("", password)
		return models.User{}, models.IssuedToken{}, apperrors.ErrUnauthenticated
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, models.IssuedToken{}, apperrors.ErrUnauthenticated
	}

	token, err := s.token.Issue(user)
	if err != nil {
		return models.User{}, models.IssuedToken{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	// Login time is auditing only, a failure here must not fail the login
	_ = s.userRepo.TouchLastLogin(ctx, user.ID)

	return user, token, nil
}

// TokenFromRequest extracts the bearer token
// Precedence: Authorization header, then X-Auth-Token, then ?token= if enabled
func (s *AuthService) TokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get(authorizationHeader); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token), true
		}
	}

	if token := r.Header.Get(altTokenHeader); token != "" {
		return token, true
	}

	if s.allowQueryToken {
		if token := r.URL.Query().Get(tokenQueryParam); token != "" {
			return token, true
		}
	}

	return "", false
}

// Auth resolves the request to an authenticated user.
// Read-only: nothing is mutated, the same request may be authenticated twice.
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	token, ok := s.TokenFromRequest(r)
	if !ok {
		return models.User{}, apperrors.ErrUnauthenticated
	}

	claims, err := s.token.Parse(token)
	if err != nil {
		return models.User{}, apperrors.ErrUnauthenticated
	}

	user, err := s.userRepo.GetActiveUserByID(ctx, claims.UserID)
	if err != nil {
		return models.User{}, apperrors.ErrUnauthenticated
	}

	return user, nil
}

// AuthOptional is Auth that returns nil instead of failing
// Used where authentication augments behavior but is not mandatory
func (s *AuthService) AuthOptional(ctx context.Context, r *http.Request) *models.User {
	user, err := s.Auth(ctx, r)
	if err != nil {
		return nil
	}
	return &user
}

// RequireRole checks exact membership of the user role in allowed
func RequireRole(user models.User, allowed ...models.Role) error {
	if !user.HasRole(allowed...) {
		return apperrors.ErrForbidden
	}
	return nil
}
