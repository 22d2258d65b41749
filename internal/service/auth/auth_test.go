package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/auth/tokenmanager"
)

// fakeUserRepo keeps users in a map keyed by email
type fakeUserRepo struct {
	users map[string]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, arg repository.CreateUserParams) (models.User, error) {
	if _, ok := r.users[arg.Email]; ok {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}
	user := models.User{
		ID:             uuid.New(),
		Name:           arg.Name,
		Email:          arg.Email,
		Phone:          arg.Phone,
		Role:           arg.Role,
		HashedPassword: arg.HashedPassword,
		IsActive:       true,
	}
	r.users[arg.Email] = user
	return user, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, userID uuid.UUID) (models.User, error) {
	for _, u := range r.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := r.users[email]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetActiveUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	u, err := r.GetUserByID(ctx, userID)
	if err != nil || !u.IsActive {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, arg repository.UpdateProfileParams) (models.User, error) {
	u, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if arg.Name != nil {
		u.Name = *arg.Name
	}
	if arg.Phone != nil {
		u.Phone = *arg.Phone
	}
	r.users[u.Email] = u
	return u, nil
}

func (r *fakeUserRepo) TouchLastLogin(_ context.Context, _ uuid.UUID) error { return nil }

func newTestService(t *testing.T, cfg Config) (*AuthService, *fakeUserRepo) {
	t.Helper()

	tm, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
	require.NoError(t, err)

	repo := newFakeUserRepo()
	s, err := NewService(cfg, tm, repo)
	require.NoError(t, err)

	return s, repo
}

var registerParams = RegisterParams{
	Name:     "Nina K",
	Email:    "nina@example.com",
	Phone:    "+31612345678",
	Role:     models.RoleFounder,
	Password: "StrongEnoughPassword",
}

func Test_AuthService(t *testing.T) {
	t.Parallel()

	t.Run("register stores hash and issues token", func(t *testing.T) {
		s, repo := newTestService(t, Config{})

		user, token, err := s.Register(t.Context(), registerParams)
		require.NoError(t, err)

		assert.NotEmpty(t, token.Value)
		assert.Equal(t, "nina@example.com", user.Email)

		stored := repo.users["nina@example.com"]
		assert.NotEqual(t, "StrongEnoughPassword", stored.HashedPassword, "password must never be stored as plaintext")
		assert.NoError(t, BcryptHasher{}.Compare(stored.HashedPassword, "StrongEnoughPassword"))
	})

	t.Run("login ok", func(t *testing.T) {
		s, _ := newTestService(t, Config{})
		_, _, err := s.Register(t.Context(), registerParams)
		require.NoError(t, err)

		user, token, err := s.Login(t.Context(), "nina@example.com", "StrongEnoughPassword")

		require.NoError(t, err)
		assert.Equal(t, "nina@example.com", user.Email)
		assert.NotEmpty(t, token.Value)
	})

	t.Run("login failures are indistinguishable", func(t *testing.T) {
		s, repo := newTestService(t, Config{})
		_, _, err := s.Register(t.Context(), registerParams)
		require.NoError(t, err)

		// Wrong password
		_, _, err = s.Login(t.Context(), "nina@example.com", "WrongPassword")
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

		// Unknown email
		_, _, err = s.Login(t.Context(), "nobody@example.com", "StrongEnoughPassword")
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

		// Deactivated user
		u := repo.users["nina@example.com"]
		u.IsActive = false
		repo.users["nina@example.com"] = u
		_, _, err = s.Login(t.Context(), "nina@example.com", "StrongEnoughPassword")
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("token extraction precedence", func(t *testing.T) {
		s, _ := newTestService(t, Config{AllowQueryToken: true})

		newRequest := func(authHeader, altHeader, query string) *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/?token="+query, nil)
			if authHeader != "" {
				r.Header.Set("Authorization", authHeader)
			}
			if altHeader != "" {
				r.Header.Set("X-Auth-Token", altHeader)
			}
			return r
		}

		token, ok := s.TokenFromRequest(newRequest("Bearer from-header", "from-alt", "from-query"))
		require.True(t, ok)
		assert.Equal(t, "from-header", token, "Authorization header wins")

		token, ok = s.TokenFromRequest(newRequest("", "from-alt", "from-query"))
		require.True(t, ok)
		assert.Equal(t, "from-alt", token, "X-Auth-Token is second")

		token, ok = s.TokenFromRequest(newRequest("", "", "from-query"))
		require.True(t, ok)
		assert.Equal(t, "from-query", token, "query parameter is last")

		// Authorization header without the Bearer scheme falls through
		token, ok = s.TokenFromRequest(newRequest("Basic dXNlcjpwd2Q=", "from-alt", ""))
		require.True(t, ok)
		assert.Equal(t, "from-alt", token)

		_, ok = s.TokenFromRequest(newRequest("", "", ""))
		require.False(t, ok)
	})

	t.Run("query token disabled by default", func(t *testing.T) {
		s, _ := newTestService(t, Config{})

		r := httptest.NewRequest(http.MethodGet, "/?token=from-query", nil)
		_, ok := s.TokenFromRequest(r)

		require.False(t, ok, "query tokens must be opt-in")
	})

	t.Run("auth resolves active user", func(t *testing.T) {
		s, _ := newTestService(t, Config{})
		registered, token, err := s.Register(t.Context(), registerParams)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token.Value)

		user, err := s.Auth(t.Context(), r)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("auth rejects token of deactivated user", func(t *testing.T) {
		s, repo := newTestService(t, Config{})
		_, token, err := s.Register(t.Context(), registerParams)
		require.NoError(t, err)

		u := repo.users["nina@example.com"]
		u.IsActive = false
		repo.users["nina@example.com"] = u

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token.Value)

		_, err = s.Auth(t.Context(), r)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated,
			"valid signature is not enough, the user must still be active")
	})

	t.Run("auth rejects missing and garbage tokens", func(t *testing.T) {
		s, _ := newTestService(t, Config{})

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := s.Auth(t.Context(), r)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

		r.Header.Set("Authorization", "Bearer not.a.token")
		_, err = s.Auth(t.Context(), r)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("optional auth never errors", func(t *testing.T) {
		s, _ := newTestService(t, Config{})
		registered, token, err := s.Register(t.Context(), registerParams)
		require.NoError(t, err)

		anon := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, s.AuthOptional(t.Context(), anon))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token.Value)
		user := s.AuthOptional(t.Context(), r)
		require.NotNil(t, user)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("require role is exact membership", func(t *testing.T) {
		founder := models.User{Role: models.RoleFounder}
		both := models.User{Role: models.RoleBoth}

		require.NoError(t, RequireRole(founder, models.RoleFounder))
		require.NoError(t, RequireRole(both, models.RoleFounder, models.RoleBoth))
		require.ErrorIs(t, RequireRole(founder, models.RoleFinder), apperrors.ErrForbidden)
		require.ErrorIs(t, RequireRole(both, models.RoleFounder), apperrors.ErrForbidden,
			"'both' is its own role, not a superset of founder")
	})
}
