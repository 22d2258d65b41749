package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/testutil"
)

func createUserParams(email string) repository.CreateUserParams {
	return repository.CreateUserParams{
		Name:           "Test User",
		Email:          email,
		Phone:          "+31612345678",
		Role:           models.RoleFounder,
		HashedPassword: "hashedpassword123",
	}
}

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), createUserParams("testuser@example.com"))

			require.NoError(t, err)
			assert.Equal(t, "testuser@example.com", user.Email)
			assert.Equal(t, models.RoleFounder, user.Role)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.True(t, user.IsActive, "new users start active")
			assert.Nil(t, user.LastLogin, "last login is unset before first login")
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user with duplicate email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.CreateUser(t.Context(), createUserParams("dup@example.com"))
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), createUserParams("dup@example.com"))
			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists, "should return well known error")
		})
	})

	t.Run("get user by id and email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createUserParams("find@example.com"))
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Email, got.Email)

			got, err = r.GetUserByEmail(t.Context(), "find@example.com")
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	})

	t.Run("get user not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

			_, err = r.GetUserByEmail(t.Context(), "nobody@example.com")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("get active user skips deactivated", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createUserParams("active@example.com"))
			require.NoError(t, err)

			got, err := r.GetActiveUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)

			_, err = tx.Exec(t.Context(), "UPDATE users SET is_active = FALSE WHERE id = $1", created.ID)
			require.NoError(t, err)

			_, err = r.GetActiveUserByID(t.Context(), created.ID)
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound,
				"deactivated user must look like a missing one")
		})
	})

	t.Run("update profile keeps omitted fields", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createUserParams("update@example.com"))
			require.NoError(t, err)

			name := "New Name"
			got, err := r.UpdateProfile(t.Context(), created.ID, repository.UpdateProfileParams{Name: &name})

			require.NoError(t, err)
			assert.Equal(t, "New Name", got.Name)
			assert.Equal(t, created.Phone, got.Phone, "phone stays unchanged when not provided")
		})
	})

	t.Run("touch last login", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createUserParams("touch@example.com"))
			require.NoError(t, err)

			err = r.TouchLastLogin(t.Context(), created.ID)
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.NotNil(t, got.LastLogin)
			assert.WithinDuration(t, time.Now(), *got.LastLogin, time.Second)
		})
	})
}
