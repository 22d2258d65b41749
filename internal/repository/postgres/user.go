package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (id, name, email, phone, role, password_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, name, email, phone, role, password_hash, is_active, last_login
`

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), arg.Name, arg.Email, arg.Phone, arg.Role, arg.HashedPassword)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT id, created_at, name, email, phone, role, password_hash, is_active, last_login
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT id, created_at, name, email, phone, role, password_hash, is_active, last_login
FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const getActiveUserByID = `-- name: GetActiveUserByID
SELECT id, created_at, name, email, phone, role, password_hash, is_active, last_login
FROM users
WHERE id = $1 AND is_active
`

func (r *UserRepo) GetActiveUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getActiveUserByID, userID)
	return collectUser(rows)
}

const updateProfile = `-- name: UpdateProfile
UPDATE users
SET name  = COALESCE($2, name),
    phone = COALESCE($3, phone)
WHERE id = $1
RETURNING id, created_at, name, email, phone, role, password_hash, is_active, last_login
`

func (r *UserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, arg repository.UpdateProfileParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateProfile, userID, arg.Name, arg.Phone)
	return collectUser(rows)
}

const touchLastLogin = `-- name: TouchLastLogin
UPDATE users
SET last_login = now()
WHERE id = $1
`

func (r *UserRepo) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, touchLastLogin, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.Phone, &u.Role, &u.HashedPassword, &u.IsActive, &u.LastLogin)
	return u, err
}
