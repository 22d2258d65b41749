package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
)

type RequestRepo struct {
	DB DBTX
}

const createRequest = `-- name: CreateRequest
INSERT INTO requests (id, item_id, finder_id, founder_id, message, status)
VALUES ($1, $2, $3, $4, $5, 'pending')
RETURNING id, created_at, updated_at, item_id, finder_id, founder_id, message, status
`

func (r *RequestRepo) CreateRequest(ctx context.Context, arg repository.CreateRequestParams) (models.Request, error) {
	rows, _ := r.DB.Query(ctx, createRequest, uuid.New(), arg.ItemID, arg.FinderID, arg.FounderID, arg.Message)
	req, err := pgx.CollectOneRow(rows, rowToRequest)
	if err != nil {
		return req, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}

const getRequest = `-- name: GetRequest
SELECT id, created_at, updated_at, item_id, finder_id, founder_id, message, status
FROM requests
WHERE id = $1
`

func (r *RequestRepo) GetRequest(ctx context.Context, requestID uuid.UUID) (models.Request, error) {
	rows, _ := r.DB.Query(ctx, getRequest, requestID)
	return collectRequest(rows)
}

// Pending is the only state a request may be resolved from, the status guard
// makes a concurrent double-approve lose instead of overwriting
const resolveRequest = `-- name: ResolveRequest
UPDATE requests
SET status = $2, updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING id, created_at, updated_at, item_id, finder_id, founder_id, message, status
`

func (r *RequestRepo) Resolve(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) (models.Request, error) {
	rows, _ := r.DB.Query(ctx, resolveRequest, requestID, status)
	req, err := pgx.CollectOneRow(rows, rowToRequest)

	switch {
	case err == nil:
		return req, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Either the id is unknown or the request left pending already
		_, getErr := r.GetRequest(ctx, requestID)
		if getErr != nil {
			return req, getErr
		}
		return req, apperrors.ErrRequestResolved
	default:
		return req, fmt.Errorf("db error: %w", err)
	}
}

const listRequestsByFounder = `-- name: ListRequestsByFounder
SELECT id, created_at, updated_at, item_id, finder_id, founder_id, message, status
FROM requests
WHERE founder_id = $1
ORDER BY created_at DESC
`

func (r *RequestRepo) ListRequestsByFounder(ctx context.Context, founderID uuid.UUID) ([]models.Request, error) {
	rows, _ := r.DB.Query(ctx, listRequestsByFounder, founderID)
	reqs, err := pgx.CollectRows(rows, rowToRequest)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reqs, nil
}

const listRequestsByFinder = `-- name: ListRequestsByFinder
SELECT id, created_at, updated_at, item_id, finder_id, founder_id, message, status
FROM requests
WHERE finder_id = $1
ORDER BY created_at DESC
`

func (r *RequestRepo) ListRequestsByFinder(ctx context.Context, finderID uuid.UUID) ([]models.Request, error) {
	rows, _ := r.DB.Query(ctx, listRequestsByFinder, finderID)
	reqs, err := pgx.CollectRows(rows, rowToRequest)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reqs, nil
}

func collectRequest(rows pgx.Rows) (models.Request, error) {
	req, err := pgx.CollectOneRow(rows, rowToRequest)

	switch {
	case err == nil:
		return req, nil
	case errors.Is(err, pgx.ErrNoRows):
		return req, apperrors.ErrRequestNotFound
	default:
		return req, fmt.Errorf("db error: %w", err)
	}
}

func rowToRequest(row pgx.CollectableRow) (models.Request, error) {
	var q models.Request
	err := row.Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt, &q.ItemID, &q.FinderID, &q.FounderID, &q.Message, &q.Status)
	return q, err
}
