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

type ItemRepo struct {
	DB DBTX
}

const createItem = `-- name: CreateItem
INSERT INTO items (id, founder_id, box_id, name, description, category, found_location, reward, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending_storage')
RETURNING id, created_at, updated_at, founder_id, box_id, name, description, category, found_location, reward, status
`

func (r *ItemRepo) CreateItem(ctx context.Context, arg repository.CreateItemParams) (models.Item, error) {
	rows, _ := r.DB.Query(ctx, createItem,
		uuid.New(), arg.FounderID, arg.BoxID, arg.Name, arg.Description, arg.Category, arg.FoundLocation, arg.Reward)
	item, err := pgx.CollectOneRow(rows, rowToItem)
	if err != nil {
		return item, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

const getItem = `-- name: GetItem
SELECT id, created_at, updated_at, founder_id, box_id, name, description, category, found_location, reward, status
FROM items
WHERE id = $1
`

func (r *ItemRepo) GetItem(ctx context.Context, itemID uuid.UUID) (models.Item, error) {
	rows, _ := r.DB.Query(ctx, getItem, itemID)
	return collectItem(rows)
}

const updateItem = `-- name: UpdateItem
UPDATE items
SET name        = COALESCE($2, name),
    description = COALESCE($3, description),
    category    = COALESCE($4, category),
    box_id      = COALESCE($5, box_id),
    status      = COALESCE($6, status),
    updated_at  = now()
WHERE id = $1
RETURNING id, created_at, updated_at, founder_id, box_id, name, description, category, found_location, reward, status
`

func (r *ItemRepo) UpdateItem(ctx context.Context, itemID uuid.UUID, arg repository.UpdateItemParams) (models.Item, error) {
	rows, _ := r.DB.Query(ctx, updateItem, itemID, arg.Name, arg.Description, arg.Category, arg.BoxID, arg.Status)
	return collectItem(rows)
}

const listItems = `-- name: ListItems
SELECT id, created_at, updated_at, founder_id, box_id, name, description, category, found_location, reward, status
FROM items
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

func (r *ItemRepo) ListItems(ctx context.Context, limit int, offset int) ([]models.Item, error) {
	rows, _ := r.DB.Query(ctx, listItems, limit, offset)
	items, err := pgx.CollectRows(rows, rowToItem)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

const searchItems = `-- name: SearchItems
SELECT id, created_at, updated_at, founder_id, box_id, name, description, category, found_location, reward, status
FROM items
WHERE name ILIKE '%' || $1 || '%'
   OR description ILIKE '%' || $1 || '%'
   OR category ILIKE '%' || $1 || '%'
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

func (r *ItemRepo) SearchItems(ctx context.Context, query string, limit int, offset int) ([]models.Item, error) {
	rows, _ := r.DB.Query(ctx, searchItems, query, limit, offset)
	items, err := pgx.CollectRows(rows, rowToItem)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

const listItemsByFounder = `-- name: ListItemsByFounder
SELECT id, created_at, updated_at, founder_id, box_id, name, description, category, found_location, reward, status
FROM items
WHERE founder_id = $1
ORDER BY created_at DESC
`

func (r *ItemRepo) ListItemsByFounder(ctx context.Context, founderID uuid.UUID) ([]models.Item, error) {
	rows, _ := r.DB.Query(ctx, listItemsByFounder, founderID)
	items, err := pgx.CollectRows(rows, rowToItem)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func collectItem(rows pgx.Rows) (models.Item, error) {
	item, err := pgx.CollectOneRow(rows, rowToItem)

	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, pgx.ErrNoRows):
		return item, apperrors.ErrItemNotFound
	default:
		return item, fmt.Errorf("db error: %w", err)
	}
}

func rowToItem(row pgx.CollectableRow) (models.Item, error) {
	var i models.Item
	err := row.Scan(
		&i.ID, &i.CreatedAt, &i.UpdatedAt, &i.FounderID, &i.BoxID,
		&i.Name, &i.Description, &i.Category, &i.FoundLocation, &i.Reward, &i.Status,
	)
	return i, err
}
