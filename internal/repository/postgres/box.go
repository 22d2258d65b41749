package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
)

// A box counts as online while its last heartbeat is younger than this.
// Online is always computed in the query, nothing stores the flag.
const onlineWindow = 120 * time.Second

type BoxRepo struct {
	DB DBTX
}

const listBoxes = `-- name: ListBoxes
SELECT box_id, created_at, updated_at, name, location, status,
       command, command_issued_at, command_issued_by, last_ping,
       (last_ping IS NOT NULL AND last_ping > now() - make_interval(secs => $1)) AS online
FROM boxes
ORDER BY box_id
`

func (r *BoxRepo) ListBoxes(ctx context.Context) ([]models.Box, error) {
	rows, _ := r.DB.Query(ctx, listBoxes, onlineWindow.Seconds())
	boxes, err := pgx.CollectRows(rows, rowToBox)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return boxes, nil
}

const listAvailableBoxes = `-- name: ListAvailableBoxes
SELECT box_id, created_at, updated_at, name, location, status,
       command, command_issued_at, command_issued_by, last_ping,
       (last_ping IS NOT NULL AND last_ping > now() - make_interval(secs => $1)) AS online
FROM boxes
WHERE status = 'available'
ORDER BY box_id
`

func (r *BoxRepo) ListAvailableBoxes(ctx context.Context) ([]models.Box, error) {
	rows, _ := r.DB.Query(ctx, listAvailableBoxes, onlineWindow.Seconds())
	boxes, err := pgx.CollectRows(rows, rowToBox)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return boxes, nil
}

const getBox = `-- name: GetBox
SELECT box_id, created_at, updated_at, name, location, status,
       command, command_issued_at, command_issued_by, last_ping,
       (last_ping IS NOT NULL AND last_ping > now() - make_interval(secs => $2)) AS online
FROM boxes
WHERE box_id = $1
`

func (r *BoxRepo) GetBox(ctx context.Context, boxID string) (models.Box, error) {
	rows, _ := r.DB.Query(ctx, getBox, boxID, onlineWindow.Seconds())
	box, err := pgx.CollectOneRow(rows, rowToBox)

	switch {
	case err == nil:
		return box, nil
	case errors.Is(err, pgx.ErrNoRows):
		return box, apperrors.ErrBoxNotFound
	default:
		return box, fmt.Errorf("db error: %w", err)
	}
}

// Overwrites any pending command: at most one command is outstanding per box,
// the last writer wins
const setCommand = `-- name: SetCommand
UPDATE boxes
SET command = $2, command_issued_at = now(), command_issued_by = $3, updated_at = now()
WHERE box_id = $1
`

func (r *BoxRepo) SetCommand(ctx context.Context, boxID string, cmd models.BoxCommand, issuedBy uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, setCommand, boxID, cmd, issuedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBoxNotFound
	}
	return nil
}

const pendingCommand = `-- name: PendingCommand
SELECT command, command_issued_at, extract(epoch FROM now() - command_issued_at) AS age_seconds
FROM boxes
WHERE box_id = $1 AND command IS NOT NULL
`

func (r *BoxRepo) PendingCommand(ctx context.Context, boxID string) (*models.PendingCommand, error) {
	var (
		cmd        models.BoxCommand
		issuedAt   time.Time
		ageSeconds float64
	)

	err := r.DB.QueryRow(ctx, pendingCommand, boxID).Scan(&cmd, &issuedAt, &ageSeconds)

	switch {
	case err == nil:
		return &models.PendingCommand{
			Command:  cmd,
			IssuedAt: issuedAt,
			Age:      time.Duration(ageSeconds * float64(time.Second)),
		}, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Idle box or unknown id, both read as "no command"
		return nil, nil
	default:
		return nil, fmt.Errorf("db error: %w", err)
	}
}

const clearCommand = `-- name: ClearCommand
UPDATE boxes
SET command = NULL, command_issued_at = NULL, command_issued_by = NULL, updated_at = now()
WHERE box_id = $1 AND command IS NOT NULL
`

func (r *BoxRepo) ClearCommand(ctx context.Context, boxID string) (bool, error) {
	tag, err := r.DB.Exec(ctx, clearCommand, boxID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// The issued_at guard makes expiry a compare-and-swap: a fresh command issued
// after the caller read the stale one is left alone
const clearCommandIssuedAt = `-- name: ClearCommandIssuedAt
UPDATE boxes
SET command = NULL, command_issued_at = NULL, command_issued_by = NULL, updated_at = now()
WHERE box_id = $1 AND command IS NOT NULL AND command_issued_at = $2
`

func (r *BoxRepo) ClearCommandIssuedAt(ctx context.Context, boxID string, issuedAt time.Time) (bool, error) {
	tag, err := r.DB.Exec(ctx, clearCommandIssuedAt, boxID, issuedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const heartbeat = `-- name: Heartbeat
UPDATE boxes
SET last_ping = now(), updated_at = now()
WHERE box_id = $1
RETURNING last_ping
`

func (r *BoxRepo) Heartbeat(ctx context.Context, boxID string) (time.Time, error) {
	var pingedAt time.Time
	err := r.DB.QueryRow(ctx, heartbeat, boxID).Scan(&pingedAt)

	switch {
	case err == nil:
		return pingedAt, nil
	case errors.Is(err, pgx.ErrNoRows):
		return pingedAt, apperrors.ErrBoxNotFound
	default:
		return pingedAt, fmt.Errorf("db error: %w", err)
	}
}

const setStatus = `-- name: SetStatus
UPDATE boxes
SET status = $2, updated_at = now()
WHERE box_id = $1
RETURNING box_id, created_at, updated_at, name, location, status,
          command, command_issued_at, command_issued_by, last_ping,
          (last_ping IS NOT NULL AND last_ping > now() - make_interval(secs => $3)) AS online
`

func (r *BoxRepo) SetStatus(ctx context.Context, boxID string, status models.BoxStatus) (models.Box, error) {
	rows, _ := r.DB.Query(ctx, setStatus, boxID, status, onlineWindow.Seconds())
	box, err := pgx.CollectOneRow(rows, rowToBox)

	switch {
	case err == nil:
		return box, nil
	case errors.Is(err, pgx.ErrNoRows):
		return box, apperrors.ErrBoxNotFound
	default:
		return box, fmt.Errorf("db error: %w", err)
	}
}

const boxStats = `-- name: BoxStats
SELECT
	count(*) FILTER (WHERE last_ping IS NOT NULL AND last_ping > now() - make_interval(secs => $1)) AS online,
	count(*) FILTER (WHERE last_ping IS NULL OR last_ping <= now() - make_interval(secs => $1)) AS offline,
	count(*) FILTER (WHERE command IS NOT NULL) AS pending
FROM boxes
`

func (r *BoxRepo) Stats(ctx context.Context) (models.BoxStats, error) {
	var s models.BoxStats
	err := r.DB.QueryRow(ctx, boxStats, onlineWindow.Seconds()).Scan(&s.Online, &s.Offline, &s.Pending)
	if err != nil {
		return s, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func rowToBox(row pgx.CollectableRow) (models.Box, error) {
	var b models.Box
	err := row.Scan(
		&b.ID, &b.CreatedAt, &b.UpdatedAt, &b.Name, &b.Location, &b.Status,
		&b.Command, &b.CommandIssuedAt, &b.CommandIssuedBy, &b.LastPing, &b.Online,
	)
	return b, err
}
