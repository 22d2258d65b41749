package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
)

type MessageRepo struct {
	DB DBTX
}

const createMessage = `-- name: CreateMessage
INSERT INTO messages (id, request_id, sender_id, recipient_id, body)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, request_id, sender_id, recipient_id, body, read_at
`

func (r *MessageRepo) CreateMessage(ctx context.Context, arg repository.CreateMessageParams) (models.Message, error) {
	rows, _ := r.DB.Query(ctx, createMessage, uuid.New(), arg.RequestID, arg.SenderID, arg.RecipientID, arg.Body)
	msg, err := pgx.CollectOneRow(rows, rowToMessage)
	if err != nil {
		return msg, fmt.Errorf("db error: %w", err)
	}
	return msg, nil
}

const listMessagesByRequest = `-- name: ListMessagesByRequest
SELECT id, created_at, request_id, sender_id, recipient_id, body, read_at
FROM messages
WHERE request_id = $1
ORDER BY created_at
`

func (r *MessageRepo) ListMessagesByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Message, error) {
	rows, _ := r.DB.Query(ctx, listMessagesByRequest, requestID)
	msgs, err := pgx.CollectRows(rows, rowToMessage)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msgs, nil
}

const unreadCount = `-- name: UnreadCount
SELECT count(*)
FROM messages
WHERE recipient_id = $1 AND read_at IS NULL
`

func (r *MessageRepo) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.DB.QueryRow(ctx, unreadCount, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

// The read_at guard keeps the original read time on repeated calls
const markRead = `-- name: MarkRead
UPDATE messages
SET read_at = now()
WHERE id = $1 AND recipient_id = $2 AND read_at IS NULL
`

func (r *MessageRepo) MarkRead(ctx context.Context, messageID uuid.UUID, recipientID uuid.UUID) (bool, error) {
	tag, err := r.DB.Exec(ctx, markRead, messageID, recipientID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func rowToMessage(row pgx.CollectableRow) (models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.CreatedAt, &m.RequestID, &m.SenderID, &m.RecipientID, &m.Body, &m.ReadAt)
	return m, err
}
