package models

import (
	"time"

	"github.com/google/uuid"
)

// Message belongs to the thread between the two parties of a request
type Message struct {
	ID        uuid.UUID
	CreatedAt time.Time

	RequestID   uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID

	Body   string
	ReadAt *time.Time // nil until the recipient marks it read
}
