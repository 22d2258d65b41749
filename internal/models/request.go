package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestCompleted:
		return true
	}
	return false
}

// Request is a finder's claim on a stored item.
// FounderID is denormalized from the item so both sides can list their requests.
type Request struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	ItemID    uuid.UUID
	FinderID  uuid.UUID
	FounderID uuid.UUID

	Message string
	Status  RequestStatus
}
