package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
)

type CreateUserParams struct {
	Name           string
	Email          string
	Phone          string
	Role           models.Role
	HashedPassword string
}

type UpdateProfileParams struct {
	Name  *string
	Phone *string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Get user by id, but only if still active
	// Deactivated users must come back as apperrors.ErrUserNotFound,
	// this is what invalidates their outstanding tokens
	GetActiveUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)

	UpdateProfile(ctx context.Context, userID uuid.UUID, arg UpdateProfileParams) (models.User, error)

	// Record the login time, used for auditing only
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
}

// Box repository interface
//
// Every mutation is a single conditional UPDATE so that concurrent requests
// against the same box id serialize at the database row.
type BoxRepo interface {
	ListBoxes(ctx context.Context) ([]models.Box, error)
	ListAvailableBoxes(ctx context.Context) ([]models.Box, error)

	// If box not found must return apperrors.ErrBoxNotFound
	GetBox(ctx context.Context, boxID string) (models.Box, error)

	// Set pending command, overwriting any existing one (last writer wins)
	SetCommand(ctx context.Context, boxID string, cmd models.BoxCommand, issuedBy uuid.UUID) error

	// Current pending command with its age, nil when the box is idle
	PendingCommand(ctx context.Context, boxID string) (*models.PendingCommand, error)

	// Clear pending command, return whether one was present
	ClearCommand(ctx context.Context, boxID string) (bool, error)

	// Clear pending command only if it's still the one issued at issuedAt
	// (compare-and-swap: a command issued after the caller's read survives)
	ClearCommandIssuedAt(ctx context.Context, boxID string, issuedAt time.Time) (bool, error)

	// Record device liveness, return the stored ping time
	// If box not found must return apperrors.ErrBoxNotFound
	Heartbeat(ctx context.Context, boxID string) (time.Time, error)

	SetStatus(ctx context.Context, boxID string, status models.BoxStatus) (models.Box, error)

	Stats(ctx context.Context) (models.BoxStats, error)
}

type CreateItemParams struct {
	FounderID     uuid.UUID
	BoxID         *string
	Name          string
	Description   string
	Category      string
	FoundLocation string
	Reward        decimal.Decimal
}

type UpdateItemParams struct {
	Name        *string
	Description *string
	Category    *string
	BoxID       *string
	Status      *models.ItemStatus
}

// Item repository interface
type ItemRepo interface {
	CreateItem(ctx context.Context, arg CreateItemParams) (models.Item, error)

	// If item not found must return apperrors.ErrItemNotFound
	GetItem(ctx context.Context, itemID uuid.UUID) (models.Item, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, arg UpdateItemParams) (models.Item, error)

	ListItems(ctx context.Context, limit int, offset int) ([]models.Item, error)
	SearchItems(ctx context.Context, query string, limit int, offset int) ([]models.Item, error)
	ListItemsByFounder(ctx context.Context, founderID uuid.UUID) ([]models.Item, error)
}

type CreateRequestParams struct {
	ItemID    uuid.UUID
	FinderID  uuid.UUID
	FounderID uuid.UUID
	Message   string
}

// Request repository interface
type RequestRepo interface {
	CreateRequest(ctx context.Context, arg CreateRequestParams) (models.Request, error)

	// If request not found must return apperrors.ErrRequestNotFound
	GetRequest(ctx context.Context, requestID uuid.UUID) (models.Request, error)

	// Resolve a pending request to approved or rejected
	// Must return apperrors.ErrRequestResolved if the request left pending already
	Resolve(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) (models.Request, error)

	ListRequestsByFounder(ctx context.Context, founderID uuid.UUID) ([]models.Request, error)
	ListRequestsByFinder(ctx context.Context, finderID uuid.UUID) ([]models.Request, error)
}

type CreateMessageParams struct {
	RequestID   uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Body        string
}

// Message repository interface
type MessageRepo interface {
	CreateMessage(ctx context.Context, arg CreateMessageParams) (models.Message, error)

	ListMessagesByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Message, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)

	// Mark message read, only the recipient may do that
	// Returns whether the message was unread before the call
	MarkRead(ctx context.Context, messageID uuid.UUID, recipientID uuid.UUID) (bool, error)
}

// Storage aggregates repositories sharing one database handle
type Storage interface {
	User() UserRepo
	Box() BoxRepo
	Item() ItemRepo
	Request() RequestRepo
	Message() MessageRepo

	// Connectivity probe for health checks
	Ping(ctx context.Context) error

	// Run fn within a database transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
