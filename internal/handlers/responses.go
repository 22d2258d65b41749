package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
)

// JSON shapes shared between endpoints. Kept separate from the domain models
// so the wire format can not drift accidentally when a model grows a field.

type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	LastLogin *time.Time  `json:"last_login"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

type BoxResponse struct {
	BoxID    string           `json:"box_id"`
	Name     string           `json:"name"`
	Location string           `json:"location"`
	Status   models.BoxStatus `json:"status"`
	Online   bool             `json:"is_online"`
	LastPing *time.Time       `json:"last_ping"`
}

func toBoxResponse(b models.Box) BoxResponse {
	return BoxResponse{
		BoxID:    b.ID,
		Name:     b.Name,
		Location: b.Location,
		Status:   b.Status,
		Online:   b.Online,
		LastPing: b.LastPing,
	}
}

func toBoxResponses(boxes []models.Box) []BoxResponse {
	out := make([]BoxResponse, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, toBoxResponse(b))
	}
	return out
}

type ItemResponse struct {
	ID            uuid.UUID         `json:"id"`
	FounderID     uuid.UUID         `json:"founder_id"`
	BoxID         *string           `json:"box_id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	FoundLocation string            `json:"found_location"`
	Reward        decimal.Decimal   `json:"reward"`
	Status        models.ItemStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func toItemResponse(i models.Item) ItemResponse {
	return ItemResponse{
		ID:            i.ID,
		FounderID:     i.FounderID,
		BoxID:         i.BoxID,
		Name:          i.Name,
		Description:   i.Description,
		Category:      i.Category,
		FoundLocation: i.FoundLocation,
		Reward:        i.Reward,
		Status:        i.Status,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func toItemResponses(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toItemResponse(i))
	}
	return out
}

type RequestResponse struct {
	ID        uuid.UUID            `json:"id"`
	ItemID    uuid.UUID            `json:"item_id"`
	FinderID  uuid.UUID            `json:"finder_id"`
	FounderID uuid.UUID            `json:"founder_id"`
	Message   string               `json:"message"`
	Status    models.RequestStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func toRequestResponse(r models.Request) RequestResponse {
	return RequestResponse{
		ID:        r.ID,
		ItemID:    r.ItemID,
		FinderID:  r.FinderID,
		FounderID: r.FounderID,
		Message:   r.Message,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toRequestResponses(requests []models.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, toRequestResponse(r))
	}
	return out
}

type MessageResponse struct {
	ID          uuid.UUID  `json:"id"`
	RequestID   uuid.UUID  `json:"request_id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Body        string     `json:"body"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toMessageResponse(m models.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		RequestID:   m.RequestID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

func toMessageResponses(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	return out
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pagination reads ?page= and ?page_size= with sane bounds
// and converts them to a limit/offset pair
func pagination(r *http.Request) (limit int, offset int) {
	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}

	size := defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		size = min(v, maxPageSize)
	}

	return size, (page - 1) * size
}
