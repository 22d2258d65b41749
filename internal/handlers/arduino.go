package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/render"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/logger"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
)

type deviceService interface {
	FetchCommand(ctx context.Context, boxID string) (*models.PendingCommand, error)
	ClearCommand(ctx context.Context, boxID string) (bool, error)
	Heartbeat(ctx context.Context, boxID string) (time.Time, error)
	SetLockStatus(ctx context.Context, boxID string, status models.BoxStatus) (models.Box, error)
	GetBox(ctx context.Context, boxID string) (models.Box, error)
	Stats(ctx context.Context) (models.BoxStats, error)
}

type storagePinger interface {
	Ping(ctx context.Context) error
}

// ArduinoHandler is the polling surface for the box lock controllers.
// Deliberately unauthenticated: a device identifies itself by box id alone,
// so every handler validates the id shape before touching storage.
type ArduinoHandler struct {
	boxes   deviceService
	storage storagePinger
	logger  logger.Logger
}

func NewArduino(boxes deviceService, storage storagePinger, l logger.Logger) *ArduinoHandler {
	return &ArduinoHandler{boxes: boxes, storage: storage, logger: l}
}

func (h *ArduinoHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /command", h.command)
	mux.HandleFunc("POST /clear", h.clear)
	mux.HandleFunc("POST /ping", h.ping)
	mux.HandleFunc("POST /status", h.status)
	mux.HandleFunc("GET /info", h.info)
	mux.HandleFunc("GET /health", h.health)

	return mux
}

// boxIDParam reads and shape-checks the box_id query parameter
// Writes the error response itself and reports ok=false on failure
func boxIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	boxID := r.URL.Query().Get("box_id")

	if boxID == "" {
		render.Error(w, "box_id parameter is required", http.StatusBadRequest)
		return "", false
	}
	if !models.ValidBoxID(boxID) {
		render.Error(w, "Invalid box_id format", http.StatusBadRequest)
		return "", false
	}

	return boxID, true
}

type commandResponse struct {
	Command    *models.BoxCommand `json:"command"`
	Timestamp  *time.Time         `json:"timestamp,omitempty"`
	AgeSeconds *int               `json:"age_seconds,omitempty"`
}

// Devices poll this every few seconds. An expired command reads as "no
// command": expiry is a normal state transition here, never an error.
func (h *ArduinoHandler) command(w http.ResponseWriter, r *http.Request) {
	boxID, ok := boxIDParam(w, r)
	if !ok {
		return
	}

	pending, err := h.boxes.FetchCommand(r.Context(), boxID)
	if err != nil {
		h.logger.Error("command fetch failed", "box_id", boxID, "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if pending == nil {
		render.Success(w, commandResponse{Command: nil}, "No pending command")
		return
	}

	age := int(pending.Age.Seconds())
	render.Success(w, commandResponse{
		Command:    &pending.Command,
		Timestamp:  &pending.IssuedAt,
		AgeSeconds: &age,
	}, "Command found")
}

func (h *ArduinoHandler) clear(w http.ResponseWriter, r *http.Request) {
	boxID, ok := boxIDParam(w, r)
	if !ok {
		return
	}

	cleared, err := h.boxes.ClearCommand(r.Context(), boxID)
	if err != nil {
		h.logger.Error("command clear failed", "box_id", boxID, "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type clearResponse struct {
		Cleared bool `json:"cleared"`
	}

	message := "Command cleared"
	if !cleared {
		message = "No pending command"
	}
	render.Success(w, clearResponse{Cleared: cleared}, message)
}

func (h *ArduinoHandler) ping(w http.ResponseWriter, r *http.Request) {
	boxID, ok := boxIDParam(w, r)
	if !ok {
		return
	}

	pingedAt, err := h.boxes.Heartbeat(r.Context(), boxID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrBoxNotFound):
		render.Error(w, "Box not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("heartbeat failed", "box_id", boxID, "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type pingResponse struct {
		BoxID     string    `json:"box_id"`
		Timestamp time.Time `json:"timestamp"`
	}
	render.Success(w, pingResponse{BoxID: boxID, Timestamp: pingedAt}, "Ping received")
}

func (h *ArduinoHandler) status(w http.ResponseWriter, r *http.Request) {
	type statusRequest struct {
		BoxID  string `json:"box_id" validate:"required,box_id"`
		Status string `json:"status" validate:"required,oneof=available occupied"`
	}

	data, err := render.BindAndValidate[statusRequest](w, r)
	if err != nil {
		return
	}

	box, err := h.boxes.SetLockStatus(r.Context(), data.BoxID, models.BoxStatus(data.Status))
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrBoxNotFound):
		render.Error(w, "Box not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("status update failed", "box_id", data.BoxID, "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type statusResponse struct {
		BoxID  string           `json:"box_id"`
		Status models.BoxStatus `json:"status"`
	}
	render.Success(w, statusResponse{BoxID: box.ID, Status: box.Status}, "Status updated")
}

func (h *ArduinoHandler) info(w http.ResponseWriter, r *http.Request) {
	boxID, ok := boxIDParam(w, r)
	if !ok {
		return
	}

	box, err := h.boxes.GetBox(r.Context(), boxID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrBoxNotFound):
		render.Error(w, "Box not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("box info failed", "box_id", boxID, "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type infoResponse struct {
		BoxID    string           `json:"box_id"`
		Name     string           `json:"name"`
		Location string           `json:"location"`
		Status   models.BoxStatus `json:"status"`
		Online   bool             `json:"is_online"`
		LastPing *time.Time       `json:"last_ping"`
	}
	render.Success(w, infoResponse{
		BoxID:    box.ID,
		Name:     box.Name,
		Location: box.Location,
		Status:   box.Status,
		Online:   box.Online,
		LastPing: box.LastPing,
	}, "Box information")
}

type healthStats struct {
	Online  int64 `json:"online"`
	Offline int64 `json:"offline"`
	Pending int64 `json:"pending"`
}

type healthResponse struct {
	Status   string       `json:"status"`
	Database string       `json:"database"`
	Stats    *healthStats `json:"stats,omitempty"`
}

func (h *ArduinoHandler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(r.Context()); err != nil {
		h.logger.Error("health check: database unreachable", "error", err.Error())
		render.ErrorWithDetails(w, "System unhealthy", http.StatusInternalServerError,
			map[string]string{"database": "disconnected"})
		return
	}

	stats, err := h.boxes.Stats(r.Context())
	if err != nil {
		h.logger.Error("health check: stats query failed", "error", err.Error())
		render.ErrorWithDetails(w, "System unhealthy", http.StatusInternalServerError,
			map[string]string{"database": "disconnected"})
		return
	}

	render.Success(w, healthResponse{
		Status:   "healthy",
		Database: "connected",
		Stats: &healthStats{
			Online:  stats.Online,
			Offline: stats.Offline,
			Pending: stats.Pending,
		},
	}, "System healthy")
}
