package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/render"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/userctx"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/logger"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
)

type boxService interface {
	ListBoxes(ctx context.Context) ([]models.Box, error)
	ListAvailableBoxes(ctx context.Context) ([]models.Box, error)
	GetBox(ctx context.Context, boxID string) (models.Box, error)
	IssueCommand(ctx context.Context, boxID string, cmd models.BoxCommand, issuedBy uuid.UUID) error
}

// BoxHandler is the user-facing box surface. Unlock and lock do not talk to
// the device: they queue a command the device picks up on its next poll.
type BoxHandler struct {
	boxes  boxService
	logger logger.Logger
}

func NewBox(boxes boxService, l logger.Logger) *BoxHandler {
	return &BoxHandler{boxes: boxes, logger: l}
}

func (h *BoxHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.list)
	mux.HandleFunc("GET /available", h.available)
	mux.HandleFunc("GET /{id}", h.details)
	mux.HandleFunc("POST /unlock", h.unlock)
	mux.HandleFunc("POST /lock", h.lock)

	return mux
}

func (h *BoxHandler) list(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.boxes.ListBoxes(r.Context())
	if err != nil {
		h.logger.Error("box list failed", "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toBoxResponses(boxes), "Boxes")
}

func (h *BoxHandler) available(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.boxes.ListAvailableBoxes(r.Context())
	if err != nil {
		h.logger.Error("available box list failed", "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toBoxResponses(boxes), "Available boxes")
}

func (h *BoxHandler) details(w http.ResponseWriter, r *http.Request) {
	boxID := r.PathValue("id")
	if !models.ValidBoxID(boxID) {
		render.Error(w, "Invalid box_id format", http.StatusBadRequest)
		return
	}

	box, err := h.boxes.GetBox(r.Context(), boxID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrBoxNotFound):
		render.Error(w, "Box not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("box details failed", "box_id", boxID, "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toBoxResponse(box), "Box details")
}

func (h *BoxHandler) unlock(w http.ResponseWriter, r *http.Request) {
	h.issueCommand(w, r, models.CommandUnlock, "Unlock command sent")
}

func (h *BoxHandler) lock(w http.ResponseWriter, r *http.Request) {
	h.issueCommand(w, r, models.CommandLock, "Lock command sent")
}

func (h *BoxHandler) issueCommand(w http.ResponseWriter, r *http.Request, cmd models.BoxCommand, message string) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	type commandRequest struct {
		BoxID string `json:"box_id" validate:"required,box_id"`
	}

	data, err := render.BindAndValidate[commandRequest](w, r)
	if err != nil {
		return
	}

	err = h.boxes.IssueCommand(r.Context(), data.BoxID, cmd, user.ID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrBoxNotFound):
		render.Error(w, "Box not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("command issue failed", "box_id", data.BoxID, "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type commandIssued struct {
		BoxID   string            `json:"box_id"`
		Command models.BoxCommand `json:"command"`
	}
	render.Success(w, commandIssued{BoxID: data.BoxID, Command: cmd}, message)
}
