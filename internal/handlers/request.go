package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/render"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/userctx"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/logger"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/auth"
)

// RequestHandler manages claims of finders on stored items.
// Approving a request also moves the item to "to_collect", the two writes
// share one transaction.
type RequestHandler struct {
	storage repository.Storage
	logger  logger.Logger
}

func NewRequest(storage repository.Storage, l logger.Logger) *RequestHandler {
	return &RequestHandler{storage: storage, logger: l}
}

func (h *RequestHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", h.create)
	mux.HandleFunc("GET /incoming", h.incoming)
	mux.HandleFunc("GET /outgoing", h.outgoing)
	mux.HandleFunc("GET /{id}", h.details)
	mux.HandleFunc("POST /{id}/approve", h.approve)
	mux.HandleFunc("POST /{id}/reject", h.reject)

	return mux
}

func requestIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.Error(w, "Invalid request id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *RequestHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	if err := auth.RequireRole(user, models.RoleFinder, models.RoleBoth); err != nil {
		render.Error(w, "Only finders can claim items", http.StatusForbidden)
		return
	}

	type createRequest struct {
		ItemID  uuid.UUID `json:"item_id" validate:"required"`
		Message string    `json:"message" validate:"max=2000"`
	}

	data, err := render.BindAndValidate[createRequest](w, r)
	if err != nil {
		return
	}

	item, err := h.storage.Item().GetItem(r.Context(), data.ItemID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrItemNotFound):
		render.Error(w, "Item not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("item lookup failed", "item_id", data.ItemID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if item.FounderID == user.ID {
		render.Error(w, "You can not claim your own item", http.StatusForbidden)
		return
	}
	if item.Status == models.ItemClaimed {
		render.Error(w, "Item is already claimed", http.StatusConflict)
		return
	}

	request, err := h.storage.Request().CreateRequest(r.Context(), repository.CreateRequestParams{
		ItemID:    item.ID,
		FinderID:  user.ID,
		FounderID: item.FounderID,
		Message:   data.Message,
	})
	if err != nil {
		h.logger.Error("request create failed", "item_id", item.ID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.SuccessWithStatus(w, toRequestResponse(request), "Request created", http.StatusCreated)
}

// incoming lists requests against the caller's items
func (h *RequestHandler) incoming(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	requests, err := h.storage.Request().ListRequestsByFounder(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("incoming requests failed", "user_id", user.ID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toRequestResponses(requests), "Incoming requests")
}

// outgoing lists requests the caller created
func (h *RequestHandler) outgoing(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	requests, err := h.storage.Request().ListRequestsByFinder(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("outgoing requests failed", "user_id", user.ID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toRequestResponses(requests), "Outgoing requests")
}

func (h *RequestHandler) details(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	requestID, ok := requestIDParam(w, r)
	if !ok {
		return
	}

	request, err := h.storage.Request().GetRequest(r.Context(), requestID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrRequestNotFound):
		render.Error(w, "Request not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("request details failed", "request_id", requestID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Requests are visible to their two parties only
	if request.FinderID != user.ID && request.FounderID != user.ID {
		render.Error(w, "Request not found", http.StatusNotFound)
		return
	}

	render.Success(w, toRequestResponse(request), "Request details")
}

func (h *RequestHandler) approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.RequestApproved, "Request approved")
}

func (h *RequestHandler) reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.RequestRejected, "Request rejected")
}

func (h *RequestHandler) resolve(w http.ResponseWriter, r *http.Request, status models.RequestStatus, message string) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	requestID, ok := requestIDParam(w, r)
	if !ok {
		return
	}

	request, err := h.storage.Request().GetRequest(r.Context(), requestID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrRequestNotFound):
		render.Error(w, "Request not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("request lookup failed", "request_id", requestID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Only the founder the request is addressed to may resolve it
	if request.FounderID != user.ID {
		render.Error(w, "Only the item founder can resolve this request", http.StatusForbidden)
		return
	}

	var resolved models.Request
	err = h.storage.InTx(r.Context(), func(s repository.Storage) error {
		var txErr error
		resolved, txErr = s.Request().Resolve(r.Context(), requestID, status)
		if txErr != nil {
			return txErr
		}

		if status == models.RequestApproved {
			itemStatus := models.ItemToCollect
			_, txErr = s.Item().UpdateItem(r.Context(), request.ItemID, repository.UpdateItemParams{
				Status: &itemStatus,
			})
		}
		return txErr
	})
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrRequestResolved):
		render.Error(w, "Request is already resolved", http.StatusConflict)
		return
	default:
		h.logger.Error("request resolve failed", "request_id", requestID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toRequestResponse(resolved), message)
}
