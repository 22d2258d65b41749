package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/render"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/userctx"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/logger"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/auth"
)

// ItemHandler manages the found-item catalog.
// Registration and editing are founder actions, browsing is open to any
// authenticated user.
type ItemHandler struct {
	items  repository.ItemRepo
	logger logger.Logger
}

func NewItem(items repository.ItemRepo, l logger.Logger) *ItemHandler {
	return &ItemHandler{items: items, logger: l}
}

func (h *ItemHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.list)
	mux.HandleFunc("POST /", h.create)
	mux.HandleFunc("GET /search", h.search)
	mux.HandleFunc("GET /mine", h.mine)
	mux.HandleFunc("GET /{id}", h.details)
	mux.HandleFunc("PUT /{id}", h.update)

	return mux
}

// itemIDParam parses the {id} path segment as a uuid
// Writes the error response itself and reports ok=false on failure
func itemIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.Error(w, "Invalid item id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ItemHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	items, err := h.items.ListItems(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("item list failed", "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toItemResponses(items), "Items")
}

func (h *ItemHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		render.Error(w, "q parameter is required", http.StatusBadRequest)
		return
	}
	limit, offset := pagination(r)

	items, err := h.items.SearchItems(r.Context(), query, limit, offset)
	if err != nil {
		h.logger.Error("item search failed", "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toItemResponses(items), "Search results")
}

func (h *ItemHandler) mine(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	items, err := h.items.ListItemsByFounder(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("founder item list failed", "user_id", user.ID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toItemResponses(items), "Your items")
}

func (h *ItemHandler) details(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.items.GetItem(r.Context(), itemID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrItemNotFound):
		render.Error(w, "Item not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("item details failed", "item_id", itemID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toItemResponse(item), "Item details")
}

func (h *ItemHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	if err := auth.RequireRole(user, models.RoleFounder, models.RoleBoth); err != nil {
		render.Error(w, "Only founders can register items", http.StatusForbidden)
		return
	}

	type createRequest struct {
		Name          string  `json:"name" validate:"required,min=2,max=200"`
		Description   string  `json:"description" validate:"max=2000"`
		Category      string  `json:"category" validate:"required,max=100"`
		FoundLocation string  `json:"found_location" validate:"required,max=200"`
		Reward        string  `json:"reward" validate:"omitempty"`
		BoxID         *string `json:"box_id" validate:"omitempty,box_id"`
	}

	data, err := render.BindAndValidate[createRequest](w, r)
	if err != nil {
		return
	}

	reward := decimal.Zero
	if data.Reward != "" {
		reward, err = decimal.NewFromString(data.Reward)
		if err != nil || reward.IsNegative() {
			render.ErrorWithDetails(w, "Request validation failed", http.StatusUnprocessableEntity,
				map[string]string{"reward": "Must be a non-negative decimal number"})
			return
		}
	}

	item, err := h.items.CreateItem(r.Context(), repository.CreateItemParams{
		FounderID:     user.ID,
		BoxID:         data.BoxID,
		Name:          data.Name,
		Description:   data.Description,
		Category:      data.Category,
		FoundLocation: data.FoundLocation,
		Reward:        reward,
	})
	if err != nil {
		h.logger.Error("item create failed", "user_id", user.ID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.SuccessWithStatus(w, toItemResponse(item), "Item registered", http.StatusCreated)
}

func (h *ItemHandler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.items.GetItem(r.Context(), itemID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrItemNotFound):
		render.Error(w, "Item not found", http.StatusNotFound)
		return
	default:
		h.logger.Error("item lookup failed", "item_id", itemID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Only the founder who registered the item may change it
	if item.FounderID != user.ID {
		render.Error(w, "You can only edit your own items", http.StatusForbidden)
		return
	}

	type updateRequest struct {
		Name        *string `json:"name" validate:"omitempty,min=2,max=200"`
		Description *string `json:"description" validate:"omitempty,max=2000"`
		Category    *string `json:"category" validate:"omitempty,max=100"`
		BoxID       *string `json:"box_id" validate:"omitempty,box_id"`
		Status      *string `json:"status" validate:"omitempty,oneof=pending_storage waiting to_collect claimed"`
	}

	data, err := render.BindAndValidate[updateRequest](w, r)
	if err != nil {
		return
	}

	var status *models.ItemStatus
	if data.Status != nil {
		s := models.ItemStatus(*data.Status)
		status = &s
	}

	updated, err := h.items.UpdateItem(r.Context(), itemID, repository.UpdateItemParams{
		Name:        data.Name,
		Description: data.Description,
		Category:    data.Category,
		BoxID:       data.BoxID,
		Status:      status,
	})
	if err != nil {
		h.logger.Error("item update failed", "item_id", itemID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toItemResponse(updated), "Item updated")
}
