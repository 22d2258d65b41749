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
)

// MessageHandler is the per-request message thread between founder and finder.
// The recipient is always the other party of the request, never chosen by the
// sender.
type MessageHandler struct {
	messages repository.MessageRepo
	requests repository.RequestRepo
	logger   logger.Logger
}

func NewMessage(messages repository.MessageRepo, requests repository.RequestRepo, l logger.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, requests: requests, logger: l}
}

func (h *MessageHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", h.send)
	mux.HandleFunc("GET /unread", h.unread)
	mux.HandleFunc("GET /request/{id}", h.thread)
	mux.HandleFunc("POST /{id}/read", h.markRead)

	return mux
}

// requestForUser loads the request and checks the caller is one of its parties
// Writes the error response itself and reports ok=false on failure
func (h *MessageHandler) requestForUser(w http.ResponseWriter, r *http.Request, requestID uuid.UUID, user models.User) (models.Request, bool) {
	request, err := h.requests.GetRequest(r.Context(), requestID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrRequestNotFound):
		render.Error(w, "Request not found", http.StatusNotFound)
		return models.Request{}, false
	default:
		h.logger.Error("request lookup failed", "request_id", requestID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return models.Request{}, false
	}

	if request.FinderID != user.ID && request.FounderID != user.ID {
		render.Error(w, "Request not found", http.StatusNotFound)
		return models.Request{}, false
	}

	return request, true
}

func (h *MessageHandler) send(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	type sendRequest struct {
		RequestID uuid.UUID `json:"request_id" validate:"required"`
		Body      string    `json:"body" validate:"required,max=4000"`
	}

	data, err := render.BindAndValidate[sendRequest](w, r)
	if err != nil {
		return
	}

	request, ok := h.requestForUser(w, r, data.RequestID, user)
	if !ok {
		return
	}

	recipient := request.FounderID
	if user.ID == request.FounderID {
		recipient = request.FinderID
	}

	message, err := h.messages.CreateMessage(r.Context(), repository.CreateMessageParams{
		RequestID:   request.ID,
		SenderID:    user.ID,
		RecipientID: recipient,
		Body:        data.Body,
	})
	if err != nil {
		h.logger.Error("message send failed", "request_id", request.ID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.SuccessWithStatus(w, toMessageResponse(message), "Message sent", http.StatusCreated)
}

func (h *MessageHandler) thread(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	requestID, ok := requestIDParam(w, r)
	if !ok {
		return
	}

	if _, ok := h.requestForUser(w, r, requestID, user); !ok {
		return
	}

	messages, err := h.messages.ListMessagesByRequest(r.Context(), requestID)
	if err != nil {
		h.logger.Error("message list failed", "request_id", requestID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toMessageResponses(messages), "Messages")
}

func (h *MessageHandler) unread(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	count, err := h.messages.UnreadCount(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("unread count failed", "user_id", user.ID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type unreadResponse struct {
		Unread int64 `json:"unread"`
	}
	render.Success(w, unreadResponse{Unread: count}, "Unread messages")
}

func (h *MessageHandler) markRead(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.Error(w, "Invalid message id", http.StatusBadRequest)
		return
	}

	// The repo matches recipient in the same statement, so a foreign or
	// unknown message and an already-read one both come back as false
	marked, err := h.messages.MarkRead(r.Context(), messageID, user.ID)
	if err != nil {
		h.logger.Error("mark read failed", "message_id", messageID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type markReadResponse struct {
		Marked bool `json:"marked"`
	}
	render.Success(w, markReadResponse{Marked: marked}, "Message read state updated")
}
