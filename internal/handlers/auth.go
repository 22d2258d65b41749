package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/render"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/userctx"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/logger"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/service/auth"
)

type authService interface {
	Register(ctx context.Context, arg auth.RegisterParams) (models.User, models.IssuedToken, error)
	Login(ctx context.Context, email string, password string) (models.User, models.IssuedToken, error)
}

type profileStore interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, arg repository.UpdateProfileParams) (models.User, error)
}

type AuthHandler struct {
	auth   authService
	users  profileStore
	logger logger.Logger
}

func NewAuth(svc authService, users profileStore, l logger.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, users: users, logger: l}
}

// Handler builds the auth mux. Profile routes go through withAuth,
// register and login stay open.
func (h *AuthHandler) Handler(withAuth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.Handle("GET /profile", withAuth(http.HandlerFunc(h.profile)))
	mux.Handle("PUT /profile", withAuth(http.HandlerFunc(h.updateProfile)))

	return mux
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type registerRequest struct {
		Name     string `json:"name" validate:"required,min=2,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone" validate:"omitempty,min=5,max=32"`
		Role     string `json:"role" validate:"required,oneof=founder finder both"`
		Password string `json:"password" validate:"required,min=6,max=72"`
	}

	data, err := render.BindAndValidate[registerRequest](w, r)
	if err != nil {
		return
	}

	user, token, err := h.auth.Register(r.Context(), auth.RegisterParams{
		Name:     data.Name,
		Email:    data.Email,
		Phone:    data.Phone,
		Role:     models.Role(data.Role),
		Password: data.Password,
	})
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		render.Error(w, "User with this email already exists", http.StatusConflict)
		return
	default:
		h.logger.Error("registration failed", "email", data.Email, "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.SuccessWithStatus(w, tokenResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      toUserResponse(user),
	}, "User registered", http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type loginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[loginRequest](w, r)
	if err != nil {
		return
	}

	user, token, err := h.auth.Login(r.Context(), data.Email, data.Password)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUnauthenticated):
		render.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	default:
		h.logger.Error("login failed", "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, tokenResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      toUserResponse(user),
	}, "Login successful")
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	render.Success(w, toUserResponse(user), "Profile")
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromRequest(r)
	if !ok {
		render.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	type updateRequest struct {
		Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
		Phone *string `json:"phone" validate:"omitempty,min=5,max=32"`
	}

	data, err := render.BindAndValidate[updateRequest](w, r)
	if err != nil {
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, repository.UpdateProfileParams{
		Name:  data.Name,
		Phone: data.Phone,
	})
	if err != nil {
		h.logger.Error("profile update failed", "user_id", user.ID.String(), "error", err.Error())
		render.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Success(w, toUserResponse(updated), "Profile updated")
}
