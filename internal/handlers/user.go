package handlers

import (
	"net/http"

	"github.com/nexcodes/softec-25-sub000/internal/middleware"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// authPayload is the register and login response
type authPayload struct {
	User  *models.Account `json:"user"`
	Token string          `json:"token"`
}

// Register handles POST /api/v1/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.userService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to register user")
		return
	}

	log.Info().
		Str("user_id", resp.User.ID).
		Msg("User registered")

	respondJSON(w, http.StatusCreated, authPayload{User: resp.User.Account(), Token: resp.Token})
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.userService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to log in")
		return
	}
	respondJSON(w, http.StatusOK, authPayload{User: resp.User.Account(), Token: resp.Token})
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.userService.GetUser(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get user")
		return
	}
	respondJSON(w, http.StatusOK, user.Account())
}

// PushTokenRequest sets or clears the device token
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// UpdatePushToken handles PATCH /api/v1/users/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.UpdatePushToken(ctx, userID, req.PushToken); err != nil {
		respondServiceError(w, r, err, "Failed to update push token")
		return
	}

	log.Info().Str("user_id", userID).Msg("Push token updated")
	w.WriteHeader(http.StatusNoContent)
}
