package handlers

import (
	"encoding/json"
	"net/http"

	"barhop-backend/internal/middleware"
	"barhop-backend/internal/services"

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

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Handle == "" {
		respondError(w, "handle is required", http.StatusBadRequest)
		return
	}

	resp, err := h.userService.CreateUser(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("handle", req.Handle).Msg("Failed to create user")

		statusCode := http.StatusInternalServerError
		if err.Error() == "handle is already taken" {
			statusCode = http.StatusConflict
		}

		respondError(w, err.Error(), statusCode)
		return
	}

	log.Info().
		Str("user_id", resp.User.ID).
		Str("handle", resp.User.Handle).
		Msg("User created")

	respondJSON(w, resp, http.StatusCreated)
}

// UpdatePushTokenRequest represents the request body for registering
// a push token
type UpdatePushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// UpdatePushToken handles PUT /api/v1/users/push_token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UpdatePushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(ctx, userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondError(w, "Failed to update push token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
