package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"barhop-backend/internal/middleware"
	"barhop-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FriendshipHandler handles friendship-related HTTP requests
type FriendshipHandler struct {
	friendshipService *services.FriendshipService
}

// NewFriendshipHandler creates a new friendship handler
func NewFriendshipHandler(friendshipService *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipService: friendshipService}
}

// CreateFriendshipRequest represents the request body for creating
// a friendship
type CreateFriendshipRequest struct {
	FriendID string  `json:"friend_id"`
	BarID    *string `json:"bar_id"`
	EventID  *string `json:"event_id"`
}

// CreateFriendship handles POST /api/v1/users/{user_id}/friendships
func (h *FriendshipHandler) CreateFriendship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "user_id")

	if userID != middleware.GetUserID(ctx) {
		respondError(w, "Cannot create friendships for another user", http.StatusForbidden)
		return
	}

	var req CreateFriendshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FriendID == "" {
		respondError(w, "friend_id is required", http.StatusBadRequest)
		return
	}

	friendship, err := h.friendshipService.CreateFriendship(ctx, userID, req.FriendID, req.BarID, req.EventID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("friend_id", req.FriendID).
			Msg("Failed to create friendship")

		statusCode := http.StatusInternalServerError
		switch err.Error() {
		case "friend not found":
			statusCode = http.StatusNotFound
		case "cannot be friends with yourself", "already friends":
			statusCode = http.StatusUnprocessableEntity
		}

		respondError(w, err.Error(), statusCode)
		return
	}

	respondJSON(w, friendship, http.StatusCreated)
}

// ListFriendships handles GET /api/v1/users/{user_id}/friendships
func (h *FriendshipHandler) ListFriendships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "user_id")

	friends, err := h.friendshipService.ListFriends(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) {
			respondError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friendships")
		respondError(w, "Failed to list friendships", http.StatusInternalServerError)
		return
	}

	respondJSON(w, friends, http.StatusOK)
}
