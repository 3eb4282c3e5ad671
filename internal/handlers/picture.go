package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"barhop-backend/internal/middleware"
	"barhop-backend/internal/repository"
	"barhop-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PictureHandler handles event picture HTTP requests
type PictureHandler struct {
	pictureService *services.PictureService
}

// NewPictureHandler creates a new picture handler
func NewPictureHandler(pictureService *services.PictureService) *PictureHandler {
	return &PictureHandler{pictureService: pictureService}
}

// CreatePicture handles POST /api/v1/events/{event_id}/pictures
func (h *PictureHandler) CreatePicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	eventID := chi.URLParam(r, "event_id")

	var req services.CreatePictureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.pictureService.CreatePicture(ctx, eventID, userID, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("event_id", eventID).
			Msg("Failed to create picture")

		statusCode := http.StatusInternalServerError
		if errors.Is(err, repository.ErrNotFound) {
			statusCode = http.StatusNotFound
		}

		respondError(w, err.Error(), statusCode)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("picture_id", resp.Picture.ID).
		Str("event_id", eventID).
		Msg("Event picture created")

	respondJSON(w, resp, http.StatusCreated)
}
