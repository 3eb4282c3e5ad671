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

// ReviewHandler handles beer review HTTP requests
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReview handles POST /api/v1/beers/{beer_id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	beerID := chi.URLParam(r, "beer_id")

	var req services.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	review, err := h.reviewService.CreateReview(ctx, beerID, userID, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("beer_id", beerID).
			Msg("Failed to create review")

		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			statusCode = http.StatusNotFound
		case err.Error() == "rating must be between 1 and 5":
			statusCode = http.StatusUnprocessableEntity
		}

		respondError(w, err.Error(), statusCode)
		return
	}

	respondJSON(w, review, http.StatusCreated)
}
