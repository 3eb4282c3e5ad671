package services

import (
	"context"
	"fmt"
	"time"

	"barhop-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// reviewStore is the write side of the review repository.
type reviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	GetBeerByID(ctx context.Context, id string) (*models.Beer, error)
	GetFeedEntry(ctx context.Context, id string) (*models.ReviewFeedEntry, error)
}

// ReviewService handles beer review creation
type ReviewService struct {
	reviews  reviewStore
	notifier contentNotifier
}

// NewReviewService creates a new review service
func NewReviewService(reviews reviewStore, notifier contentNotifier) *ReviewService {
	return &ReviewService{reviews: reviews, notifier: notifier}
}

// CreateReviewRequest represents a request to review a beer
type CreateReviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// CreateReview persists a review and fans it out to the author's
// friends. Fan-out failures never fail the write.
func (s *ReviewService) CreateReview(ctx context.Context, beerID, userID string, req CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	if _, err := s.reviews.GetBeerByID(ctx, beerID); err != nil {
		return nil, fmt.Errorf("beer not found: %w", err)
	}

	review := &models.Review{
		ID:        uuid.New().String(),
		UserID:    userID,
		BeerID:    beerID,
		Rating:    req.Rating,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if entry, err := s.reviews.GetFeedEntry(ctx, review.ID); err == nil {
		s.notifier.ReviewCreated(ctx, *entry)
	} else {
		log.Error().Err(err).Str("review_id", review.ID).Msg("Failed to load review for fan-out")
	}

	return review, nil
}
