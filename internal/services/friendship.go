package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barhop-backend/internal/models"
	"barhop-backend/internal/repository"

	"github.com/google/uuid"
)

// friendshipStore is the friendship repository as the service needs it.
type friendshipStore interface {
	Create(ctx context.Context, f *models.Friendship) error
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	FriendsOf(ctx context.Context, userID string) ([]models.FriendSummary, error)
}

// FriendshipService handles friendship creation. Friendship is
// mutual the moment the edge is created; there is no accept step.
type FriendshipService struct {
	friendships friendshipStore
	users       userSource
}

// NewFriendshipService creates a new friendship service
func NewFriendshipService(friendships friendshipStore, users userSource) *FriendshipService {
	return &FriendshipService{friendships: friendships, users: users}
}

// CreateFriendship creates a friendship edge between two users,
// optionally annotated with the bar or event where they met.
func (s *FriendshipService) CreateFriendship(ctx context.Context, userID, friendID string, barID, eventID *string) (*models.Friendship, error) {
	if userID == friendID {
		return nil, fmt.Errorf("cannot be friends with yourself")
	}

	if _, err := s.users.GetByID(ctx, friendID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("friend not found")
		}
		return nil, fmt.Errorf("failed to resolve friend: %w", err)
	}

	exists, err := s.friendships.AreFriends(ctx, userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("already friends")
	}

	friendship := &models.Friendship{
		ID:        uuid.New().String(),
		UserID:    userID,
		FriendID:  friendID,
		BarID:     barID,
		EventID:   eventID,
		CreatedAt: time.Now(),
	}

	if err := s.friendships.Create(ctx, friendship); err != nil {
		return nil, fmt.Errorf("failed to create friendship: %w", err)
	}

	return friendship, nil
}

// ListFriends lists the user's friends.
func (s *FriendshipService) ListFriends(ctx context.Context, userID string) ([]models.FriendSummary, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return s.friendships.FriendsOf(ctx, userID)
}
