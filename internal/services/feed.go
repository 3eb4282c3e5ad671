package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"barhop-backend/internal/models"
	"barhop-backend/internal/repository"
)

// ErrUnknownUser is returned when a feed is requested for a user ID
// that does not resolve to an existing user.
var ErrUnknownUser = errors.New("unknown user")

// ScopeKind selects which content streams a feed read queries.
type ScopeKind int

const (
	// ScopeAll merges pictures and reviews from self and all friends.
	ScopeAll ScopeKind = iota
	// ScopeFriend narrows the visibility set to a single friend
	// (self excluded); both streams are queried.
	ScopeFriend
	// ScopeVenue returns pictures taken at one bar; reviews are
	// not queried.
	ScopeVenue
	// ScopeCountry returns pictures taken at bars in one country;
	// reviews are not queried.
	ScopeCountry
	// ScopeBeer returns reviews of one beer; pictures are not
	// queried.
	ScopeBeer
)

// FeedScope is the explicit filter for one feed read. Exactly one
// scope applies per request; the suppression of the off-scope content
// stream is spelled out on the kind constants instead of hiding in
// deliberately-empty queries.
type FeedScope struct {
	Kind     ScopeKind
	FriendID string
	BarID    string
	Country  string
	BeerID   string
}

// userSource is the subset of the user repository the feed needs.
type userSource interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// friendGraph is the read side of the friendship relation.
type friendGraph interface {
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	FriendsOf(ctx context.Context, userID string) ([]models.FriendSummary, error)
}

// pictureSource reads the event picture stream.
type pictureSource interface {
	ListFeed(ctx context.Context, authorIDs []string, barID, country string) ([]*models.PictureFeedEntry, error)
}

// reviewSource reads the beer review stream.
type reviewSource interface {
	ListFeed(ctx context.Context, authorIDs []string, beerID string) ([]*models.ReviewFeedEntry, error)
}

// FeedService assembles the per-user social feed
type FeedService struct {
	users       userSource
	friendships friendGraph
	pictures    pictureSource
	reviews     reviewSource
}

// NewFeedService creates a new feed service
func NewFeedService(users userSource, friendships friendGraph, pictures pictureSource, reviews reviewSource) *FeedService {
	return &FeedService{
		users:       users,
		friendships: friendships,
		pictures:    pictures,
		reviews:     reviews,
	}
}

// BuildFeed merges the content visible to userID under the given scope
// into a single list, newest first. The result is a snapshot computed
// on every call; nothing is cached.
func (s *FeedService) BuildFeed(ctx context.Context, userID string, scope FeedScope) ([]FeedItem, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	friends, err := s.friendships.FriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend ids: %w", err)
	}

	visibility := s.visibilitySet(userID, friends, scope)

	items := make([]FeedItem, 0)

	if scope.Kind != ScopeBeer && len(visibility) > 0 {
		pictures, err := s.pictures.ListFeed(ctx, visibility, scope.BarID, scope.Country)
		if err != nil {
			return nil, fmt.Errorf("failed to query pictures: %w", err)
		}
		for _, entry := range pictures {
			items = append(items, NewPictureItem(*entry))
		}
	}

	if scope.Kind != ScopeVenue && scope.Kind != ScopeCountry && len(visibility) > 0 {
		reviews, err := s.reviews.ListFeed(ctx, visibility, scope.BeerID)
		if err != nil {
			return nil, fmt.Errorf("failed to query reviews: %w", err)
		}
		for _, entry := range reviews {
			items = append(items, NewReviewItem(*entry))
		}
	}

	// Stable keeps per-source order for items sharing a timestamp.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt().After(items[j].CreatedAt())
	})

	return items, nil
}

// visibilitySet computes the author IDs a feed read may include:
// self plus all friends, or the single requested friend when the
// friend scope applies. A requested ID that is not actually a friend
// produces an empty set, not an error.
func (s *FeedService) visibilitySet(userID string, friends []string, scope FeedScope) []string {
	if scope.Kind == ScopeFriend {
		for _, id := range friends {
			if id == scope.FriendID {
				return []string{id}
			}
		}
		return nil
	}
	return append([]string{userID}, friends...)
}

// FriendsOf lists the requesting user's friends for the feed filter UI.
func (s *FeedService) FriendsOf(ctx context.Context, userID string) ([]models.FriendSummary, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return s.friendships.FriendsOf(ctx, userID)
}
