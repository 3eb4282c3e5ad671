package handlers

import (
	"errors"
	"net/http"

	"barhop-backend/internal/models"
	"barhop-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// scopeFromQuery maps the request's filter parameters onto one feed
// scope. Filters do not combine; the most specific content filter
// wins: beer_id > bar_id > country > friend_id.
func scopeFromQuery(r *http.Request) services.FeedScope {
	q := r.URL.Query()
	switch {
	case q.Get("beer_id") != "":
		return services.FeedScope{Kind: services.ScopeBeer, BeerID: q.Get("beer_id")}
	case q.Get("bar_id") != "":
		return services.FeedScope{Kind: services.ScopeVenue, BarID: q.Get("bar_id")}
	case q.Get("country") != "":
		return services.FeedScope{Kind: services.ScopeCountry, Country: q.Get("country")}
	case q.Get("friend_id") != "":
		return services.FeedScope{Kind: services.ScopeFriend, FriendID: q.Get("friend_id")}
	default:
		return services.FeedScope{Kind: services.ScopeAll}
	}
}

// GetFeed handles GET /api/v1/feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, "User ID is missing", http.StatusUnauthorized)
		return
	}

	items, err := h.feedService.BuildFeed(ctx, userID, scopeFromQuery(r))
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) {
			respondError(w, "Invalid user ID", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to build feed")
		respondError(w, "Failed to build feed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, items, http.StatusOK)
}

// GetFriends handles GET /api/v1/feed/friends
func (h *FeedHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, "User ID is missing", http.StatusUnauthorized)
		return
	}

	friends, err := h.feedService.FriendsOf(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) {
			respondError(w, "Invalid user ID", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friends")
		respondError(w, "Failed to list friends", http.StatusInternalServerError)
		return
	}

	if friends == nil {
		friends = []models.FriendSummary{}
	}
	respondJSON(w, friends, http.StatusOK)
}
