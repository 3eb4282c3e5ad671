package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/rs/zerolog/log"
)

var tagPattern = regexp.MustCompile(`@(\w+)`)

// ExtractTagTokens returns every @handle token in the text, in order
// of appearance. Tokens are not checked against existing users here;
// ResolveHandles does that in a second step.
func ExtractTagTokens(text string) []string {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, m[1])
	}
	return tokens
}

// handleResolver maps handle tokens to user IDs, dropping unknowns.
type handleResolver interface {
	ResolveHandles(ctx context.Context, handles []string) ([]string, error)
}

// attendeeSource lists the users attending an event.
type attendeeSource interface {
	AttendeeIDs(ctx context.Context, eventID string) ([]string, error)
}

// fanoutGraph is the friendship read the resolver needs.
type fanoutGraph interface {
	FriendIDs(ctx context.Context, userID string) ([]string, error)
}

// FanoutService computes the recipient set for newly created content.
// It is a pure function of persisted state: the same content item
// always yields the same set.
type FanoutService struct {
	friendships fanoutGraph
	attendances attendeeSource
	users       handleResolver
}

// NewFanoutService creates a new fan-out service
func NewFanoutService(friendships fanoutGraph, attendances attendeeSource, users handleResolver) *FanoutService {
	return &FanoutService{
		friendships: friendships,
		attendances: attendances,
		users:       users,
	}
}

// RecipientsForPicture computes who should be notified about a new
// event picture: the author's friends, the event's attendees and any
// users tagged in the description. The author is never included.
func (s *FanoutService) RecipientsForPicture(ctx context.Context, authorID, eventID, description string) ([]string, error) {
	recipients := make(map[string]struct{})

	friends, err := s.friendships.FriendIDs(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend ids: %w", err)
	}
	for _, id := range friends {
		recipients[id] = struct{}{}
	}

	attendees, err := s.attendances.AttendeeIDs(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendee ids: %w", err)
	}
	for _, id := range attendees {
		recipients[id] = struct{}{}
	}

	tokens := ExtractTagTokens(description)
	if len(tokens) > 0 {
		tagged, err := s.users.ResolveHandles(ctx, tokens)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tagged handles: %w", err)
		}
		if len(tagged) < len(tokens) {
			log.Debug().
				Strs("tokens", tokens).
				Int("resolved", len(tagged)).
				Msg("Some tagged handles did not resolve")
		}
		for _, id := range tagged {
			recipients[id] = struct{}{}
		}
	}

	delete(recipients, authorID)

	return sortedIDs(recipients), nil
}

// RecipientsForReview computes who should be notified about a new
// beer review: the author's friends, author excluded.
func (s *FanoutService) RecipientsForReview(ctx context.Context, authorID string) ([]string, error) {
	friends, err := s.friendships.FriendIDs(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend ids: %w", err)
	}

	recipients := make(map[string]struct{}, len(friends))
	for _, id := range friends {
		recipients[id] = struct{}{}
	}
	delete(recipients, authorID)

	return sortedIDs(recipients), nil
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
