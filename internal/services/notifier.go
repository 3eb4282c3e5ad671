package services

import (
	"context"
	"fmt"

	"barhop-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// pushTokenSource looks up registered push tokens for a recipient set.
type pushTokenSource interface {
	PushTokens(ctx context.Context, userIDs []string) (map[string]string, error)
}

// FeedNotifier runs the post-write side-effect pipeline: resolve the
// recipient set, publish a new_feed_item payload to each recipient's
// real-time channel and dispatch push notifications. Every failure in
// this pipeline is logged and dropped; it never propagates to the
// write that triggered it.
type FeedNotifier struct {
	fanout *FanoutService
	hub    Broadcaster
	push   PushSender
	users  pushTokenSource
}

// NewFeedNotifier creates a new feed notifier
func NewFeedNotifier(fanout *FanoutService, hub Broadcaster, push PushSender, users pushTokenSource) *FeedNotifier {
	return &FeedNotifier{
		fanout: fanout,
		hub:    hub,
		push:   push,
		users:  users,
	}
}

// PictureCreated fans out a freshly persisted event picture.
func (n *FeedNotifier) PictureCreated(ctx context.Context, entry models.PictureFeedEntry) {
	recipients, err := n.fanout.RecipientsForPicture(ctx, entry.UserID, entry.EventID, entry.Description)
	if err != nil {
		log.Error().Err(err).Str("picture_id", entry.ID).Msg("Failed to resolve picture recipients")
		return
	}

	item := NewPictureItem(entry)
	n.deliver(ctx, recipients, item,
		"New photo from "+entry.UserHandle,
		fmt.Sprintf("%s posted a photo at %s.", entry.UserHandle, entry.EventName),
		map[string]string{"screen": "EventDetails", "event_id": entry.EventID},
	)
}

// ReviewCreated fans out a freshly persisted beer review.
func (n *FeedNotifier) ReviewCreated(ctx context.Context, entry models.ReviewFeedEntry) {
	recipients, err := n.fanout.RecipientsForReview(ctx, entry.UserID)
	if err != nil {
		log.Error().Err(err).Str("review_id", entry.ID).Msg("Failed to resolve review recipients")
		return
	}

	item := NewReviewItem(entry)
	n.deliver(ctx, recipients, item,
		"New review from "+entry.UserHandle,
		fmt.Sprintf("%s rated %s %d/5.", entry.UserHandle, entry.BeerName, entry.Rating),
		map[string]string{"screen": "BeerDetails", "beer_id": entry.BeerID},
	)
}

// deliver publishes the item to every recipient's channel in order,
// then pushes to the recipients that registered a device token.
func (n *FeedNotifier) deliver(ctx context.Context, recipients []string, item FeedItem, title, body string, data map[string]string) {
	payload := item.Notification()
	for _, recipient := range recipients {
		n.hub.Publish(recipient, payload)
	}

	tokens, err := n.users.PushTokens(ctx, recipients)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load push tokens")
		return
	}
	for userID, deviceToken := range tokens {
		if err := n.push.Send(ctx, deviceToken, title, body, data); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send push notification")
		}
	}
}
