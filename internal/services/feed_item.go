package services

import (
	"encoding/json"
	"time"

	"barhop-backend/internal/models"
)

// Wire type tags for feed items and real-time notifications.
const (
	TypeEventPicture = "event_picture"
	TypeBeerReview   = "beer_review"
	TypeNewFeedItem  = "new_feed_item"
)

// FeedItem is a transient projection of one content item for display.
// It is a closed sum with two cases, PictureItem and ReviewItem; the
// merge and sort step only needs the creation timestamp, everything
// else is carried by the case's own wire payload.
type FeedItem interface {
	json.Marshaler

	// CreatedAt returns the content item's creation timestamp.
	CreatedAt() time.Time

	// Notification returns the item's payload tagged for the
	// real-time channel.
	Notification() interface{}

	// feedItem keeps the sum closed.
	feedItem()
}

// PictureItem is the feed projection of an event picture
type PictureItem struct {
	entry models.PictureFeedEntry
}

// NewPictureItem builds a feed item from a picture feed entry
func NewPictureItem(entry models.PictureFeedEntry) PictureItem {
	return PictureItem{entry: entry}
}

type pictureWire struct {
	Type        string    `json:"type"`
	ImageURL    *string   `json:"image_url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	EventName   string    `json:"event_name"`
	UserName    string    `json:"user_name"`
	BarID       string    `json:"bar_id"`
	BarName     string    `json:"bar_name"`
	EventID     string    `json:"event_id"`
}

func (p PictureItem) wire(typ string) pictureWire {
	return pictureWire{
		Type:        typ,
		ImageURL:    p.entry.ImageURL,
		Description: p.entry.Description,
		CreatedAt:   p.entry.CreatedAt,
		EventName:   p.entry.EventName,
		UserName:    p.entry.UserHandle,
		BarID:       p.entry.BarID,
		BarName:     p.entry.BarName,
		EventID:     p.entry.EventID,
	}
}

// CreatedAt returns the picture's creation timestamp
func (p PictureItem) CreatedAt() time.Time { return p.entry.CreatedAt }

// MarshalJSON renders the item in the feed wire format
func (p PictureItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire(TypeEventPicture))
}

// Notification returns the item's real-time channel payload
func (p PictureItem) Notification() interface{} {
	return p.wire(TypeNewFeedItem)
}

func (PictureItem) feedItem() {}

// ReviewItem is the feed projection of a beer review
type ReviewItem struct {
	entry models.ReviewFeedEntry
}

// NewReviewItem builds a feed item from a review feed entry
func NewReviewItem(entry models.ReviewFeedEntry) ReviewItem {
	return ReviewItem{entry: entry}
}

type reviewWire struct {
	Type       string    `json:"type"`
	BeerName   string    `json:"beer_name"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
	UserName   string    `json:"user_name"`
	BeerID     string    `json:"beer_id"`
}

func (r ReviewItem) wire(typ string) reviewWire {
	return reviewWire{
		Type:       typ,
		BeerName:   r.entry.BeerName,
		Rating:     r.entry.Rating,
		ReviewText: r.entry.Text,
		CreatedAt:  r.entry.CreatedAt,
		UserName:   r.entry.UserHandle,
		BeerID:     r.entry.BeerID,
	}
}

// CreatedAt returns the review's creation timestamp
func (r ReviewItem) CreatedAt() time.Time { return r.entry.CreatedAt }

// MarshalJSON renders the item in the feed wire format
func (r ReviewItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire(TypeBeerReview))
}

// Notification returns the item's real-time channel payload
func (r ReviewItem) Notification() interface{} {
	return r.wire(TypeNewFeedItem)
}

func (ReviewItem) feedItem() {}
