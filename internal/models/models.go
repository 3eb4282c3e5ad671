package models

import "time"

// User represents a user in the system
type User struct {
	ID        string    `json:"id"`
	Handle    string    `json:"handle"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Friendship represents a friendship edge between two users.
// The edge is stored once and treated as mutual: graph queries
// look at both directions.
type Friendship struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	BarID     *string   `json:"bar_id,omitempty"`
	EventID   *string   `json:"event_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendSummary is the minimal friend projection used by the
// feed filter-selection UI.
type FriendSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Bar represents a venue hosting events
type Bar struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Line1     string  `json:"line1"`
	Line2     string  `json:"line2"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
}

// Event represents a time-bounded happening at a bar.
// EndDate is nil for open-ended events.
type Event struct {
	ID          string     `json:"id"`
	BarID       string     `json:"bar_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Beer represents a beer that can be reviewed
type Beer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attendance joins a user to an event with a checked-in flag.
// At most one record exists per (user, event) pair.
type Attendance struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CheckedIn bool      `json:"checked_in"`
	CreatedAt time.Time `json:"created_at"`
}

// Attendee is an attendance row joined with its user, as returned
// by the event attendance listing.
type Attendee struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Handle    string `json:"handle"`
	CheckedIn bool   `json:"checked_in"`
}

// EventPicture represents a photo posted by a user at an event.
// ImageURL is nil until the client finishes the upload.
type EventPicture struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	ImageURL    *string   `json:"image_url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Review represents a beer review
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BeerID    string    `json:"beer_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PictureFeedEntry is an event picture joined with its event, bar
// and author, as read by the feed query.
type PictureFeedEntry struct {
	ID          string
	ImageURL    *string
	Description string
	CreatedAt   time.Time
	EventID     string
	EventName   string
	BarID       string
	BarName     string
	UserID      string
	UserHandle  string
}

// ReviewFeedEntry is a review joined with its beer and author,
// as read by the feed query.
type ReviewFeedEntry struct {
	ID         string
	Rating     int
	Text       string
	CreatedAt  time.Time
	BeerID     string
	BeerName   string
	UserID     string
	UserHandle string
}
