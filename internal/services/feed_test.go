package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"barhop-backend/internal/models"
	"barhop-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
}

type fakeFriendGraph struct {
	friends map[string][]string
}

func (f *fakeFriendGraph) FriendIDs(_ context.Context, userID string) ([]string, error) {
	return f.friends[userID], nil
}

func (f *fakeFriendGraph) FriendsOf(_ context.Context, userID string) ([]models.FriendSummary, error) {
	var out []models.FriendSummary
	for _, id := range f.friends[userID] {
		out = append(out, models.FriendSummary{ID: id, Name: "handle_" + id})
	}
	return out, nil
}

type fakePictures struct {
	entries []*models.PictureFeedEntry
	queries []pictureQuery
}

type pictureQuery struct {
	authorIDs []string
	barID     string
	country   string
}

func (f *fakePictures) ListFeed(_ context.Context, authorIDs []string, barID, country string) ([]*models.PictureFeedEntry, error) {
	f.queries = append(f.queries, pictureQuery{authorIDs: authorIDs, barID: barID, country: country})
	var out []*models.PictureFeedEntry
	for _, e := range f.entries {
		if !contains(authorIDs, e.UserID) {
			continue
		}
		if barID != "" && e.BarID != barID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeReviews struct {
	entries []*models.ReviewFeedEntry
}

func (f *fakeReviews) ListFeed(_ context.Context, authorIDs []string, beerID string) ([]*models.ReviewFeedEntry, error) {
	var out []*models.ReviewFeedEntry
	for _, e := range f.entries {
		if !contains(authorIDs, e.UserID) {
			continue
		}
		if beerID != "" && e.BeerID != beerID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func at(sec int) time.Time {
	return time.Date(2024, 11, 1, 20, 0, sec, 0, time.UTC)
}

func pictureAt(author string, sec int) *models.PictureFeedEntry {
	return &models.PictureFeedEntry{
		ID:         fmt.Sprintf("pic-%s-%d", author, sec),
		CreatedAt:  at(sec),
		EventID:    "event1",
		EventName:  "Oktoberfest",
		BarID:      "bar1",
		BarName:    "El Mesón",
		UserID:     author,
		UserHandle: "handle_" + author,
	}
}

func reviewAt(author string, sec int) *models.ReviewFeedEntry {
	return &models.ReviewFeedEntry{
		ID:         fmt.Sprintf("rev-%s-%d", author, sec),
		Rating:     4,
		Text:       "solid pour",
		CreatedAt:  at(sec),
		BeerID:     "beer1",
		BeerName:   "Stout",
		UserID:     author,
		UserHandle: "handle_" + author,
	}
}

func newFeedFixture(friends map[string][]string, pictures *fakePictures, reviews *fakeReviews, userIDs ...string) *FeedService {
	users := &fakeUsers{users: map[string]*models.User{}}
	for _, id := range userIDs {
		users.users[id] = &models.User{ID: id, Handle: "handle_" + id}
	}
	return NewFeedService(users, &fakeFriendGraph{friends: friends}, pictures, reviews)
}

func TestBuildFeedMergesNewestFirst(t *testing.T) {
	// u2 posted a photo at t=10 and a review at t=20; u1 follows u2.
	pictures := &fakePictures{entries: []*models.PictureFeedEntry{pictureAt("u2", 10)}}
	reviews := &fakeReviews{entries: []*models.ReviewFeedEntry{reviewAt("u2", 20)}}
	svc := newFeedFixture(map[string][]string{"u1": {"u2"}}, pictures, reviews, "u1", "u2")

	items, err := svc.BuildFeed(context.Background(), "u1", FeedScope{Kind: ScopeAll})
	require.NoError(t, err)
	require.Len(t, items, 2)

	_, isReview := items[0].(ReviewItem)
	_, isPicture := items[1].(PictureItem)
	assert.True(t, isReview, "review at t=20 should come first")
	assert.True(t, isPicture, "picture at t=10 should come second")
}

func TestBuildFeedUnknownUser(t *testing.T) {
	svc := newFeedFixture(nil, &fakePictures{}, &fakeReviews{})

	_, err := svc.BuildFeed(context.Background(), "ghost", FeedScope{Kind: ScopeAll})
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestBuildFeedEmptyForLoner(t *testing.T) {
	svc := newFeedFixture(nil, &fakePictures{}, &fakeReviews{}, "u1")

	items, err := svc.BuildFeed(context.Background(), "u1", FeedScope{Kind: ScopeAll})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBuildFeedClosureOverVisibilitySet(t *testing.T) {
	pictures := &fakePictures{entries: []*models.PictureFeedEntry{
		pictureAt("u1", 1), pictureAt("u2", 2), pictureAt("stranger", 3),
	}}
	reviews := &fakeReviews{entries: []*models.ReviewFeedEntry{
		reviewAt("u2", 4), reviewAt("stranger", 5),
	}}
	svc := newFeedFixture(map[string][]string{"u1": {"u2"}}, pictures, reviews, "u1", "u2", "stranger")

	items, err := svc.BuildFeed(context.Background(), "u1", FeedScope{Kind: ScopeAll})
	require.NoError(t, err)
	require.Len(t, items, 3)

	for _, item := range items {
		data, err := json.Marshal(item)
		require.NoError(t, err)
		var wire struct {
			UserName string `json:"user_name"`
		}
		require.NoError(t, json.Unmarshal(data, &wire))
		assert.Contains(t, []string{"handle_u1", "handle_u2"}, wire.UserName)
	}
}

func TestBuildFeedBeerScopeSuppressesPictures(t *testing.T) {
	pictures := &fakePictures{entries: []*models.PictureFeedEntry{pictureAt("u2", 10)}}
	reviews := &fakeReviews{entries: []*models.ReviewFeedEntry{reviewAt("u2", 20)}}
	svc := newFeedFixture(map[string][]string{"u1": {"u2"}}, pictures, reviews, "u1", "u2")

	items, err := svc.BuildFeed(context.Background(), "u1", FeedScope{Kind: ScopeBeer, BeerID: "beer1"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, isReview := items[0].(ReviewItem)
	assert.True(t, isReview)
	assert.Empty(t, pictures.queries, "picture stream must not be queried under the beer scope")
}

func TestBuildFeedVenueScopeSuppressesReviews(t *testing.T) {
	pictures := &fakePictures{entries: []*models.PictureFeedEntry{pictureAt("u2", 10)}}
	reviews := &fakeReviews{entries: []*models.ReviewFeedEntry{reviewAt("u2", 20)}}
	svc := newFeedFixture(map[string][]string{"u1": {"u2"}}, pictures, reviews, "u1", "u2")

	items, err := svc.BuildFeed(context.Background(), "u1", FeedScope{Kind: ScopeVenue, BarID: "bar1"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, isPicture := items[0].(PictureItem)
	assert.True(t, isPicture)
	require.Len(t, pictures.queries, 1)
	assert.Equal(t, "bar1", pictures.queries[0].barID)
}

func TestBuildFeedFriendScopeNarrowsVisibility(t *testing.T) {
	pictures := &fakePictures{entries: []*models.PictureFeedEntry{
		pictureAt("u1", 1), pictureAt("u2", 2), pictureAt("u3", 3),
	}}
	svc := newFeedFixture(map[string][]string{"u1": {"u2", "u3"}}, pictures, &fakeReviews{}, "u1", "u2", "u3")

	items, err := svc.BuildFeed(context.Background(), "u1", FeedScope{Kind: ScopeFriend, FriendID: "u2"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Self is excluded once a friend filter applies.
	require.Len(t, pictures.queries, 1)
	assert.Equal(t, []string{"u2"}, pictures.queries[0].authorIDs)
}

func TestBuildFeedFriendScopeWithNonFriend(t *testing.T) {
	pictures := &fakePictures{entries: []*models.PictureFeedEntry{pictureAt("stranger", 1)}}
	svc := newFeedFixture(map[string][]string{"u1": {"u2"}}, pictures, &fakeReviews{}, "u1", "u2", "stranger")

	items, err := svc.BuildFeed(context.Background(), "u1", FeedScope{Kind: ScopeFriend, FriendID: "stranger"})
	require.NoError(t, err)
	assert.Empty(t, items, "a non-friend filter id matches nothing, it is not an error")
	assert.Empty(t, pictures.queries, "an empty visibility set skips the query")
}

func TestBuildFeedStableTieBreak(t *testing.T) {
	pictures := &fakePictures{entries: []*models.PictureFeedEntry{pictureAt("u1", 10)}}
	reviews := &fakeReviews{entries: []*models.ReviewFeedEntry{reviewAt("u1", 10)}}
	svc := newFeedFixture(nil, pictures, reviews, "u1")

	items, err := svc.BuildFeed(context.Background(), "u1", FeedScope{Kind: ScopeAll})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Pictures are appended before reviews; a stable sort keeps that
	// order for equal timestamps.
	_, isPicture := items[0].(PictureItem)
	assert.True(t, isPicture)
}

func TestFeedItemWireFormat(t *testing.T) {
	item := NewPictureItem(*pictureAt("u1", 1))
	data, err := json.Marshal(item)
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "event_picture", wire["type"])
	assert.Equal(t, "handle_u1", wire["user_name"])
	assert.Nil(t, wire["image_url"], "missing image marshals as null, the item is not dropped")

	review := NewReviewItem(*reviewAt("u1", 1))
	data, err = json.Marshal(review)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "beer_review", wire["type"])
	assert.Equal(t, float64(4), wire["rating"])

	notif, ok := review.Notification().(reviewWire)
	require.True(t, ok)
	assert.Equal(t, "new_feed_item", notif.Type)
}

func TestFriendsOf(t *testing.T) {
	svc := newFeedFixture(map[string][]string{"u1": {"u2"}}, &fakePictures{}, &fakeReviews{}, "u1", "u2")

	friends, err := svc.FriendsOf(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "u2", friends[0].ID)

	_, err = svc.FriendsOf(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownUser)
}
