package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraph struct {
	friends map[string][]string
}

func (f *fakeGraph) FriendIDs(_ context.Context, userID string) ([]string, error) {
	return f.friends[userID], nil
}

type fakeAttendees struct {
	attendees map[string][]string
}

func (f *fakeAttendees) AttendeeIDs(_ context.Context, eventID string) ([]string, error) {
	return f.attendees[eventID], nil
}

type fakeResolver struct {
	handles map[string]string
}

func (f *fakeResolver) ResolveHandles(_ context.Context, handles []string) ([]string, error) {
	var ids []string
	for _, h := range handles {
		if id, ok := f.handles[h]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func TestExtractTagTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "two tags",
			text: "Great night with @alice and @bob_99!",
			want: []string{"alice", "bob_99"},
		},
		{
			name: "no tags",
			text: "Great night with everyone!",
			want: nil,
		},
		{
			name: "tag at start",
			text: "@carol check this out",
			want: []string{"carol"},
		},
		{
			name: "bare at sign",
			text: "meet me @ the bar",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTagTokens(tt.text))
		})
	}
}

func TestRecipientsForPicture(t *testing.T) {
	svc := NewFanoutService(
		&fakeGraph{friends: map[string][]string{"author": {"friend1", "friend2"}}},
		&fakeAttendees{attendees: map[string][]string{"event1": {"attendee1", "friend1", "author"}}},
		&fakeResolver{handles: map[string]string{"alice": "tagged1"}},
	)

	got, err := svc.RecipientsForPicture(context.Background(), "author", "event1", "with @alice and @ghost")
	require.NoError(t, err)

	// friends ∪ attendees ∪ tagged, author excluded, duplicates
	// collapsed, unknown handles dropped.
	assert.Equal(t, []string{"attendee1", "friend1", "friend2", "tagged1"}, got)
}

func TestRecipientsForPictureExcludesAuthorWhenTagged(t *testing.T) {
	svc := NewFanoutService(
		&fakeGraph{friends: map[string][]string{"author": {"friend1"}}},
		&fakeAttendees{attendees: map[string][]string{}},
		&fakeResolver{handles: map[string]string{"me": "author"}},
	)

	got, err := svc.RecipientsForPicture(context.Background(), "author", "event1", "posted by @me")
	require.NoError(t, err)
	assert.Equal(t, []string{"friend1"}, got)
}

func TestRecipientsForPictureIdempotent(t *testing.T) {
	svc := NewFanoutService(
		&fakeGraph{friends: map[string][]string{"author": {"friend2", "friend1"}}},
		&fakeAttendees{attendees: map[string][]string{"event1": {"attendee1"}}},
		&fakeResolver{handles: map[string]string{}},
	)

	first, err := svc.RecipientsForPicture(context.Background(), "author", "event1", "no tags here")
	require.NoError(t, err)
	second, err := svc.RecipientsForPicture(context.Background(), "author", "event1", "no tags here")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRecipientsForReview(t *testing.T) {
	svc := NewFanoutService(
		&fakeGraph{friends: map[string][]string{"author": {"friend2", "friend1"}}},
		&fakeAttendees{},
		&fakeResolver{},
	)

	got, err := svc.RecipientsForReview(context.Background(), "author")
	require.NoError(t, err)
	assert.Equal(t, []string{"friend1", "friend2"}, got)
}

func TestRecipientsForReviewNoFriends(t *testing.T) {
	svc := NewFanoutService(&fakeGraph{friends: map[string][]string{}}, &fakeAttendees{}, &fakeResolver{})

	got, err := svc.RecipientsForReview(context.Background(), "loner")
	require.NoError(t, err)
	assert.Empty(t, got)
}
