package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barhop-backend/internal/models"
	"barhop-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CheckInStatus is the outcome of a check-in attempt.
type CheckInStatus int

const (
	// CheckInConfirmed means the attendance record was created now.
	CheckInConfirmed CheckInStatus = iota
	// CheckInAlreadyConfirmed means the user had already checked in;
	// the attempt is a no-op.
	CheckInAlreadyConfirmed
)

// attendanceStore is the attendance repository as the check-in
// state machine needs it.
type attendanceStore interface {
	Get(ctx context.Context, userID, eventID string) (*models.Attendance, error)
	Create(ctx context.Context, a *models.Attendance) error
	ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error)
}

// attendanceUserSource resolves users and push tokens for check-in
// notifications.
type attendanceUserSource interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	PushTokens(ctx context.Context, userIDs []string) (map[string]string, error)
}

// venueSource resolves the bar hosting an event, for notification copy.
type venueSource interface {
	GetBarByID(ctx context.Context, id string) (*models.Bar, error)
}

// AttendanceService handles event check-ins. The state machine per
// (user, event) pair is {no_record, checked_in}: the first attempt
// creates the record, a repeat reports already-confirmed, and there
// is no transition back.
type AttendanceService struct {
	attendances attendanceStore
	events      eventSource
	bars        venueSource
	users       attendanceUserSource
	friendships fanoutGraph
	push        PushSender
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	attendances attendanceStore,
	events eventSource,
	bars venueSource,
	users attendanceUserSource,
	friendships fanoutGraph,
	push PushSender,
) *AttendanceService {
	return &AttendanceService{
		attendances: attendances,
		events:      events,
		bars:        bars,
		users:       users,
		friendships: friendships,
		push:        push,
	}
}

// CheckIn records the user's attendance at an event. Re-checking in
// is idempotent and reports CheckInAlreadyConfirmed.
func (s *AttendanceService) CheckIn(ctx context.Context, eventID, userID string) (CheckInStatus, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("event not found: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("user not found: %w", err)
	}

	existing, err := s.attendances.Get(ctx, userID, eventID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("failed to check attendance: %w", err)
	}
	if existing != nil && existing.CheckedIn {
		return CheckInAlreadyConfirmed, nil
	}

	attendance := &models.Attendance{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   eventID,
		CheckedIn: true,
		CreatedAt: time.Now(),
	}
	if err := s.attendances.Create(ctx, attendance); err != nil {
		return 0, fmt.Errorf("failed to create attendance: %w", err)
	}

	s.notifyCheckIn(ctx, user, event)

	return CheckInConfirmed, nil
}

// ListAttendees lists everyone attending the event.
func (s *AttendanceService) ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}
	return s.attendances.ListAttendees(ctx, eventID)
}

// notifyCheckIn pushes a confirmation to the attendee and tells their
// friends. Push failures are logged and dropped.
func (s *AttendanceService) notifyCheckIn(ctx context.Context, user *models.User, event *models.Event) {
	data := map[string]string{"screen": "EventDetails", "event_id": event.ID}

	// The venue name is copy only; a lookup failure falls back to the
	// bare event name.
	where := event.Name
	if bar, err := s.bars.GetBarByID(ctx, event.BarID); err == nil {
		where = fmt.Sprintf("%s at %s", event.Name, bar.Name)
	} else {
		log.Error().Err(err).Str("bar_id", event.BarID).Msg("Failed to resolve bar for check-in notification")
	}

	if user.PushToken != nil {
		err := s.push.Send(ctx, *user.PushToken,
			"You are checked in!",
			fmt.Sprintf("See you at %s.", where),
			data,
		)
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to push check-in confirmation")
		}
	}

	friends, err := s.friendships.FriendIDs(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to get friends for check-in notification")
		return
	}

	tokens, err := s.users.PushTokens(ctx, friends)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load push tokens for check-in notification")
		return
	}

	for friendID, deviceToken := range tokens {
		err := s.push.Send(ctx, deviceToken,
			"A friend just checked in to an event!",
			fmt.Sprintf("%s will be at %s.", user.Handle, where),
			data,
		)
		if err != nil {
			log.Error().Err(err).Str("user_id", friendID).Msg("Failed to push check-in notification")
		}
	}
}
