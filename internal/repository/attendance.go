package repository

import (
	"context"
	"errors"
	"fmt"

	"barhop-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttendanceRepository handles database operations for event attendances
type AttendanceRepository struct {
	db *pgxpool.Pool
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Get retrieves the attendance record for a (user, event) pair
func (r *AttendanceRepository) Get(ctx context.Context, userID, eventID string) (*models.Attendance, error) {
	query := `
		SELECT id, user_id, event_id, checked_in, created_at
		FROM attendances
		WHERE user_id = $1 AND event_id = $2
	`
	var a models.Attendance
	err := r.db.QueryRow(ctx, query, userID, eventID).Scan(
		&a.ID, &a.UserID, &a.EventID, &a.CheckedIn, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("attendance: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &a, nil
}

// Create creates a new attendance record. The unique (user_id, event_id)
// constraint keeps concurrent check-ins from producing duplicates.
func (r *AttendanceRepository) Create(ctx context.Context, a *models.Attendance) error {
	query := `
		INSERT INTO attendances (id, user_id, event_id, checked_in, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.UserID, a.EventID, a.CheckedIn, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	return nil
}

// AttendeeIDs returns the IDs of every user with an attendance record
// for the event.
func (r *AttendanceRepository) AttendeeIDs(ctx context.Context, eventID string) ([]string, error) {
	query := `SELECT user_id FROM attendances WHERE event_id = $1`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendee ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attendee id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendances: %w", err)
	}

	return ids, nil
}

// ListAttendees returns attendance rows joined with their users
func (r *AttendanceRepository) ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.handle, a.checked_in
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.created_at
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []models.Attendee
	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.UserID, &a.FirstName, &a.LastName, &a.Handle, &a.CheckedIn); err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendees: %w", err)
	}

	return attendees, nil
}
