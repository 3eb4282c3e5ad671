package repository

import (
	"context"
	"errors"
	"fmt"

	"barhop-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository handles database operations for events and their bars
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT id, bar_id, name, description, start_date, end_date, created_at
		FROM events
		WHERE id = $1
	`
	var event models.Event
	err := r.db.QueryRow(ctx, query, id).Scan(
		&event.ID, &event.BarID, &event.Name, &event.Description,
		&event.StartDate, &event.EndDate, &event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// GetBarByID retrieves a bar by ID
func (r *EventRepository) GetBarByID(ctx context.Context, id string) (*models.Bar, error) {
	query := `
		SELECT id, name, latitude, longitude, line1, line2, city, country
		FROM bars
		WHERE id = $1
	`
	var bar models.Bar
	err := r.db.QueryRow(ctx, query, id).Scan(
		&bar.ID, &bar.Name, &bar.Latitude, &bar.Longitude,
		&bar.Line1, &bar.Line2, &bar.City, &bar.Country,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bar %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bar: %w", err)
	}
	return &bar, nil
}
