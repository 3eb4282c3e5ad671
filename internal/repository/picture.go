package repository

import (
	"context"
	"errors"
	"fmt"

	"barhop-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventPictureRepository handles database operations for event pictures
type EventPictureRepository struct {
	db *pgxpool.Pool
}

// NewEventPictureRepository creates a new event picture repository
func NewEventPictureRepository(db *pgxpool.Pool) *EventPictureRepository {
	return &EventPictureRepository{db: db}
}

// Create creates a new event picture
func (r *EventPictureRepository) Create(ctx context.Context, p *models.EventPicture) error {
	query := `
		INSERT INTO event_pictures (id, event_id, user_id, image_url, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.EventID, p.UserID, p.ImageURL, p.Description, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event picture: %w", err)
	}
	return nil
}

// UpdateImageURL sets the image URL after the client completes the upload
func (r *EventPictureRepository) UpdateImageURL(ctx context.Context, pictureID, imageURL string) error {
	query := `UPDATE event_pictures SET image_url = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, imageURL, pictureID)
	if err != nil {
		return fmt.Errorf("failed to update picture image_url: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("picture %s: %w", pictureID, ErrNotFound)
	}
	return nil
}

const pictureFeedSelect = `
	SELECT p.id, p.image_url, p.description, p.created_at,
	       e.id, e.name, b.id, b.name, u.id, u.handle
	FROM event_pictures p
	JOIN events e ON e.id = p.event_id
	JOIN bars b ON b.id = e.bar_id
	JOIN users u ON u.id = p.user_id
`

// GetFeedEntry retrieves a single picture joined with its event, bar
// and author, as needed to build a feed item after creation.
func (r *EventPictureRepository) GetFeedEntry(ctx context.Context, id string) (*models.PictureFeedEntry, error) {
	query := pictureFeedSelect + ` WHERE p.id = $1`
	var entry models.PictureFeedEntry
	err := r.db.QueryRow(ctx, query, id).Scan(
		&entry.ID, &entry.ImageURL, &entry.Description, &entry.CreatedAt,
		&entry.EventID, &entry.EventName, &entry.BarID, &entry.BarName,
		&entry.UserID, &entry.UserHandle,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("picture %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get picture feed entry: %w", err)
	}
	return &entry, nil
}

// ListFeed returns pictures authored by any of authorIDs, newest first,
// optionally restricted to one bar or one country. An empty author set
// yields an empty result.
func (r *EventPictureRepository) ListFeed(ctx context.Context, authorIDs []string, barID, country string) ([]*models.PictureFeedEntry, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	query := pictureFeedSelect + ` WHERE p.user_id = ANY($1)`
	args := []interface{}{authorIDs}

	if barID != "" {
		args = append(args, barID)
		query += fmt.Sprintf(" AND e.bar_id = $%d", len(args))
	}
	if country != "" {
		args = append(args, country)
		query += fmt.Sprintf(" AND b.country = $%d", len(args))
	}

	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list picture feed: %w", err)
	}
	defer rows.Close()

	var entries []*models.PictureFeedEntry
	for rows.Next() {
		var entry models.PictureFeedEntry
		err := rows.Scan(
			&entry.ID, &entry.ImageURL, &entry.Description, &entry.CreatedAt,
			&entry.EventID, &entry.EventName, &entry.BarID, &entry.BarName,
			&entry.UserID, &entry.UserHandle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan picture feed entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating picture feed: %w", err)
	}

	return entries, nil
}
