package repository

import (
	"context"
	"errors"
	"fmt"

	"barhop-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository handles database operations for beer reviews
type ReviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, beer_id, rating, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		review.ID, review.UserID, review.BeerID, review.Rating, review.Text, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetBeerByID retrieves a beer by ID
func (r *ReviewRepository) GetBeerByID(ctx context.Context, id string) (*models.Beer, error) {
	query := `SELECT id, name FROM beers WHERE id = $1`
	var beer models.Beer
	err := r.db.QueryRow(ctx, query, id).Scan(&beer.ID, &beer.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("beer %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get beer: %w", err)
	}
	return &beer, nil
}

const reviewFeedSelect = `
	SELECT r.id, r.rating, r.text, r.created_at,
	       b.id, b.name, u.id, u.handle
	FROM reviews r
	JOIN beers b ON b.id = r.beer_id
	JOIN users u ON u.id = r.user_id
`

// GetFeedEntry retrieves a single review joined with its beer and author
func (r *ReviewRepository) GetFeedEntry(ctx context.Context, id string) (*models.ReviewFeedEntry, error) {
	query := reviewFeedSelect + ` WHERE r.id = $1`
	var entry models.ReviewFeedEntry
	err := r.db.QueryRow(ctx, query, id).Scan(
		&entry.ID, &entry.Rating, &entry.Text, &entry.CreatedAt,
		&entry.BeerID, &entry.BeerName, &entry.UserID, &entry.UserHandle,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("review %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review feed entry: %w", err)
	}
	return &entry, nil
}

// ListFeed returns reviews authored by any of authorIDs, newest first,
// optionally restricted to one beer. An empty author set yields an
// empty result.
func (r *ReviewRepository) ListFeed(ctx context.Context, authorIDs []string, beerID string) ([]*models.ReviewFeedEntry, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	query := reviewFeedSelect + ` WHERE r.user_id = ANY($1)`
	args := []interface{}{authorIDs}

	if beerID != "" {
		args = append(args, beerID)
		query += fmt.Sprintf(" AND r.beer_id = $%d", len(args))
	}

	query += ` ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list review feed: %w", err)
	}
	defer rows.Close()

	var entries []*models.ReviewFeedEntry
	for rows.Next() {
		var entry models.ReviewFeedEntry
		err := rows.Scan(
			&entry.ID, &entry.Rating, &entry.Text, &entry.CreatedAt,
			&entry.BeerID, &entry.BeerName, &entry.UserID, &entry.UserHandle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review feed entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review feed: %w", err)
	}

	return entries, nil
}
