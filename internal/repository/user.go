package repository

import (
	"context"
	"errors"
	"fmt"

	"barhop-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, handle, first_name, last_name, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Handle, user.FirstName, user.LastName, user.PushToken, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, handle, first_name, last_name, push_token, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Handle, &user.FirstName, &user.LastName, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// HandleExists checks if a handle is already taken
func (r *UserRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE handle = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, handle).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check handle existence: %w", err)
	}
	return exists, nil
}

// ResolveHandles maps handle tokens to user IDs. Handles that do not
// match any user are dropped from the result.
func (r *UserRepository) ResolveHandles(ctx context.Context, handles []string) ([]string, error) {
	if len(handles) == 0 {
		return nil, nil
	}

	query := `SELECT id FROM users WHERE handle = ANY($1)`
	rows, err := r.db.Query(ctx, query, handles)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve handles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return ids, nil
}

// PushTokens returns the registered push token for each of the given
// users. Users without a token are absent from the map.
func (r *UserRepository) PushTokens(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}

	query := `SELECT id, push_token FROM users WHERE id = ANY($1) AND push_token IS NOT NULL`
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get push tokens: %w", err)
	}
	defer rows.Close()

	tokens := make(map[string]string)
	for rows.Next() {
		var id, token string
		if err := rows.Scan(&id, &token); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens[id] = token
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push tokens: %w", err)
	}

	return tokens, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}
