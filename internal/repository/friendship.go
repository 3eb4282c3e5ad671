package repository

import (
	"context"
	"fmt"

	"barhop-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendshipRepository handles database operations for friendship edges.
// An edge is stored once (user_id, friend_id) but every query treats it
// as symmetric.
type FriendshipRepository struct {
	db *pgxpool.Pool
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// Create creates a new friendship edge
func (r *FriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	query := `
		INSERT INTO friendships (id, user_id, friend_id, bar_id, event_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, f.ID, f.UserID, f.FriendID, f.BarID, f.EventID, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// FriendIDs returns all users with a friendship edge to userID,
// in either direction.
func (r *FriendshipRepository) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT DISTINCT CASE WHEN user_id = $1 THEN friend_id ELSE user_id END
		FROM friendships
		WHERE user_id = $1 OR friend_id = $1
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendships: %w", err)
	}

	return ids, nil
}

// AreFriends checks whether an edge exists between two users,
// in either direction.
func (r *FriendshipRepository) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID, otherID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// FriendsOf returns id and handle for every friend of userID.
func (r *FriendshipRepository) FriendsOf(ctx context.Context, userID string) ([]models.FriendSummary, error) {
	query := `
		SELECT u.id, u.handle
		FROM users u
		JOIN friendships f ON (f.friend_id = u.id AND f.user_id = $1)
			OR (f.user_id = u.id AND f.friend_id = $1)
		ORDER BY u.handle
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	defer rows.Close()

	var friends []models.FriendSummary
	for rows.Next() {
		var f models.FriendSummary
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}

	return friends, nil
}
