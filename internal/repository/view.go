package repository

import (
	"context"
	"fmt"

	"clsh-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ViewRepository handles database operations for page views. Views carry
// no uniqueness; every page load may insert a row.
type ViewRepository struct {
	db *pgxpool.Pool
}

// NewViewRepository creates a new view repository
func NewViewRepository(db *pgxpool.Pool) *ViewRepository {
	return &ViewRepository{db: db}
}

// Insert records a page view
func (r *ViewRepository) Insert(ctx context.Context, view *models.View) error {
	query := `
		INSERT INTO views (id, clash_id, device_fingerprint, referrer, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		view.ID, view.ClashID, view.DeviceFingerprint, view.Referrer,
		view.UserAgent, view.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert view: %w", err)
	}
	return nil
}

// ListByClash retrieves all views for a clash, oldest first
func (r *ViewRepository) ListByClash(ctx context.Context, clashID string) ([]*models.View, error) {
	query := `
		SELECT id, clash_id, device_fingerprint, referrer, user_agent, created_at
		FROM views
		WHERE clash_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, clashID)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer rows.Close()

	var views []*models.View
	for rows.Next() {
		var view models.View
		err := rows.Scan(
			&view.ID, &view.ClashID, &view.DeviceFingerprint,
			&view.Referrer, &view.UserAgent, &view.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		views = append(views, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating views: %w", err)
	}
	return views, nil
}
