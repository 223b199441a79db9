package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"clsh-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClashRepository handles database operations for clashes. Options are
// stored as a JSONB array on the clash row; option identity only matters
// within its clash.
type ClashRepository struct {
	db *pgxpool.Pool
}

// NewClashRepository creates a new clash repository
func NewClashRepository(db *pgxpool.Pool) *ClashRepository {
	return &ClashRepository{db: db}
}

const clashColumns = `id, owner_id, title, description, slug, status, options,
	show_cta, cta_text, cta_url, show_results, expires_at, created_at, updated_at`

// Create creates a new clash
func (r *ClashRepository) Create(ctx context.Context, clash *models.Clash) error {
	options, err := json.Marshal(clash.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	query := `
		INSERT INTO clashes (id, owner_id, title, description, slug, status, options,
			show_cta, cta_text, cta_url, show_results, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.Exec(ctx, query,
		clash.ID, clash.OwnerID, clash.Title, clash.Description, clash.Slug,
		clash.Status, options, clash.ShowCTA, clash.CTAText, clash.CTAURL,
		clash.ShowResults, clash.ExpiresAt, clash.CreatedAt, clash.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clash: %w", err)
	}
	return nil
}

func scanClash(row pgx.Row) (*models.Clash, error) {
	var clash models.Clash
	var options []byte
	err := row.Scan(
		&clash.ID, &clash.OwnerID, &clash.Title, &clash.Description,
		&clash.Slug, &clash.Status, &options, &clash.ShowCTA,
		&clash.CTAText, &clash.CTAURL, &clash.ShowResults,
		&clash.ExpiresAt, &clash.CreatedAt, &clash.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &clash.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return &clash, nil
}

// GetBySlug retrieves a clash by its public slug
func (r *ClashRepository) GetBySlug(ctx context.Context, slug string) (*models.Clash, error) {
	query := `SELECT ` + clashColumns + ` FROM clashes WHERE slug = $1`
	clash, err := scanClash(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("failed to get clash by slug: %w", err)
	}
	return clash, nil
}

// GetByIDAndOwner retrieves a clash scoped to its owner. A clash owned by
// someone else scans as no rows, same as true absence.
func (r *ClashRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Clash, error) {
	query := `SELECT ` + clashColumns + ` FROM clashes WHERE id = $1 AND owner_id = $2`
	clash, err := scanClash(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to get clash: %w", err)
	}
	return clash, nil
}

// ListByOwner retrieves all clashes for an owner, newest first
func (r *ClashRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Clash, error) {
	query := `SELECT ` + clashColumns + ` FROM clashes WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clashes: %w", err)
	}
	defer rows.Close()

	var clashes []*models.Clash
	for rows.Next() {
		clash, err := scanClash(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clash: %w", err)
		}
		clashes = append(clashes, clash)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clashes: %w", err)
	}
	return clashes, nil
}

// Update rewrites the mutable fields of a clash, scoped to its owner
func (r *ClashRepository) Update(ctx context.Context, clash *models.Clash) error {
	options, err := json.Marshal(clash.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	query := `
		UPDATE clashes
		SET title = $3, description = $4, status = $5, options = $6,
			show_cta = $7, cta_text = $8, cta_url = $9, show_results = $10,
			expires_at = $11, updated_at = $12
		WHERE id = $1 AND owner_id = $2
	`
	result, err := r.db.Exec(ctx, query,
		clash.ID, clash.OwnerID, clash.Title, clash.Description, clash.Status,
		options, clash.ShowCTA, clash.CTAText, clash.CTAURL, clash.ShowResults,
		clash.ExpiresAt, clash.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update clash: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete deletes a clash scoped to its owner
func (r *ClashRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM clashes WHERE id = $1 AND owner_id = $2`
	result, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete clash: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
