package repository

import (
	"context"
	"fmt"

	"clsh-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// VoteRepository handles database operations for votes
type VoteRepository struct {
	db *pgxpool.Pool
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{db: db}
}

// Insert records a vote. The votes_clash_fingerprint unique index rejects
// a second vote from the same device; the raw error is surfaced unwrapped
// in the chain so callers can detect the constraint violation.
func (r *VoteRepository) Insert(ctx context.Context, vote *models.Vote) error {
	query := `
		INSERT INTO votes (id, clash_id, option_index, device_fingerprint, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		vote.ID, vote.ClashID, vote.OptionIndex, vote.DeviceFingerprint,
		vote.UserAgent, vote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// ListByClash retrieves all votes for a clash, oldest first
func (r *VoteRepository) ListByClash(ctx context.Context, clashID string) ([]*models.Vote, error) {
	query := `
		SELECT id, clash_id, option_index, device_fingerprint, user_agent, created_at
		FROM votes
		WHERE clash_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, clashID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []*models.Vote
	for rows.Next() {
		var vote models.Vote
		err := rows.Scan(
			&vote.ID, &vote.ClashID, &vote.OptionIndex,
			&vote.DeviceFingerprint, &vote.UserAgent, &vote.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}
