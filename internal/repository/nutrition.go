package repository

import (
	"context"
	"fmt"
	"time"

	"clsh-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NutritionRepository handles database operations for nutrition goals and logs
type NutritionRepository struct {
	db *pgxpool.Pool
}

// NewNutritionRepository creates a new nutrition repository
func NewNutritionRepository(db *pgxpool.Pool) *NutritionRepository {
	return &NutritionRepository{db: db}
}

// EnsureDefaultGoals inserts default goals for a user if none exist yet
func (r *NutritionRepository) EnsureDefaultGoals(ctx context.Context, goals *models.NutritionGoals) error {
	query := `
		INSERT INTO nutrition_goals (user_id, daily_calories, protein_g, carbs_g, fat_g, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		goals.UserID, goals.DailyCalories, goals.ProteinG, goals.CarbsG,
		goals.FatG, goals.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure default goals: %w", err)
	}
	return nil
}

// GetGoals retrieves the goals for a user
func (r *NutritionRepository) GetGoals(ctx context.Context, userID string) (*models.NutritionGoals, error) {
	query := `
		SELECT user_id, daily_calories, protein_g, carbs_g, fat_g, updated_at
		FROM nutrition_goals
		WHERE user_id = $1
	`
	var goals models.NutritionGoals
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&goals.UserID, &goals.DailyCalories, &goals.ProteinG,
		&goals.CarbsG, &goals.FatG, &goals.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}
	return &goals, nil
}

// UpsertGoals writes the goals for a user
func (r *NutritionRepository) UpsertGoals(ctx context.Context, goals *models.NutritionGoals) error {
	query := `
		INSERT INTO nutrition_goals (user_id, daily_calories, protein_g, carbs_g, fat_g, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET daily_calories = EXCLUDED.daily_calories, protein_g = EXCLUDED.protein_g,
			carbs_g = EXCLUDED.carbs_g, fat_g = EXCLUDED.fat_g, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		goals.UserID, goals.DailyCalories, goals.ProteinG, goals.CarbsG,
		goals.FatG, goals.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert goals: %w", err)
	}
	return nil
}

// InsertLog records a food log entry
func (r *NutritionRepository) InsertLog(ctx context.Context, entry *models.NutritionLog) error {
	query := `
		INSERT INTO nutrition_logs (id, user_id, description, calories, protein_g, carbs_g, fat_g, logged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.UserID, entry.Description, entry.Calories,
		entry.ProteinG, entry.CarbsG, entry.FatG, entry.LoggedAt, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}
	return nil
}

// ListLogsByDay retrieves a user's log entries within a day, oldest first
func (r *NutritionRepository) ListLogsByDay(ctx context.Context, userID string, day time.Time) ([]*models.NutritionLog, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	query := `
		SELECT id, user_id, description, calories, protein_g, carbs_g, fat_g, logged_at, created_at
		FROM nutrition_logs
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.NutritionLog
	for rows.Next() {
		var entry models.NutritionLog
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Description, &entry.Calories,
			&entry.ProteinG, &entry.CarbsG, &entry.FatG, &entry.LoggedAt, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log entries: %w", err)
	}
	return entries, nil
}
