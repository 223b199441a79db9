package services

import (
	"context"
	"time"

	"clsh-backend/internal/models"
)

// Store interfaces implemented by internal/repository. Services depend on
// these so tests can substitute fakes without a database.

// ClashStore persists clashes
type ClashStore interface {
	Create(ctx context.Context, clash *models.Clash) error
	GetBySlug(ctx context.Context, slug string) (*models.Clash, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Clash, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Clash, error)
	Update(ctx context.Context, clash *models.Clash) error
	Delete(ctx context.Context, id, ownerID string) error
}

// VoteStore persists votes
type VoteStore interface {
	Insert(ctx context.Context, vote *models.Vote) error
	ListByClash(ctx context.Context, clashID string) ([]*models.Vote, error)
}

// ViewStore persists page views
type ViewStore interface {
	Insert(ctx context.Context, view *models.View) error
	ListByClash(ctx context.Context, clashID string) ([]*models.View, error)
}

// UserStore persists users
type UserStore interface {
	UpsertByEmail(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// NutritionStore persists goals and food logs
type NutritionStore interface {
	EnsureDefaultGoals(ctx context.Context, goals *models.NutritionGoals) error
	GetGoals(ctx context.Context, userID string) (*models.NutritionGoals, error)
	UpsertGoals(ctx context.Context, goals *models.NutritionGoals) error
	InsertLog(ctx context.Context, entry *models.NutritionLog) error
	ListLogsByDay(ctx context.Context, userID string, day time.Time) ([]*models.NutritionLog, error)
}

// ClashCache is an optional read-through cache for public slug lookups.
// Implementations must treat misses and backend failures alike: return an
// error and let the caller fall through to the database.
type ClashCache interface {
	GetClash(ctx context.Context, slug string) (*models.Clash, error)
	SetClash(ctx context.Context, clash *models.Clash) error
	InvalidateClash(ctx context.Context, slug string) error
}

// ResultsNotifier receives successful votes, with the clash's refreshed
// per-option tallies, for live fan-out
type ResultsNotifier interface {
	NotifyVote(slug string, optionIndex int, counts map[int]int, totalVotes int)
}
