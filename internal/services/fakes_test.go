package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clsh-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation mimics what pgx surfaces when a unique index rejects an
// insert
func uniqueViolation() error {
	return fmt.Errorf("failed to insert: %w", &pgconn.PgError{Code: "23505"})
}

type fakeClashStore struct {
	mu          sync.Mutex
	clashes     map[string]*models.Clash // keyed by id
	failCreates int                      // next N creates fail with a unique violation
	createCalls int
}

func newFakeClashStore(clashes ...*models.Clash) *fakeClashStore {
	s := &fakeClashStore{clashes: make(map[string]*models.Clash)}
	for _, c := range clashes {
		s.clashes[c.ID] = c
	}
	return s
}

func (s *fakeClashStore) Create(ctx context.Context, clash *models.Clash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.failCreates > 0 {
		s.failCreates--
		return uniqueViolation()
	}
	stored := *clash
	s.clashes[clash.ID] = &stored
	return nil
}

func (s *fakeClashStore) GetBySlug(ctx context.Context, slug string) (*models.Clash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clashes {
		if c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("failed to get clash by slug: %w", pgx.ErrNoRows)
}

func (s *fakeClashStore) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Clash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clashes[id]
	if !ok || c.OwnerID != ownerID {
		return nil, fmt.Errorf("failed to get clash: %w", pgx.ErrNoRows)
	}
	copied := *c
	return &copied, nil
}

func (s *fakeClashStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.Clash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Clash
	for _, c := range s.clashes {
		if c.OwnerID == ownerID {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *fakeClashStore) Update(ctx context.Context, clash *models.Clash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.clashes[clash.ID]
	if !ok || existing.OwnerID != clash.OwnerID {
		return pgx.ErrNoRows
	}
	stored := *clash
	s.clashes[clash.ID] = &stored
	return nil
}

func (s *fakeClashStore) Delete(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.clashes[id]
	if !ok || existing.OwnerID != ownerID {
		return pgx.ErrNoRows
	}
	delete(s.clashes, id)
	return nil
}

// fakeVoteStore enforces the (clash_id, device_fingerprint) unique index
// the way Postgres does: under a lock, first insert wins
type fakeVoteStore struct {
	mu    sync.Mutex
	votes []*models.Vote
	seen  map[string]bool
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{seen: make(map[string]bool)}
}

func (s *fakeVoteStore) Insert(ctx context.Context, vote *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := vote.ClashID + "|" + vote.DeviceFingerprint
	if s.seen[key] {
		return uniqueViolation()
	}
	s.seen[key] = true
	copied := *vote
	s.votes = append(s.votes, &copied)
	return nil
}

func (s *fakeVoteStore) ListByClash(ctx context.Context, clashID string) ([]*models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Vote
	for _, v := range s.votes {
		if v.ClashID == clashID {
			result = append(result, v)
		}
	}
	return result, nil
}

type fakeViewStore struct {
	mu    sync.Mutex
	views []*models.View
}

func (s *fakeViewStore) Insert(ctx context.Context, view *models.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *view
	s.views = append(s.views, &copied)
	return nil
}

func (s *fakeViewStore) ListByClash(ctx context.Context, clashID string) ([]*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.View
	for _, v := range s.views {
		if v.ClashID == clashID {
			result = append(result, v)
		}
	}
	return result, nil
}

func activeClash(id, ownerID, slug string, numOptions int) *models.Clash {
	options := make([]models.Option, numOptions)
	for i := range options {
		options[i] = models.Option{
			ID:   fmt.Sprintf("option-%d", i+1),
			Text: fmt.Sprintf("Option %d", i+1),
		}
	}
	now := time.Now()
	return &models.Clash{
		ID:        id,
		OwnerID:   ownerID,
		Title:     "Test clash",
		Slug:      slug,
		Status:    models.StatusActive,
		Options:   options,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
