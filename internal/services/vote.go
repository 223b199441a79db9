package services

import (
	"context"
	"fmt"
	"time"

	"clsh-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// VoteService records votes against clashes. Deduplication is delegated
// entirely to the database unique index on (clash_id, device_fingerprint):
// concurrent votes from one fingerprint race to insert and the first
// committer wins. There is deliberately no check-then-insert here.
type VoteService struct {
	clashes  ClashStore
	votes    VoteStore
	views    ViewStore
	notifier ResultsNotifier
	now      func() time.Time
}

// NewVoteService creates a new vote service. notifier may be nil.
func NewVoteService(clashes ClashStore, votes VoteStore, views ViewStore, notifier ResultsNotifier) *VoteService {
	return &VoteService{
		clashes:  clashes,
		votes:    votes,
		views:    views,
		notifier: notifier,
		now:      time.Now,
	}
}

// RecordVote attempts to record one vote for a clash identified by slug.
// Preconditions: the clash exists, is not expired, is not in a terminal
// status, and optionIndex addresses an existing option. A duplicate
// fingerprint surfaces as ErrAlreadyVoted with zero rows written.
func (s *VoteService) RecordVote(ctx context.Context, slug string, optionIndex int, fingerprint, userAgent string) error {
	if fingerprint == "" {
		return validationErr("device_fingerprint", "must not be empty")
	}

	clash, err := s.clashes.GetBySlug(ctx, slug)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load clash: %w", err)
	}

	if clash.Expired(s.now()) || clash.Status == models.StatusCompleted {
		return ErrExpired
	}
	if optionIndex < 0 || optionIndex >= len(clash.Options) {
		return ErrInvalidOption
	}

	vote := &models.Vote{
		ID:                uuid.New().String(),
		ClashID:           clash.ID,
		OptionIndex:       optionIndex,
		DeviceFingerprint: fingerprint,
		UserAgent:         userAgent,
		CreatedAt:         s.now(),
	}

	if err := s.votes.Insert(ctx, vote); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyVoted
		}
		return fmt.Errorf("failed to record vote: %w", err)
	}

	log.Info().
		Str("clash_id", clash.ID).
		Str("slug", slug).
		Int("option_index", optionIndex).
		Msg("Vote recorded")

	if s.notifier != nil {
		all, err := s.votes.ListByClash(ctx, clash.ID)
		if err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Skipping results broadcast")
		} else {
			counts := countByOption(len(clash.Options), all)
			total := 0
			for _, c := range counts {
				total += c
			}
			s.notifier.NotifyVote(slug, optionIndex, counts, total)
		}
	}
	return nil
}

// TrackView records a page view. Views are append-only facts with no
// uniqueness; a bogus clash id is caught by the foreign key rather than a
// pre-check and reported as not found.
func (s *VoteService) TrackView(ctx context.Context, clashID, fingerprint, referrer, userAgent string) error {
	view := &models.View{
		ID:                uuid.New().String(),
		ClashID:           clashID,
		DeviceFingerprint: fingerprint,
		Referrer:          referrer,
		UserAgent:         userAgent,
		CreatedAt:         s.now(),
	}
	if err := s.views.Insert(ctx, view); err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to track view: %w", err)
	}
	return nil
}
