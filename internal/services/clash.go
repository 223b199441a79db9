package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"clsh-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	slugLength      = 8
	slugChars       = "abcdefghjkmnpqrstuvwxyz23456789"
	slugMaxAttempts = 5
)

// ClashService handles clash-related business logic
type ClashService struct {
	clashes ClashStore
	cache   ClashCache
}

// NewClashService creates a new clash service. cache may be nil.
func NewClashService(clashes ClashStore, cache ClashCache) *ClashService {
	return &ClashService{
		clashes: clashes,
		cache:   cache,
	}
}

// OptionInput is one option of a create/update request
type OptionInput struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

// CreateClashInput carries the fields of a create request
type CreateClashInput struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Options       []OptionInput `json:"options"`
	Status        string        `json:"status"`
	ShowCTA       bool          `json:"show_cta"`
	CTAText       string        `json:"cta_text"`
	CTAURL        string        `json:"cta_url"`
	ShowResults   bool          `json:"show_results"`
	ExpiresInDays int           `json:"expires_in_days"`
}

// UpdateClashInput carries the fields of an update request
type UpdateClashInput struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Options       []OptionInput `json:"options"`
	Status        string        `json:"status"`
	ShowCTA       bool          `json:"show_cta"`
	CTAText       string        `json:"cta_text"`
	CTAURL        string        `json:"cta_url"`
	ShowResults   bool          `json:"show_results"`
	ExpiresInDays int           `json:"expires_in_days"`
}

func validateClashInput(title string, options []OptionInput, showCTA bool, ctaText, ctaURL, status string) error {
	if strings.TrimSpace(title) == "" {
		return validationErr("title", "must not be empty")
	}
	if len(options) < models.MinOptions || len(options) > models.MaxOptions {
		return validationErr("options", fmt.Sprintf("must have between %d and %d options", models.MinOptions, models.MaxOptions))
	}
	for i, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			return validationErr(fmt.Sprintf("options[%d].text", i), "must not be empty")
		}
	}
	if showCTA {
		if strings.TrimSpace(ctaText) == "" {
			return validationErr("cta_text", "required when show_cta is set")
		}
		u, err := url.Parse(ctaURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return validationErr("cta_url", "must be an absolute URL")
		}
	}
	switch status {
	case models.StatusDraft, models.StatusActive, models.StatusPaused, models.StatusCompleted:
	default:
		return validationErr("status", "unknown status")
	}
	return nil
}

func buildOptions(inputs []OptionInput) []models.Option {
	options := make([]models.Option, len(inputs))
	for i, in := range inputs {
		options[i] = models.Option{
			ID:       fmt.Sprintf("option-%d", i+1),
			Text:     strings.TrimSpace(in.Text),
			ImageURL: in.ImageURL,
		}
	}
	return options
}

// generateSlug generates a random public slug. Uniqueness is not
// pre-checked; the slug unique constraint arbitrates and Create retries.
func generateSlug() string {
	slug := make([]byte, slugLength)
	for i := range slug {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(slugChars))))
		slug[i] = slugChars[n.Int64()]
	}
	return string(slug)
}

// Create creates a new clash for an owner
func (s *ClashService) Create(ctx context.Context, ownerID string, input CreateClashInput) (*models.Clash, error) {
	status := input.Status
	if status == "" {
		status = models.StatusActive
	}
	if err := validateClashInput(input.Title, input.Options, input.ShowCTA, input.CTAText, input.CTAURL, status); err != nil {
		return nil, err
	}

	now := time.Now()
	var expiresAt *time.Time
	if input.ExpiresInDays > 0 {
		t := now.AddDate(0, 0, input.ExpiresInDays)
		expiresAt = &t
	}

	clash := &models.Clash{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      status,
		Options:     buildOptions(input.Options),
		ShowCTA:     input.ShowCTA,
		CTAText:     input.CTAText,
		CTAURL:      input.CTAURL,
		ShowResults: input.ShowResults,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 0; attempt < slugMaxAttempts; attempt++ {
		clash.Slug = generateSlug()
		err := s.clashes.Create(ctx, clash)
		if err == nil {
			return clash, nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create clash: %w", err)
		}
		log.Warn().Str("slug", clash.Slug).Msg("Slug collision, retrying")
	}
	return nil, fmt.Errorf("failed to generate unique slug after %d attempts", slugMaxAttempts)
}

// Get retrieves a clash scoped to its owner
func (s *ClashService) Get(ctx context.Context, id, ownerID string) (*models.Clash, error) {
	clash, err := s.clashes.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return clash, nil
}

// List retrieves all clashes for an owner
func (s *ClashService) List(ctx context.Context, ownerID string) ([]*models.Clash, error) {
	return s.clashes.ListByOwner(ctx, ownerID)
}

// GetPublicBySlug retrieves a clash by slug for the public voting page,
// cache-aside when a cache is configured
func (s *ClashService) GetPublicBySlug(ctx context.Context, slug string) (*models.Clash, error) {
	if s.cache != nil {
		if clash, err := s.cache.GetClash(ctx, slug); err == nil {
			return clash, nil
		}
	}

	clash, err := s.clashes.GetBySlug(ctx, slug)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetClash(ctx, clash); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Failed to cache clash")
		}
	}
	return clash, nil
}

// Update replaces the mutable fields of a clash, scoped to its owner
func (s *ClashService) Update(ctx context.Context, id, ownerID string, input UpdateClashInput) (*models.Clash, error) {
	clash, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = clash.Status
	}
	if err := validateClashInput(input.Title, input.Options, input.ShowCTA, input.CTAText, input.CTAURL, status); err != nil {
		return nil, err
	}

	now := time.Now()
	clash.Title = strings.TrimSpace(input.Title)
	clash.Description = input.Description
	clash.Status = status
	clash.Options = buildOptions(input.Options)
	clash.ShowCTA = input.ShowCTA
	clash.CTAText = input.CTAText
	clash.CTAURL = input.CTAURL
	clash.ShowResults = input.ShowResults
	if input.ExpiresInDays > 0 {
		t := now.AddDate(0, 0, input.ExpiresInDays)
		clash.ExpiresAt = &t
	}
	clash.UpdatedAt = now

	if err := s.clashes.Update(ctx, clash); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, clash.Slug)
	return clash, nil
}

// Delete deletes a clash scoped to its owner
func (s *ClashService) Delete(ctx context.Context, id, ownerID string) error {
	clash, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.clashes.Delete(ctx, id, ownerID); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	s.invalidate(ctx, clash.Slug)
	return nil
}

// SetOptionImage stores an image URL on one option, scoped to the owner
func (s *ClashService) SetOptionImage(ctx context.Context, id, ownerID, optionID, imageURL string) error {
	clash, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}

	found := false
	for i := range clash.Options {
		if clash.Options[i].ID == optionID {
			clash.Options[i].ImageURL = imageURL
			found = true
			break
		}
	}
	if !found {
		return ErrInvalidOption
	}

	clash.UpdatedAt = time.Now()
	if err := s.clashes.Update(ctx, clash); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	s.invalidate(ctx, clash.Slug)
	return nil
}

func (s *ClashService) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateClash(ctx, slug); err != nil {
		log.Warn().Err(err).Str("slug", slug).Msg("Failed to invalidate cached clash")
	}
}
