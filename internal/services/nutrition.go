package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clsh-backend/internal/models"

	"github.com/google/uuid"
)

const llmTimeout = 20 * time.Second

// NutritionService handles food-text parsing and log/goal CRUD. Parsing is
// one HTTP call to a generateContent endpoint; failures surface
// immediately, no retries.
type NutritionService struct {
	repo       NutritionStore
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewNutritionService creates a new nutrition service
func NewNutritionService(repo NutritionStore, endpoint, apiKey string) *NutritionService {
	return &NutritionService{
		repo:       repo,
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: llmTimeout},
	}
}

type llmRequest struct {
	Contents []llmContent `json:"contents"`
}

type llmContent struct {
	Parts []llmPart `json:"parts"`
}

type llmPart struct {
	Text string `json:"text"`
}

type llmResponse struct {
	Candidates []struct {
		Content llmContent `json:"content"`
	} `json:"candidates"`
}

const foodPrompt = `You are a nutrition assistant. Analyze this food description and estimate its total macros.

FOOD: %s

Respond STRICTLY as JSON:
{
  "calories": <int>,
  "protein_g": <number>,
  "carbs_g": <number>,
  "fat_g": <number>,
  "items": ["<recognized food item>", ...]
}`

// ParseFood sends a food description to the model and returns its
// structured estimate
func (s *NutritionService) ParseFood(ctx context.Context, text string) (*models.FoodAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, validationErr("text", "must not be empty")
	}
	if s.endpoint == "" || s.apiKey == "" {
		return nil, fmt.Errorf("llm is not configured")
	}

	payload := llmRequest{
		Contents: []llmContent{{Parts: []llmPart{{Text: fmt.Sprintf(foodPrompt, text)}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read llm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm returned status %d", resp.StatusCode)
	}

	var llmResp llmResponse
	if err := json.Unmarshal(raw, &llmResp); err != nil {
		return nil, fmt.Errorf("failed to parse llm response: %w", err)
	}
	if len(llmResp.Candidates) == 0 || len(llmResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("llm returned no candidates")
	}

	answer := stripJSONFences(llmResp.Candidates[0].Content.Parts[0].Text)

	var analysis models.FoodAnalysis
	if err := json.Unmarshal([]byte(answer), &analysis); err != nil {
		return nil, fmt.Errorf("llm returned malformed JSON: %w", err)
	}
	return &analysis, nil
}

// stripJSONFences removes markdown code fences models like to wrap JSON in
func stripJSONFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// LogEntryInput carries the fields of a log-entry request
type LogEntryInput struct {
	Description string    `json:"description"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatG        float64   `json:"fat_g"`
	LoggedAt    time.Time `json:"logged_at"`
}

// LogEntry records one food entry for a user
func (s *NutritionService) LogEntry(ctx context.Context, userID string, input LogEntryInput) (*models.NutritionLog, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, validationErr("description", "must not be empty")
	}
	if input.Calories < 0 {
		return nil, validationErr("calories", "must not be negative")
	}

	now := time.Now()
	loggedAt := input.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = now
	}

	entry := &models.NutritionLog{
		ID:          uuid.New().String(),
		UserID:      userID,
		Description: strings.TrimSpace(input.Description),
		Calories:    input.Calories,
		ProteinG:    input.ProteinG,
		CarbsG:      input.CarbsG,
		FatG:        input.FatG,
		LoggedAt:    loggedAt,
		CreatedAt:   now,
	}
	if err := s.repo.InsertLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries retrieves a user's entries for one day
func (s *NutritionService) ListEntries(ctx context.Context, userID string, day time.Time) ([]*models.NutritionLog, error) {
	return s.repo.ListLogsByDay(ctx, userID, day)
}

// GetGoals retrieves a user's daily targets
func (s *NutritionService) GetGoals(ctx context.Context, userID string) (*models.NutritionGoals, error) {
	goals, err := s.repo.GetGoals(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return goals, nil
}

// UpdateGoals writes a user's daily targets
func (s *NutritionService) UpdateGoals(ctx context.Context, userID string, goals models.NutritionGoals) (*models.NutritionGoals, error) {
	if goals.DailyCalories <= 0 {
		return nil, validationErr("daily_calories", "must be positive")
	}
	goals.UserID = userID
	goals.UpdatedAt = time.Now()
	if err := s.repo.UpsertGoals(ctx, &goals); err != nil {
		return nil, err
	}
	return &goals, nil
}
