package services

import (
	"context"
	"errors"
	"testing"

	"clsh-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	byEmail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*models.User)}
}

func (s *fakeUserStore) UpsertByEmail(ctx context.Context, user *models.User) (*models.User, error) {
	if existing, ok := s.byEmail[user.Email]; ok {
		existing.Name = user.Name
		existing.UpdatedAt = user.UpdatedAt
		copied := *existing
		return &copied, nil
	}
	stored := *user
	s.byEmail[user.Email] = &stored
	copied := stored
	return &copied, nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.New("user not found")
}

type failingGoalsStore struct {
	NutritionStore
}

func (s *failingGoalsStore) EnsureDefaultGoals(ctx context.Context, goals *models.NutritionGoals) error {
	return errors.New("storage down")
}

type recordingGoalsStore struct {
	NutritionStore
	goals []*models.NutritionGoals
}

func (s *recordingGoalsStore) EnsureDefaultGoals(ctx context.Context, goals *models.NutritionGoals) error {
	copied := *goals
	s.goals = append(s.goals, &copied)
	return nil
}

func TestStartSessionUpsertsByEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, nil, "secret")

	first, token1, err := svc.StartSession(context.Background(), "Ada@Example.com", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, token1)
	assert.Equal(t, "ada@example.com", first.Email)

	second, token2, err := svc.StartSession(context.Background(), "ada@example.com ", "Ada L.")
	require.NoError(t, err)
	assert.NotEmpty(t, token2)

	// Same account both times, refreshed name
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ada L.", second.Name)
}

func TestStartSessionRejectsBadEmail(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), nil, "secret")

	for _, email := range []string{"", "   ", "not-an-email"} {
		_, _, err := svc.StartSession(context.Background(), email, "X")
		assert.True(t, IsValidation(err), "email %q", email)
	}
}

func TestStartSessionWritesDefaultGoals(t *testing.T) {
	goals := &recordingGoalsStore{}
	svc := NewUserService(newFakeUserStore(), goals, "secret")

	user, _, err := svc.StartSession(context.Background(), "ada@example.com", "Ada")
	require.NoError(t, err)

	require.Len(t, goals.goals, 1)
	assert.Equal(t, user.ID, goals.goals[0].UserID)
	assert.Equal(t, defaultDailyCalories, goals.goals[0].DailyCalories)
}

func TestStartSessionSurvivesGoalsFailure(t *testing.T) {
	// Default-goal creation is the documented graceful-degradation path
	svc := NewUserService(newFakeUserStore(), &failingGoalsStore{}, "secret")

	user, token, err := svc.StartSession(context.Background(), "ada@example.com", "Ada")
	require.NoError(t, err)
	assert.NotNil(t, user)
	assert.NotEmpty(t, token)
}

func TestJWTRoundTrip(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), nil, "secret")

	token, err := svc.GenerateJWT("user-42")
	require.NoError(t, err)

	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	issuer := NewUserService(newFakeUserStore(), nil, "secret-a")
	verifier := NewUserService(newFakeUserStore(), nil, "secret-b")

	token, err := issuer.GenerateJWT("user-42")
	require.NoError(t, err)

	_, err = verifier.ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), nil, "secret")

	_, err := svc.ValidateJWT("not.a.token")
	assert.Error(t, err)
}
