package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clsh-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const jwtExpDays = 30

// Default daily targets written on first sign-in
const (
	defaultDailyCalories = 2000
	defaultProteinG      = 100
	defaultCarbsG        = 250
	defaultFatG          = 70
)

// UserService handles sessions and user accounts
type UserService struct {
	users     UserStore
	nutrition NutritionStore
	jwtSecret string
}

// NewUserService creates a new user service. nutrition may be nil.
func NewUserService(users UserStore, nutrition NutritionStore, jwtSecret string) *UserService {
	return &UserService{
		users:     users,
		nutrition: nutrition,
		jwtSecret: jwtSecret,
	}
}

// StartSession upserts the user keyed by email and issues a session token.
// Default nutrition goals are written best-effort: a failure there logs a
// warning and never fails session creation.
func (s *UserService) StartSession(ctx context.Context, email, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", validationErr("email", "must be a valid email address")
	}

	now := time.Now()
	user, err := s.users.UpsertByEmail(ctx, &models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to upsert user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	if s.nutrition != nil {
		goals := &models.NutritionGoals{
			UserID:        user.ID,
			DailyCalories: defaultDailyCalories,
			ProteinG:      defaultProteinG,
			CarbsG:        defaultCarbsG,
			FatG:          defaultFatG,
			UpdatedAt:     now,
		}
		if err := s.nutrition.EnsureDefaultGoals(ctx, goals); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to write default nutrition goals")
		}
	}

	return user, token, nil
}

// GenerateJWT generates a session token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a session token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}
