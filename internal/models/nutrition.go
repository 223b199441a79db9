package models

import "time"

// NutritionGoals are per-user daily targets, one row per user
type NutritionGoals struct {
	UserID        string    `json:"user_id"`
	DailyCalories int       `json:"daily_calories"`
	ProteinG      float64   `json:"protein_g"`
	CarbsG        float64   `json:"carbs_g"`
	FatG          float64   `json:"fat_g"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NutritionLog is one logged food entry
type NutritionLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatG        float64   `json:"fat_g"`
	LoggedAt    time.Time `json:"logged_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// FoodAnalysis is the model's structured reading of a free-text food
// description
type FoodAnalysis struct {
	Calories int      `json:"calories"`
	ProteinG float64  `json:"protein_g"`
	CarbsG   float64  `json:"carbs_g"`
	FatG     float64  `json:"fat_g"`
	Items    []string `json:"items"`
}
