package database

import (
	"time"
)

// User is an account holder. PasswordHash never leaves the server.
type User struct {
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MedicalCondition is one entry of a profile's condition list (stored as jsonb).
type MedicalCondition struct {
	Condition string `json:"condition"`
	Severity  string `json:"severity,omitempty"` // mild | moderate | severe
	Notes     string `json:"notes,omitempty"`
}

// Injury is one entry of a profile's injury list (stored as jsonb).
type Injury struct {
	Description    string `json:"description"`
	AffectedArea   string `json:"affected_area,omitempty"`
	RecoveryStatus string `json:"recovery_status,omitempty"` // recovering | recovered | chronic
}

// HealthProfile holds the caller-maintained health record. Numeric fields are
// pointers so "not specified" is distinguishable from zero.
type HealthProfile struct {
	UserID              string             `json:"user_id"`
	Age                 *int32             `json:"age,omitempty"`
	Gender              *string            `json:"gender,omitempty"`
	HeightCm            *float64           `json:"height,omitempty"`
	CurrentWeight       *float64           `json:"current_weight,omitempty"`
	WeightUnit          string             `json:"weight_unit"`
	TargetWeight        *float64           `json:"target_weight,omitempty"`
	ActivityLevel       string             `json:"activity_level"`
	ExperienceLevel     string             `json:"experience_level"`
	WorkoutFrequency    *int32             `json:"workout_frequency,omitempty"`
	FitnessGoals        []string           `json:"fitness_goals"`
	DietaryRestrictions []string           `json:"dietary_restrictions"`
	Allergies           []string           `json:"allergies"`
	MedicalConditions   []MedicalCondition `json:"medical_conditions"`
	Injuries            []Injury           `json:"injuries"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// WeightRecord is one point of a profile's weight history.
type WeightRecord struct {
	RecordID   string    `json:"record_id"`
	UserID     string    `json:"-"`
	Weight     float64   `json:"weight"`
	Unit       string    `json:"unit"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Exercise is one movement within a workout (stored as jsonb).
type Exercise struct {
	Name string `json:"name"`
	// Resistance fields
	Sets   int32   `json:"sets,omitempty"`
	Reps   int32   `json:"reps,omitempty"`
	Weight float64 `json:"weight,omitempty"`
	// Cardio fields
	Duration float64 `json:"duration,omitempty"` // minutes
	Distance float64 `json:"distance,omitempty"` // km
}

// Workout is one logged session.
type Workout struct {
	WorkoutID       string     `json:"workout_id"`
	UserID          string     `json:"-"`
	WorkoutDate     time.Time  `json:"date"`
	WorkoutType     string     `json:"type"` // cardio | resistance
	Exercises       []Exercise `json:"exercises"`
	DurationMinutes int32      `json:"duration"`
	CaloriesBurned  int32      `json:"calories_burned"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// FoodItem is one component of a meal (stored as jsonb).
type FoodItem struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity,omitempty"` // e.g. "100g", "1 cup"
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
}

// Meal is one logged meal.
type Meal struct {
	MealID        string     `json:"meal_id"`
	UserID        string     `json:"-"`
	MealDate      time.Time  `json:"date"`
	Name          string     `json:"name"`
	FoodItems     []FoodItem `json:"food_items"`
	TotalCalories float64    `json:"total_calories"`
	TotalProtein  float64    `json:"total_protein,omitempty"`
	TotalCarbs    float64    `json:"total_carbs,omitempty"`
	TotalFat      float64    `json:"total_fat,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
