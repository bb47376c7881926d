package user

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/aiservice"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/utility"
)

type createWorkoutRequest struct {
	WorkoutDate     *time.Time          `json:"date" form:"date"`
	WorkoutType     string              `json:"type" form:"type"`
	Exercises       []database.Exercise `json:"exercises" form:"exercises"`
	DurationMinutes int32               `json:"duration" form:"duration"`
	CaloriesBurned  int32               `json:"calories_burned" form:"calories_burned"`
	Notes           string              `json:"notes" form:"notes"`
}

// CreateWorkoutHandler logs a session. When no calorie figure is supplied
// one is estimated from the exercises and the caller's body weight.
func CreateWorkoutHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	var req createWorkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.WorkoutType != "cardio" && req.WorkoutType != "resistance" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Workout type must be cardio or resistance"})
	}
	if req.DurationMinutes <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Duration must be positive"})
	}
	if req.CaloriesBurned < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Calories burned cannot be negative"})
	}

	workoutDate := time.Now()
	if req.WorkoutDate != nil {
		workoutDate = *req.WorkoutDate
	}
	if req.Exercises == nil {
		req.Exercises = []database.Exercise{}
	}

	if req.CaloriesBurned == 0 {
		req.CaloriesBurned = EstimateCalories(req.WorkoutType, req.Exercises, req.DurationMinutes, callerWeightKg(c))
	}

	workout, err := queries.CreateWorkout(ctx, database.CreateWorkoutParams{
		UserID:          userID,
		WorkoutDate:     workoutDate,
		WorkoutType:     req.WorkoutType,
		Exercises:       req.Exercises,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		Notes:           req.Notes,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create workout")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to log workout"})
	}

	return c.JSON(http.StatusCreated, workout)
}

// ListWorkoutsHandler returns recent sessions, newest first. ?limit caps
// the page size (default 20, max 100).
func ListWorkoutsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	limit := int32(20)
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 100"})
		}
		limit = int32(n)
	}

	workouts, err := queries.ListRecentWorkouts(ctx, database.ListRecentWorkoutsParams{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list workouts")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch workouts"})
	}
	if workouts == nil {
		workouts = []database.Workout{}
	}

	return c.JSON(http.StatusOK, workouts)
}

// GetWorkoutStatsHandler returns lifetime aggregates for the caller.
func GetWorkoutStatsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	row, err := queries.GetWorkoutStats(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch workout stats")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch stats"})
	}
	mealCount, err := queries.GetMealCount(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch meal count")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch stats"})
	}

	stats := aiservice.NewActivityStats(row, mealCount)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_workouts":           stats.TotalWorkouts,
		"total_meals":              stats.TotalMeals,
		"total_calories_burned":    stats.TotalCaloriesBurned,
		"avg_calories_per_workout": stats.AvgCaloriesPerWorkout,
		"type_preference":          stats.TypePreference,
		"cardio_count":             row.CardioCount,
		"resistance_count":         row.ResistanceCount,
	})
}

// callerWeightKg reads the caller's current weight in kg, or 0 when no
// profile exists.
func callerWeightKg(c echo.Context) float64 {
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return 0
	}
	profile, err := queries.GetHealthProfile(c.Request().Context(), userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0
	}
	if err != nil || profile.CurrentWeight == nil {
		return 0
	}
	kg := *profile.CurrentWeight
	if profile.WeightUnit == "lbs" {
		kg *= 0.453592
	}
	return kg
}
