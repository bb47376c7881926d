package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/aiservice"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/utility"
)

// HealthProfileResponse is the stored profile plus the derived fields the
// clients display.
type HealthProfileResponse struct {
	database.HealthProfile
	BMI         *float64               `json:"bmi,omitempty"`
	WeightTrend *aiservice.WeightTrend `json:"weight_trend,omitempty"`
}

// GetHealthProfileHandler returns the caller's profile with derived BMI and
// 30-day weight trend.
func GetHealthProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	profile, err := queries.GetHealthProfile(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Health profile not found"})
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch health profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch health profile"})
	}

	history, err := queries.GetWeightHistory(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch weight history")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch health profile"})
	}

	return c.JSON(http.StatusOK, buildProfileResponse(profile, history))
}

// UpsertHealthProfileHandler creates or replaces the caller's profile.
func UpsertHealthProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	var req database.HealthProfile
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	req.UserID = userID

	if req.Age != nil && (*req.Age < 13 || *req.Age > 120) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Age must be between 13 and 120"})
	}
	if req.HeightCm != nil && (*req.HeightCm < 100 || *req.HeightCm > 250) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Height must be between 100 and 250 cm"})
	}
	if req.CurrentWeight != nil && (*req.CurrentWeight < 30 || *req.CurrentWeight > 300) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Weight must be between 30 and 300"})
	}
	switch req.WeightUnit {
	case "":
		req.WeightUnit = "kg"
	case "kg", "lbs":
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Weight unit must be kg or lbs"})
	}
	if req.ActivityLevel == "" {
		req.ActivityLevel = "moderately_active"
	}
	if req.ExperienceLevel == "" {
		req.ExperienceLevel = "beginner"
	}
	if req.FitnessGoals == nil {
		req.FitnessGoals = []string{}
	}
	if req.DietaryRestrictions == nil {
		req.DietaryRestrictions = []string{}
	}
	if req.Allergies == nil {
		req.Allergies = []string{}
	}
	if req.MedicalConditions == nil {
		req.MedicalConditions = []database.MedicalCondition{}
	}
	if req.Injuries == nil {
		req.Injuries = []database.Injury{}
	}

	profile, err := queries.UpsertHealthProfile(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to upsert health profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save health profile"})
	}

	history, err := queries.GetWeightHistory(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch weight history")
		history = nil
	}

	return c.JSON(http.StatusOK, buildProfileResponse(profile, history))
}

type addWeightRequest struct {
	Weight float64 `json:"weight" form:"weight"`
	Unit   string  `json:"unit" form:"unit"`
}

// AddWeightRecordHandler appends a weight measurement to the caller's
// history.
func AddWeightRecordHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	var req addWeightRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Weight <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Weight must be positive"})
	}
	switch req.Unit {
	case "":
		req.Unit = "kg"
	case "kg", "lbs":
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Weight unit must be kg or lbs"})
	}

	record, err := queries.AddWeightRecord(ctx, database.AddWeightRecordParams{
		UserID: userID,
		Weight: req.Weight,
		Unit:   req.Unit,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to add weight record")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to add weight record"})
	}

	return c.JSON(http.StatusCreated, record)
}

// GetWeightHistoryHandler returns the caller's weight records, newest first.
func GetWeightHistoryHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	history, err := queries.GetWeightHistory(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch weight history")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch weight history"})
	}
	if history == nil {
		history = []database.WeightRecord{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": history,
		"trend":   aiservice.ComputeWeightTrend(history, time.Now()),
	})
}

func buildProfileResponse(profile database.HealthProfile, history []database.WeightRecord) HealthProfileResponse {
	resp := HealthProfileResponse{
		HealthProfile: profile,
		WeightTrend:   aiservice.ComputeWeightTrend(history, time.Now()),
	}
	if profile.CurrentWeight != nil {
		kg := *profile.CurrentWeight
		if profile.WeightUnit == "lbs" {
			kg *= 0.453592
		}
		resp.BMI = aiservice.ComputeBMI(&kg, profile.HeightCm)
	}
	return resp
}
