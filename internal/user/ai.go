package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/utility"
)

type suggestionRequest struct {
	// Request is the caller's optional free-text instruction.
	Request string `json:"request" form:"request" query:"request"`

	// TargetCalories only applies to meal suggestions; 0 means default.
	TargetCalories int `json:"target_calories" form:"target_calories" query:"target_calories"`
}

// WorkoutSuggestionHandler returns an AI-generated workout plan for the
// caller. An empty request gets the default plan.
func WorkoutSuggestionHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	var req suggestionRequest
	_ = c.Bind(&req)

	text, err := aiSvc.WorkoutSuggestion(ctx, userID, req.Request)
	if err != nil {
		utility.GetLogger(c).Error().Err(err).Str("user_id", userID).Msg("Workout suggestion failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate suggestion"})
	}

	return c.JSON(http.StatusOK, map[string]string{"suggestion": text})
}

// MealSuggestionHandler returns an AI-generated meal plan around the
// requested calorie target.
func MealSuggestionHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	var req suggestionRequest
	_ = c.Bind(&req)
	if req.TargetCalories < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "target_calories cannot be negative"})
	}

	text, err := aiSvc.MealSuggestion(ctx, userID, req.TargetCalories, req.Request)
	if err != nil {
		utility.GetLogger(c).Error().Err(err).Str("user_id", userID).Msg("Meal suggestion failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate suggestion"})
	}

	return c.JSON(http.StatusOK, map[string]string{"suggestion": text})
}

// WeeklySummaryHandler returns an AI-generated review of the caller's past
// seven days.
func WeeklySummaryHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	var req suggestionRequest
	_ = c.Bind(&req)

	text, err := aiSvc.WeeklySummary(ctx, userID, req.Request)
	if err != nil {
		utility.GetLogger(c).Error().Err(err).Str("user_id", userID).Msg("Weekly summary failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate summary"})
	}

	return c.JSON(http.StatusOK, map[string]string{"summary": text})
}
