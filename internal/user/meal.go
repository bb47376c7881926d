package user

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/utility"
)

type createMealRequest struct {
	MealDate      *time.Time          `json:"date" form:"date"`
	Name          string              `json:"name" form:"name"`
	FoodItems     []database.FoodItem `json:"food_items" form:"food_items"`
	TotalCalories float64             `json:"total_calories" form:"total_calories"`
	TotalProtein  float64             `json:"total_protein" form:"total_protein"`
	TotalCarbs    float64             `json:"total_carbs" form:"total_carbs"`
	TotalFat      float64             `json:"total_fat" form:"total_fat"`
}

// CreateMealHandler logs a meal. Missing totals are summed from the food
// items.
func CreateMealHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	var req createMealRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Meal name is required"})
	}
	if req.TotalCalories < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Calories cannot be negative"})
	}

	mealDate := time.Now()
	if req.MealDate != nil {
		mealDate = *req.MealDate
	}
	if req.FoodItems == nil {
		req.FoodItems = []database.FoodItem{}
	}

	if req.TotalCalories == 0 {
		for _, item := range req.FoodItems {
			req.TotalCalories += item.Calories
			req.TotalProtein += item.Protein
			req.TotalCarbs += item.Carbs
			req.TotalFat += item.Fat
		}
	}

	meal, err := queries.CreateMeal(ctx, database.CreateMealParams{
		UserID:        userID,
		MealDate:      mealDate,
		Name:          req.Name,
		FoodItems:     req.FoodItems,
		TotalCalories: req.TotalCalories,
		TotalProtein:  req.TotalProtein,
		TotalCarbs:    req.TotalCarbs,
		TotalFat:      req.TotalFat,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create meal")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to log meal"})
	}

	return c.JSON(http.StatusCreated, meal)
}

// ListMealsHandler returns logged meals, newest first. ?days restricts the
// range; omitted means everything.
func ListMealsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	var meals []database.Meal
	if raw := c.QueryParam("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 || days > 365 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 365"})
		}
		meals, err = queries.ListMealsSince(ctx, database.ListMealsSinceParams{
			UserID: userID,
			Since:  time.Now().AddDate(0, 0, -days),
		})
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to list meals")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch meals"})
		}
	} else {
		meals, err = queries.ListMeals(ctx, userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to list meals")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch meals"})
		}
	}
	if meals == nil {
		meals = []database.Meal{}
	}

	return c.JSON(http.StatusOK, meals)
}
