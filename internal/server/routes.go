package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/admin"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/auth"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/ratelimit"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/user"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/utility"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Platform"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(LoggerMiddleware)

	// Public routes
	e.POST("/signup", auth.SignupHandler)
	e.POST("/login", auth.LoginHandler)
	e.GET("/health", s.healthHandler)

	// Protected routes
	protected := e.Group("")
	protected.Use(auth.JwtAuthMiddleware)

	protected.GET("/auth/me", auth.MeHandler)

	// Health profile & weight tracking
	protected.GET("/health/profile", user.GetHealthProfileHandler)
	protected.PUT("/health/profile", user.UpsertHealthProfileHandler)
	protected.POST("/health/weight", user.AddWeightRecordHandler)
	protected.GET("/health/weight", user.GetWeightHistoryHandler)

	// Workout & meal logs
	protected.POST("/workouts", user.CreateWorkoutHandler)
	protected.GET("/workouts", user.ListWorkoutsHandler)
	protected.GET("/workouts/stats", user.GetWorkoutStatsHandler)
	protected.POST("/meals", user.CreateMealHandler)
	protected.GET("/meals", user.ListMealsHandler)

	// AI suggestion routes sit behind the per-caller rate limiter.
	ai := protected.Group("/ai", s.AIRateLimitMiddleware)
	ai.GET("/workout-suggestion", user.WorkoutSuggestionHandler)
	ai.GET("/meal-suggestion", user.MealSuggestionHandler)
	ai.GET("/weekly-summary", user.WeeklySummaryHandler)

	// Ops surface
	protected.GET("/admin/health", admin.GetServerHealthHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.Health())
}

// AIRateLimitMiddleware admits or rejects a request against the caller's
// sliding window before any model work happens.
func (s *Server) AIRateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := utility.GetUserIDFromContext(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		}

		decision, err := s.limiter.Admit(userID)
		if errors.Is(err, ratelimit.ErrMissingCaller) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		}
		if err != nil {
			log.Error().Err(err).Msg("Rate limiter failure")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		}

		if !decision.Allowed {
			c.Response().Header().Set("Retry-After", strconv.Itoa(decision.RetryAfterSeconds))
			return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
				"error":               "Too many AI requests. Please slow down.",
				"retry_after_seconds": decision.RetryAfterSeconds,
			})
		}

		c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		return next(c)
	}
}

// LoggerMiddleware threads a request-scoped logger carrying the request ID
// through the context.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		c.Set("logger", &logger)

		return next(c)
	}
}
