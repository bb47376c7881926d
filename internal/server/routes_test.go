package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/ratelimit"
)

func aiRequest(t *testing.T, s *Server, userID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ai/workout-suggestion", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}

	handler := s.AIRateLimitMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func newRateLimitedServer(max int) *Server {
	return &Server{
		limiter: ratelimit.New(ratelimit.Config{
			Window:      time.Minute,
			MaxRequests: max,
		}),
	}
}

func TestAIRateLimitMiddlewareAdmitsWithinQuota(t *testing.T) {
	s := newRateLimitedServer(2)

	assert.Equal(t, http.StatusOK, aiRequest(t, s, "u1").Code)
	assert.Equal(t, http.StatusOK, aiRequest(t, s, "u1").Code)
}

func TestAIRateLimitMiddlewareDeniesOverQuota(t *testing.T) {
	s := newRateLimitedServer(1)

	require.Equal(t, http.StatusOK, aiRequest(t, s, "u1").Code)

	rec := aiRequest(t, s, "u1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "retry_after_seconds")
}

func TestAIRateLimitMiddlewareIsPerCaller(t *testing.T) {
	s := newRateLimitedServer(1)

	require.Equal(t, http.StatusOK, aiRequest(t, s, "u1").Code)
	assert.Equal(t, http.StatusOK, aiRequest(t, s, "u2").Code)
}

func TestAIRateLimitMiddlewareRequiresIdentity(t *testing.T) {
	s := newRateLimitedServer(1)
	assert.Equal(t, http.StatusUnauthorized, aiRequest(t, s, "").Code)
}

func TestLoggerMiddlewareAssignsRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := LoggerMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.NotNil(t, c.Get("logger"))
}

func TestLoggerMiddlewarePreservesIncomingRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := LoggerMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}
