package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
)

func postJSON(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestInitAuthRequiresSecret(t *testing.T) {
	assert.Error(t, InitAuth(nil, ""))
}

func TestSignupValidation(t *testing.T) {
	jwtSecret = []byte("test-secret")

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@b.com","password":"longenough"}`},
		{"missing email", `{"name":"Sam","password":"longenough"}`},
		{"bad email", `{"name":"Sam","email":"not-an-email","password":"longenough"}`},
		{"short password", `{"name":"Sam","email":"a@b.com","password":"short"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, SignupHandler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestIssueTokenRoundTrip(t *testing.T) {
	jwtSecret = []byte("test-secret")
	user := database.User{UserID: "u1", Email: "a@b.com", Name: "Sam"}

	tokenString, err := issueToken(user)
	require.NoError(t, err)

	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(*jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*JwtCustomClaims)
	require.True(t, ok)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(TokenDuration), claims.ExpiresAt.Time, time.Minute)
}

func TestJwtAuthMiddlewareRejectsMissingToken(t *testing.T) {
	jwtSecret = []byte("test-secret")
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler := JwtAuthMiddleware(func(echo.Context) error {
		t.Fatal("next handler must not run without a token")
		return nil
	})
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJwtAuthMiddlewareRejectsForgedToken(t *testing.T) {
	jwtSecret = []byte("test-secret")

	// Token signed with a different key.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaims{UserID: "u1"})
	tokenString, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()

	handler := JwtAuthMiddleware(func(echo.Context) error {
		t.Fatal("next handler must not run with a forged token")
		return nil
	})
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
