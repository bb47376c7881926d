package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
)

// TokenDuration is how long an issued access token stays valid.
const TokenDuration = 30 * 24 * time.Hour

var (
	queries   *database.Queries
	jwtSecret []byte
)

// InitAuth wires the package to the database pool and signing secret.
func InitAuth(dbpool *pgxpool.Pool, secret string) error {
	if secret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is not set")
	}
	queries = database.New(dbpool)
	jwtSecret = []byte(secret)
	return nil
}

type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type SignupRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        database.User `json:"user"`
}

// SignupHandler registers a new account and returns a token immediately.
func SignupHandler(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name and email are required"})
	}
	if !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid email address"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Password must be at least 8 characters"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create account"})
	}

	user, err := queries.CreateUser(c.Request().Context(), database.CreateUserParams{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Email already registered"})
		}
		log.Error().Err(err).Msg("Failed to create user")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create account"})
	}

	token, err := issueToken(user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign token")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create account"})
	}

	log.Info().Str("user_id", user.UserID).Msg("New user registered")
	return c.JSON(http.StatusCreated, AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(TokenDuration.Seconds()),
		User:        user,
	})
}

// LoginHandler verifies credentials and issues a token. Unknown emails and
// wrong passwords get the same response so accounts cannot be enumerated.
func LoginHandler(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := queries.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Error().Err(err).Msg("Failed to fetch user for login")
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}

	token, err := issueToken(user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign token")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Login failed"})
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(TokenDuration.Seconds()),
		User:        user,
	})
}

// MeHandler returns the authenticated account.
func MeHandler(c echo.Context) error {
	user, ok := c.Get("user").(*database.User)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}
	return c.JSON(http.StatusOK, user)
}

func issueToken(user database.User) (string, error) {
	claims := &JwtCustomClaims{
		UserID: user.UserID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// JwtAuthMiddleware authenticates bearer tokens and stores the account and
// user_id on the request context.
func JwtAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		authHeader := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing bearer token"})
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			log.Debug().Err(err).Msg("Token validation failed")
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		claims, ok := token.Claims.(*JwtCustomClaims)
		if !ok || claims.UserID == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token claims"})
		}

		user, err := queries.GetUserByID(ctx, claims.UserID)
		if err != nil {
			log.Debug().Err(err).Str("user_id", claims.UserID).Msg("Token references unknown user")
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not found"})
		}

		c.Set("user", &user)
		c.Set("user_id", claims.UserID)
		return next(c)
	}
}
