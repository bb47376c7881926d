/*
Package config centralizes every tunable the service reads from the
environment. All values have working defaults so the binary boots with
nothing but database credentials and (optionally) a Gemini API key.
*/
package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// RateLimitConfig controls the per-caller sliding window gate in front of
// the AI endpoints.
type RateLimitConfig struct {
	// Window is the sliding window length.
	Window time.Duration

	// MaxRequests is the quota within one window.
	MaxRequests int

	// CleanupProbability is the chance [0,1] that an admission check also
	// sweeps idle callers out of the store. Kept injectable so tests can
	// force a sweep with 1.0.
	CleanupProbability float64
}

// ExecutorConfig controls the resilient Gemini call loop.
type ExecutorConfig struct {
	Retries        int
	AttemptTimeout time.Duration
	BackoffBase    time.Duration
}

// PromptConfig bounds every piece of text that ends up inside a prompt.
type PromptConfig struct {
	// HistoryEmbedMax caps serialized workout/meal history blocks.
	HistoryEmbedMax int

	// InstructionMax caps the caller's free-text request.
	InstructionMax int

	// PayloadMax caps the final prompt right before submission.
	PayloadMax int

	// CaloriesMin and CaloriesMax clamp a requested calorie target before
	// it is rendered into a meal prompt.
	CaloriesMin int
	CaloriesMax int
}

// Config is the full configuration surface of the service.
type Config struct {
	Port         int
	GeminiAPIKey string
	JWTSecret    string

	RateLimit RateLimitConfig
	Executor  ExecutorConfig
	Prompt    PromptConfig

	// SuggestionCacheTTL bounds how long an identical AI answer may be
	// replayed to the same caller.
	SuggestionCacheTTL time.Duration
}

// Load reads the environment (a .env file is honored via godotenv/autoload)
// and fills in defaults for anything unset.
func Load() Config {
	return Config{
		Port:         envInt("PORT", 8080),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		JWTSecret:    os.Getenv("SESSION_SECRET"),
		RateLimit: RateLimitConfig{
			Window:             envDurationMs("AI_RATE_WINDOW_MS", 60_000),
			MaxRequests:        envInt("AI_RATE_MAX_REQUESTS", 10),
			CleanupProbability: envFloat("AI_RATE_CLEANUP_PROBABILITY", 0.01),
		},
		Executor: ExecutorConfig{
			Retries:        envInt("AI_RETRIES", 3),
			AttemptTimeout: envDurationMs("AI_ATTEMPT_TIMEOUT_MS", 15_000),
			BackoffBase:    envDurationMs("AI_BACKOFF_MS", 1_000),
		},
		Prompt: PromptConfig{
			HistoryEmbedMax: envInt("AI_HISTORY_EMBED_MAX", 1500),
			InstructionMax:  envInt("AI_INSTRUCTION_MAX", 300),
			PayloadMax:      envInt("AI_PROMPT_MAX", 3000),
			CaloriesMin:     envInt("AI_CALORIES_MIN", 1200),
			CaloriesMax:     envInt("AI_CALORIES_MAX", 5000),
		},
		SuggestionCacheTTL: envDurationMs("AI_CACHE_TTL_MS", 30_000),
	}
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v < 0 || v > 1 {
		return fallback
	}
	return v
}

func envDurationMs(key string, fallbackMs int) time.Duration {
	return time.Duration(envInt(key, fallbackMs)) * time.Millisecond
}
