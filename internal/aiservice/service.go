/*
Package aiservice generates personalized workout plans, meal plans and
weekly summaries through the Gemini API.

A request flows sanitizer -> context aggregator -> prompt composer ->
resilient executor. Each stage only trusts its own input handling: the
composer sanitizes every fragment it embeds, and the executor re-sanitizes
the assembled prompt before submission.
*/
package aiservice

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/config"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
)

// UsageCounters track AI traffic for the admin health surface.
type UsageCounters struct {
	Requests  atomic.Int64
	CacheHits atomic.Int64
	Fallbacks atomic.Int64
}

// UsageSnapshot is a point-in-time copy of the counters.
type UsageSnapshot struct {
	Requests  int64 `json:"requests"`
	CacheHits int64 `json:"cache_hits"`
	Fallbacks int64 `json:"fallbacks"`
}

// Service is the AI suggestion facade used by the HTTP handlers. Rate
// limiting happens at the route boundary, not here.
type Service struct {
	aggregator     *Aggregator
	composer       *Composer
	executor       *Executor
	cache          *SuggestionCache
	instructionMax int
	usage          UsageCounters
}

// New wires the suggestion pipeline. When apiKey is empty no invoker is
// constructed and every request degrades to a configuration-error message.
func New(q *database.Queries, cfg config.Config) *Service {
	var invoker ModelInvoker
	if cfg.GeminiAPIKey != "" {
		invoker = NewGeminiClient(cfg.GeminiAPIKey)
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, AI suggestions disabled")
	}
	return &Service{
		aggregator:     NewAggregator(q),
		composer:       NewComposer(cfg.Prompt),
		executor:       NewExecutor(invoker, cfg.Executor, cfg.Prompt.PayloadMax),
		cache:          NewSuggestionCache(cfg.SuggestionCacheTTL),
		instructionMax: cfg.Prompt.InstructionMax,
	}
}

// WorkoutSuggestion returns a personalized workout plan.
func (s *Service) WorkoutSuggestion(ctx context.Context, userID, instruction string) (string, error) {
	return s.suggest(ctx, userID, KindWorkout, instruction, 0, s.aggregator.BuildForWorkout)
}

// MealSuggestion returns a meal plan around targetCalories (0 = default).
func (s *Service) MealSuggestion(ctx context.Context, userID string, targetCalories int, instruction string) (string, error) {
	return s.suggest(ctx, userID, KindMeal, instruction, targetCalories, s.aggregator.BuildForMeal)
}

// WeeklySummary reviews the caller's last seven days.
func (s *Service) WeeklySummary(ctx context.Context, userID, instruction string) (string, error) {
	return s.suggest(ctx, userID, KindWeeklySummary, instruction, 0, s.aggregator.BuildForWeeklySummary)
}

func (s *Service) suggest(ctx context.Context, userID string, kind Kind, instruction string,
	targetCalories int, build func(context.Context, string) (AggregatedContext, error)) (string, error) {

	s.usage.Requests.Add(1)
	start := time.Now()

	cacheKey := s.cache.Key(userID, kind, Sanitize(instruction, s.instructionMax))
	if text, ok := s.cache.Get(cacheKey); ok {
		s.usage.CacheHits.Add(1)
		log.Debug().Str("user_id", userID).Str("kind", string(kind)).Msg("AI suggestion served from cache")
		return text, nil
	}

	agg, err := build(ctx, userID)
	if err != nil {
		return "", err
	}

	prompt, err := s.composer.Compose(ComposeInput{
		Kind:           kind,
		Context:        agg,
		Instruction:    instruction,
		TargetCalories: targetCalories,
	})
	if err != nil {
		return "", err
	}

	text := s.executor.Execute(ctx, prompt)
	if isFallback(text) {
		s.usage.Fallbacks.Add(1)
	} else {
		// Only real model output is worth replaying.
		s.cache.Set(cacheKey, text)
	}

	log.Info().
		Str("user_id", userID).
		Str("kind", string(kind)).
		Dur("elapsed", time.Since(start)).
		Bool("fallback", isFallback(text)).
		Msg("AI suggestion generated")
	return text, nil
}

// Usage snapshots the service's traffic counters.
func (s *Service) Usage() UsageSnapshot {
	return UsageSnapshot{
		Requests:  s.usage.Requests.Load(),
		CacheHits: s.usage.CacheHits.Load(),
		Fallbacks: s.usage.Fallbacks.Load(),
	}
}

// CachedSuggestions reports the live cache entry count.
func (s *Service) CachedSuggestions() int {
	return s.cache.Len()
}

func isFallback(text string) bool {
	switch text {
	case MsgUnavailable, MsgInvalidInput, MsgSlowService,
		MsgSafetyBlocked, MsgQuotaExceeded, MsgTemporarilyUnavailable:
		return true
	}
	return false
}
