package aiservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/config"
)

// Fallback messages returned to callers in place of model output. The
// executor never surfaces an error: every failure path maps to one of these.
const (
	MsgUnavailable            = "AI Service Unavailable. Please configure GEMINI_API_KEY."
	MsgInvalidInput           = "Invalid input provided."
	MsgSlowService            = "AI service is currently slow. Please try again."
	MsgSafetyBlocked          = "Response blocked due to safety filters. Please rephrase your request."
	MsgQuotaExceeded          = "AI service quota exceeded. Please try again later."
	MsgTemporarilyUnavailable = "AI Service temporarily unavailable. Please try again later."
)

// minUsableResponseLen is the shortest model reply treated as real content.
// Anything shorter is classified as an empty response and retried.
const minUsableResponseLen = 10

// Executor wraps a ModelInvoker in the resilience policy: per-attempt
// timeouts, exponential backoff between retries, and terminal classification
// of safety and quota failures.
type Executor struct {
	invoker        ModelInvoker // nil when no API key is configured
	retries        int
	attemptTimeout time.Duration
	backoffBase    time.Duration
	payloadMax     int

	// sleep is swapped out by tests to observe the backoff schedule.
	sleep func(time.Duration)
}

// NewExecutor builds an Executor. invoker may be nil; Execute then degrades
// to a configuration-error message without touching the network.
func NewExecutor(invoker ModelInvoker, cfg config.ExecutorConfig, payloadMax int) *Executor {
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	return &Executor{
		invoker:        invoker,
		retries:        retries,
		attemptTimeout: cfg.AttemptTimeout,
		backoffBase:    cfg.BackoffBase,
		payloadMax:     payloadMax,
		sleep:          time.Sleep,
	}
}

// Execute submits prompt to the model and always returns displayable text.
// The prompt is re-sanitized here; the executor does not assume upstream
// composition already did so.
func (e *Executor) Execute(ctx context.Context, prompt string) string {
	if e.invoker == nil {
		return MsgUnavailable
	}

	payload := Sanitize(prompt, e.payloadMax)
	if payload == "" {
		return MsgInvalidInput
	}

	for i := 0; i < e.retries; i++ {
		attemptCtx := ctx
		cancel := func() {}
		if e.attemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, e.attemptTimeout)
		}
		text, err := e.invoker.Generate(attemptCtx, payload)
		cancel()

		if err == nil {
			if len(strings.TrimSpace(text)) >= minUsableResponseLen {
				return text
			}
			err = invokeErr(FailureEmptyResponse, errors.New("response below usable length"))
		}

		category := FailureTransport
		var ie *InvokeError
		if errors.As(err, &ie) {
			category = ie.Category
		}

		log.Warn().
			Err(err).
			Str("category", string(category)).
			Int("attempt", i+1).
			Int("max_attempts", e.retries).
			Msg("AI attempt failed")

		// Safety and quota failures are terminal: retrying the same prompt
		// cannot change the answer.
		switch category {
		case FailureSafetyBlocked:
			return MsgSafetyBlocked
		case FailureQuotaExceeded:
			return MsgQuotaExceeded
		}

		if i == e.retries-1 {
			if category == FailureTimeout {
				return MsgSlowService
			}
			return MsgTemporarilyUnavailable
		}

		e.sleep(e.backoffBase * time.Duration(1<<i))
	}

	return MsgTemporarilyUnavailable
}
