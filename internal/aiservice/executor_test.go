package aiservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/config"
)

type scriptedResult struct {
	text string
	err  error
}

// scriptedInvoker replays a fixed sequence of outcomes; the last outcome
// repeats if more attempts arrive than were scripted.
type scriptedInvoker struct {
	results []scriptedResult
	calls   int
}

func (s *scriptedInvoker) Generate(ctx context.Context, prompt string) (string, error) {
	r := s.results[min(s.calls, len(s.results)-1)]
	s.calls++
	return r.text, r.err
}

func newTestExecutor(invoker ModelInvoker) (*Executor, *[]time.Duration) {
	e := NewExecutor(invoker, config.ExecutorConfig{
		Retries:     3,
		BackoffBase: time.Second,
	}, 3000)

	var slept []time.Duration
	e.sleep = func(d time.Duration) { slept = append(slept, d) }
	return e, &slept
}

const goodResponse = "Here is a full workout plan tailored to your goals."

func TestExecuteWithoutInvoker(t *testing.T) {
	e, _ := newTestExecutor(nil)
	assert.Equal(t, MsgUnavailable, e.Execute(context.Background(), "anything"))
}

func TestExecuteRejectsEmptyPayload(t *testing.T) {
	inv := &scriptedInvoker{results: []scriptedResult{{text: goodResponse}}}
	e, _ := newTestExecutor(inv)

	// Nothing but injection tokens sanitizes down to an empty payload.
	assert.Equal(t, MsgInvalidInput, e.Execute(context.Background(), "<>```system:  "))
	assert.Zero(t, inv.calls, "the model must not be invoked for empty payloads")
}

func TestExecuteReturnsModelText(t *testing.T) {
	inv := &scriptedInvoker{results: []scriptedResult{{text: goodResponse}}}
	e, slept := newTestExecutor(inv)

	got := e.Execute(context.Background(), "plan my workout")
	assert.Equal(t, goodResponse, got)
	assert.Equal(t, 1, inv.calls)
	assert.Empty(t, *slept)
}

func TestExecuteRetriesWithExponentialBackoff(t *testing.T) {
	inv := &scriptedInvoker{results: []scriptedResult{
		{err: invokeErr(FailureTransport, errors.New("connection reset"))},
		{err: invokeErr(FailureTransport, errors.New("connection reset"))},
		{text: goodResponse},
	}}
	e, slept := newTestExecutor(inv)

	got := e.Execute(context.Background(), "plan my workout")
	assert.Equal(t, goodResponse, got)
	assert.Equal(t, 3, inv.calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *slept)
}

func TestExecuteTimeoutOnEveryAttempt(t *testing.T) {
	inv := &scriptedInvoker{results: []scriptedResult{
		{err: invokeErr(FailureTimeout, context.DeadlineExceeded)},
	}}
	e, slept := newTestExecutor(inv)

	got := e.Execute(context.Background(), "plan my workout")
	assert.Equal(t, MsgSlowService, got)
	assert.Equal(t, 3, inv.calls, "timeouts are retried until attempts are exhausted")
	assert.Len(t, *slept, 2, "no backoff after the final attempt")
}

func TestExecuteSafetyBlockIsTerminal(t *testing.T) {
	inv := &scriptedInvoker{results: []scriptedResult{
		{err: invokeErr(FailureSafetyBlocked, errors.New("blocked"))},
	}}
	e, slept := newTestExecutor(inv)

	got := e.Execute(context.Background(), "plan my workout")
	assert.Equal(t, MsgSafetyBlocked, got)
	assert.Equal(t, 1, inv.calls, "safety blocks must not be retried")
	assert.Empty(t, *slept)
}

func TestExecuteQuotaExhaustionIsTerminal(t *testing.T) {
	inv := &scriptedInvoker{results: []scriptedResult{
		{err: invokeErr(FailureQuotaExceeded, errors.New("429"))},
	}}
	e, slept := newTestExecutor(inv)

	got := e.Execute(context.Background(), "plan my workout")
	assert.Equal(t, MsgQuotaExceeded, got)
	assert.Equal(t, 1, inv.calls, "quota exhaustion must not be retried")
	assert.Empty(t, *slept)
}

func TestExecuteRetriesSuspiciouslyShortResponses(t *testing.T) {
	inv := &scriptedInvoker{results: []scriptedResult{
		{text: "ok"},
		{text: goodResponse},
	}}
	e, _ := newTestExecutor(inv)

	got := e.Execute(context.Background(), "plan my workout")
	assert.Equal(t, goodResponse, got)
	assert.Equal(t, 2, inv.calls)
}

func TestExecuteExhaustionFallsBack(t *testing.T) {
	inv := &scriptedInvoker{results: []scriptedResult{
		{err: invokeErr(FailureTransport, errors.New("boom"))},
	}}
	e, _ := newTestExecutor(inv)

	got := e.Execute(context.Background(), "plan my workout")
	assert.Equal(t, MsgTemporarilyUnavailable, got)
	assert.Equal(t, 3, inv.calls)
}

func TestExecuteQuotaAfterTimeoutStillTerminal(t *testing.T) {
	inv := &scriptedInvoker{results: []scriptedResult{
		{err: invokeErr(FailureTimeout, context.DeadlineExceeded)},
		{err: invokeErr(FailureQuotaExceeded, errors.New("429"))},
	}}
	e, _ := newTestExecutor(inv)

	got := e.Execute(context.Background(), "plan my workout")
	assert.Equal(t, MsgQuotaExceeded, got)
	assert.Equal(t, 2, inv.calls)
}

func TestExecuteNeverReturnsEmpty(t *testing.T) {
	require.NotEmpty(t, MsgTemporarilyUnavailable)
	inv := &scriptedInvoker{results: []scriptedResult{{text: ""}}}
	e, _ := newTestExecutor(inv)

	got := e.Execute(context.Background(), "plan my workout")
	assert.Equal(t, MsgTemporarilyUnavailable, got)
}
