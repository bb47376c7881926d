package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key="

// FailureCategory classifies why a single model invocation produced no
// usable text. The executor's retry decision keys off this, never off
// error-message substrings.
type FailureCategory string

const (
	FailureTimeout       FailureCategory = "timeout"
	FailureSafetyBlocked FailureCategory = "safety_blocked"
	FailureQuotaExceeded FailureCategory = "quota_exceeded"
	FailureEmptyResponse FailureCategory = "empty_response"
	FailureTransport     FailureCategory = "transport_error"
)

// InvokeError tags a failed invocation with its category.
type InvokeError struct {
	Category FailureCategory
	Err      error
}

func (e *InvokeError) Error() string {
	if e.Err == nil {
		return string(e.Category)
	}
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

func invokeErr(category FailureCategory, err error) *InvokeError {
	return &InvokeError{Category: category, Err: err}
}

// ModelInvoker performs one model call. Implementations must honor ctx
// cancellation and report failures as *InvokeError.
type ModelInvoker interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// --- Gemini API request/response shapes ---

type geminiPayload struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []safetySetting   `json:"safetySettings,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// GeminiClient invokes the Gemini generateContent endpoint over plain HTTP.
type GeminiClient struct {
	apiKey string
	client *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	// Per-attempt deadlines come from the caller's context, so the
	// http.Client itself carries no timeout.
	return &GeminiClient{apiKey: apiKey, client: &http.Client{}}
}

// Generate performs one generateContent call and maps every failure mode
// onto an InvokeError category.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := geminiPayload{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:     0.7,
			TopP:            0.8,
			TopK:            40,
			MaxOutputTokens: 2000,
		},
		SafetySettings: []safetySetting{
			{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
			{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
			{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", invokeErr(FailureTransport, fmt.Errorf("failed to marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, geminiAPIURL+g.apiKey, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", invokeErr(FailureTransport, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", invokeErr(FailureTimeout, err)
		}
		return "", invokeErr(FailureTransport, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", invokeErr(FailureQuotaExceeded, fmt.Errorf("API returned %s: %s", resp.Status, string(body)))
		}
		return "", invokeErr(FailureTransport, fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(body)))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", invokeErr(FailureTransport, fmt.Errorf("failed to decode response: %w", err))
	}

	if geminiResp.PromptFeedback != nil && geminiResp.PromptFeedback.BlockReason != "" {
		return "", invokeErr(FailureSafetyBlocked, fmt.Errorf("prompt blocked: %s", geminiResp.PromptFeedback.BlockReason))
	}
	if len(geminiResp.Candidates) == 0 {
		return "", invokeErr(FailureEmptyResponse, errors.New("no candidates in response"))
	}

	candidate := geminiResp.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return "", invokeErr(FailureSafetyBlocked, errors.New("candidate blocked by safety filters"))
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		b.WriteString(part.Text)
	}
	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", invokeErr(FailureEmptyResponse, errors.New("candidate contained no text"))
	}

	log.Debug().Int("response_chars", len(text)).Msg("Gemini call succeeded")
	return text, nil
}
