// Package summarize wraps the text-model collaborator that turns document
// text into a structured announcement summary.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrRateLimited marks a rate-limit failure from the model API. Callers
// branch on it with errors.Is; every other failure kind is terminal for
// the attempt.
var ErrRateLimited = errors.New("rate limited")

// TruncationMarker is appended when document text is cut to the budget.
const TruncationMarker = "..."

// Client is the summarization collaborator. Implementations must return
// an error wrapping ErrRateLimited when the provider signals rate
// limiting, so the pipeline can apply its bounded retry.
type Client interface {
	Summarize(ctx context.Context, text, companyName string) (string, error)
	Model() string
}

// OpenAIClient calls the OpenAI chat-completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

type Options struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

func NewOpenAIClient(opts Options) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

func (c *OpenAIClient) Model() string { return c.model }

// Summarize sends the fixed analyst prompt for one announcement. The input
// text must already be normalized and truncated to the configured budget.
func (c *OpenAIClient) Summarize(ctx context.Context, text, companyName string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(text, companyName)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		if isRateLimit(err) {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func isRateLimit(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "rate_limit")
}

// NormalizeAndTruncate collapses runs of whitespace to single spaces and
// cuts the result to at most max bytes, appending the truncation marker
// when a cut happened.
func NormalizeAndTruncate(text string, max int) (string, bool) {
	cleaned := strings.Join(strings.Fields(text), " ")
	if max > 0 && len(cleaned) > max {
		return cleaned[:max] + TruncationMarker, true
	}
	return cleaned, false
}
