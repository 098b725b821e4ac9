// Package openrouter talks to an OpenAI compatible chat completions API.
// The default endpoint is OpenRouter, but any server exposing
// POST {base}/chat/completions works.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
)

const providerName = "openrouter"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client sends chat completion requests.
type Client struct {
	client *resty.Client
	apiKey string
}

// NewClient creates a client for baseURL. The timeout bounds each request.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("X-Title", "AgriSaarthi")

	return &Client{
		client: client,
		apiKey: apiKey,
	}
}

// --- data structures ---

// ChatMessage is one role-tagged message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions are the sampling parameters for one call.
type CompletionOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// ChatCompletionRequest is the request body.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse is the subset of the reply we read.
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends messages and returns the first choice's content.
// It never retries; callers decide what to do with an error.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("OPENROUTER_API_KEY is not configured")
	}
	if opts.Model == "" {
		return "", fmt.Errorf("completion model is not configured")
	}

	request := ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(request).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if !resp.IsSuccess() {
		return "", &apperr.UpstreamError{
			Provider:   providerName,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	var response ChatCompletionResponse
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return "", &apperr.MalformedResponseError{Provider: providerName, Reason: err.Error()}
	}
	if len(response.Choices) == 0 {
		return "", &apperr.MalformedResponseError{Provider: providerName, Reason: "no choices in response"}
	}
	message := response.Choices[0].Message
	if message == nil || message.Content == nil {
		return "", &apperr.MalformedResponseError{Provider: providerName, Reason: "first choice has no message content"}
	}
	content := strings.TrimSpace(*message.Content)
	if content == "" {
		return "", &apperr.MalformedResponseError{Provider: providerName, Reason: "empty message content"}
	}

	return content, nil
}
