// Package llm is a minimal OpenAI-compatible chat-completions client used to
// talk to OpenRouter, plus the flashcard generator built on top of it.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the first choice of a chat completion.
type Completion struct {
	Content      string
	FinishReason string
	Model        string
	Usage        Usage
}

// Request is a chat completion request. JSONMode asks the model for a JSON
// object response.
type Request struct {
	Model       string
	Messages    []Message
	Temperature *float64
	MaxTokens   int
	JSONMode    bool
}

// Client calls POST <baseURL>/chat/completions.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithModel sets the model used when a request does not name one.
func WithModel(m string) Option {
	return func(c *Client) {
		if m = strings.TrimSpace(m); m != "" {
			c.model = m
		}
	}
}

// New returns a client authenticated with apiKey. Deadlines come from the
// caller's context; the HTTP client itself has none.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		model:   "openai/gpt-4o-mini",
		hc:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Model is the default model of the client.
func (c *Client) Model() string { return c.model }

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    *float64          `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Complete runs one chat completion. Provider failures are returned as
// *APIError; a completion stopped by the provider's content filter is
// reported as an APIError with code "content_filter".
func (c *Client) Complete(ctx context.Context, r Request) (*Completion, error) {
	model := r.Model
	if model == "" {
		model = c.model
	}
	payload := chatRequest{
		Model:       model,
		Messages:    r.Messages,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
	if r.JSONMode {
		payload.ResponseFormat = map[string]string{"type": "json_object"}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Title", "10xCards")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: request failed after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &APIError{Status: http.StatusBadGateway, Code: CodeInvalidResponse, Message: "failed to decode completion: " + err.Error()}
	}
	if len(out.Choices) == 0 {
		return nil, &APIError{Status: http.StatusBadGateway, Code: CodeInvalidResponse, Message: "no completion choices returned"}
	}

	ch := out.Choices[0]
	if ch.FinishReason == "content_filter" {
		return nil, &APIError{Status: http.StatusUnprocessableEntity, Code: "content_filter", Message: "completion blocked by content filter"}
	}
	return &Completion{
		Content:      ch.Message.Content,
		FinishReason: ch.FinishReason,
		Model:        out.Model,
		Usage:        out.Usage,
	}, nil
}
