// Package narrator turns numeric column summaries into a short natural-language
// insight using an OpenAI-compatible chat completions endpoint.
package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"sheetdash/internal/config"
)

// NoInsight is returned when the model answers without content.
const NoInsight = "No insight generated"

const temperature = 0.7

var (
	// ErrDependencyUnavailable is the root of every failure that should degrade the insight
	// instead of failing the request.
	ErrDependencyUnavailable = errors.New("narrator unavailable")

	ErrNotConfigured = fmt.Errorf("%w: not configured", ErrDependencyUnavailable)
	ErrRateLimited   = fmt.Errorf("%w: rate limited", ErrDependencyUnavailable)
	ErrUnauthorized  = fmt.Errorf("%w: unauthorized", ErrDependencyUnavailable)
	ErrUnavailable   = fmt.Errorf("%w: upstream error", ErrDependencyUnavailable)
)

// Narrator is implemented by Client.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) (string, error)
}

// Client calls a chat completions endpoint; an empty URL or APIKey leaves it unconfigured.
type Client struct {
	URL       string
	APIKey    string
	Model     string
	MaxTokens int
	HTTP      *http.Client
}

// NewClient builds a Client whose transport emits client spans.
func NewClient(cfg config.NarratorConfig) *Client {
	return &Client{
		URL:       cfg.URL,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		HTTP: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

var _ Narrator = (*Client)(nil)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Narrate sends prompt as a single user message and returns the trimmed first choice.
func (c *Client) Narrate(ctx context.Context, prompt string) (string, error) {
	if c.URL == "" || c.APIKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.Model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("narrator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(out.Choices) == 0 {
		return NoInsight, nil
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return NoInsight, nil
	}
	return text, nil
}
