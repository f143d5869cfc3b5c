// Package llm is a minimal client for OpenAI-compatible chat
// completion endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vigneshgurumohan/agents-store/internal/config"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Client calls a /v1/chat/completions endpoint. The zero value is not
// usable; construct with New.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// New builds a client from settings. The client is inert when the API
// key is empty; callers check Available and fall back.
func New(cfg config.LLMSettings) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: 0.7,
		maxTokens:   2000,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Available reports whether the client is configured to make calls.
func (c *Client) Available() bool {
	return c != nil && c.apiKey != "" && c.baseURL != ""
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Chat sends messages and returns the assistant text. Transient
// upstream failures are retried: rate limits back off 3s, 6s, 9s;
// gateway errors retry after a fixed 3s.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if !c.Available() {
		return "", errors.New("llm: client not configured")
	}
	const attempts = 3
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		text, err := c.chatOnce(ctx, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err
		var delay time.Duration
		switch {
		case errors.Is(err, errRateLimited):
			delay = time.Duration(3*(attempt+1)) * time.Second
		case errors.Is(err, errUpstream):
			delay = 3 * time.Second
		default:
			return "", err
		}
		if attempt == attempts-1 {
			break
		}
		slog.Warn("llm request failed, retrying", "attempt", attempt+1, "delay", delay, "err", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}

var (
	errRateLimited = errors.New("llm: rate limited")
	errUpstream    = errors.New("llm: upstream unavailable")
)

func (c *Client) chatOnce(ctx context.Context, messages []Message) (string, error) {
	reqBody := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", errRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "", fmt.Errorf("%w: status %d", errUpstream, resp.StatusCode)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llm: API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", err
	}
	if len(apiResp.Choices) == 0 {
		return "", errors.New("llm: empty choices")
	}
	return apiResp.Choices[0].Message.Content, nil
}
