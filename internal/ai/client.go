package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/metrics"
	"github.com/bookbuddy/bookbuddy-server/internal/ratelimit"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 2.0
	defaultBurst   = 4

	completionsPath = "/v1/chat/completions"

	// Upper bound on how much of an error body ends up in logs and errors.
	maxErrorBody = 512

	// Completions are capped at a few hundred tokens; anything past this is not a reply.
	maxResponseBody = 1 << 20
)

// Config configures the HTTP client.
type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client is a rate-limited completion client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	baseURL string
	apiKey  string
	model   string
	logger  *slog.Logger
}

// NewClient creates a completion client. Missing timeout and rate fall back to defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.New(cfg.RequestsPerSecond, defaultBurst),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Model returns the model every request is sent with.
func (c *Client) Model() string {
	return c.model
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat completion request and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req Request) (content string, err error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	start := time.Now()
	defer func() {
		metrics.RecordAICompletion(time.Since(start), content, err)
	}()

	if err := c.limiter.Wait(ctx, c.model); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("completion request",
		"model", c.model,
		"messages", len(req.Messages),
		"temperature", req.Temperature,
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, body)
	}

	var decoded completionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if len(decoded.Choices) == 0 {
		return "", nil
	}
	return decoded.Choices[0].Message.Content, nil
}

func statusError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var decoded errorResponse
	if json.Unmarshal(body, &decoded) == nil && decoded.Error.Message != "" {
		apiErr.Message = decoded.Error.Message
	} else {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		apiErr.Message = strings.TrimSpace(msg)
	}

	switch {
	case status == http.StatusTooManyRequests:
		apiErr.Err = ErrRateLimited
	case status >= 500:
		apiErr.Err = ErrServer
	}
	return apiErr
}
