package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Talin12/DataSage/internal/config"
)

const (
	defaultBaseURL     = "https://router.huggingface.co/v1/chat/completions"
	defaultModel       = "meta-llama/Llama-3.1-8B-Instruct:cerebras"
	maxRetries         = 3
	retryDelay         = 2 * time.Second
	defaultMaxTokens   = 1500
	defaultTemperature = 0.2
	defaultTimeout     = 60 * time.Second
)

// Client is a lightweight OpenAI-compatible chat completions client.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	retryDelay  time.Duration
	http        *http.Client
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// StatusError is a non-200 reply from the completions endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("LLM API error (status %d): %s", e.Code, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests ||
		e.Code == http.StatusServiceUnavailable ||
		e.Code == 529
}

// NewClient creates a chat client for an OpenAI-compatible endpoint.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key is required")
	}
	c := &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     completionsURL(cfg.BaseURL),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		retryDelay:  retryDelay,
		http:        &http.Client{Timeout: cfg.Timeout},
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.temperature < 0 {
		c.temperature = defaultTemperature
	}
	if c.http.Timeout <= 0 {
		c.http.Timeout = defaultTimeout
	}
	return c, nil
}

func completionsURL(baseURL string) string {
	if baseURL == "" {
		return defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/chat/completions") {
		baseURL += "/chat/completions"
	}
	return baseURL
}

// Complete sends messages to the LLM and returns the response content.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		result, err := c.doRequest(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
		var se *StatusError
		if !errors.As(err, &se) || !se.retryable() {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("LLM error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}
