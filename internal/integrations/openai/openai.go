package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/config"
	"github.com/sirupsen/logrus"
)

const (
	temperature = 0.2
	maxTokens   = 2500
)

// StatusError is returned when the API answers with a non-200 status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// HTTPStatus returns the response status code
func (e *StatusError) HTTPStatus() int { return e.Code }

// Client calls the chat completions endpoint
type Client struct {
	url    string
	apiKey string
	model  string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new chat completions client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url:    strings.TrimRight(cfg.OpenAIURL, "/") + "/chat/completions",
		apiKey: cfg.OpenAIKey,
		model:  cfg.OpenAIModel,
		client: &http.Client{
			Timeout: cfg.OpenAITimeout,
		},
		log: log,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Complete sends a system and a user message and returns the first choice's content
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debugf("OpenAI responded %d in %s", resp.StatusCode, time.Since(started))

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("no message content in response")
	}

	return *parsed.Choices[0].Message.Content, nil
}
