// Package openai is an OpenAI-compatible chat-completion client.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"docchat/internal/domain"
	"docchat/internal/errs"
)

// Client calls the /chat/completions endpoint of an OpenAI-compatible
// API. Like the embeddings client it applies no internal timeout or
// retry; a failed generation propagates whole to the caller.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Config configures the chat-completion client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
}

// NewClient creates a generation client, failing fast on a missing
// credential.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, errs.Configurationf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{},
	}, nil
}

// Model returns the generation model identifier in use.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate issues a single completion request and returns the raw
// generated text.
func (c *Client) Generate(ctx context.Context, messages []domain.Message, opts domain.GenerateOptions) (string, error) {
	msgs := make([]chatMessage, len(messages))
	for i, m := range messages {
		msgs[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errs.Servicef("generation", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Servicef("generation", err)
	}
	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", errs.Servicef("generation", fmt.Errorf("decoding response: %w", err))
	}
	if resp.StatusCode >= 300 {
		msg := resp.Status
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", errs.Servicef("generation", fmt.Errorf("request failed: %s", msg))
	}
	if len(out.Choices) == 0 {
		return "", errs.Servicef("generation", fmt.Errorf("no completion returned"))
	}
	return out.Choices[0].Message.Content, nil
}
