// Package openai is an OpenAI-compatible embeddings client.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"docchat/internal/errs"
)

// Client calls the /embeddings endpoint of an OpenAI-compatible API.
// Requests carry no internal timeout or retry; callers bound them with
// a context deadline and decide on retry themselves.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Config configures the embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
}

// NewClient creates an embeddings client. A missing credential fails
// here, at construction, rather than at first call.
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
		cfg.Model = "text-embedding-3-small"
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{},
	}, nil
}

// Model returns the embedding model identifier in use.
func (c *Client) Model() string { return c.model }

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Embed returns one vector per input text, in input order. Inputs are
// sent as a single batch; nothing is cached across calls.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embeddingRequest{Input: texts, Model: c.model})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.Servicef("embedding", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Servicef("embedding", err)
	}
	var out embeddingResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, errs.Servicef("embedding", fmt.Errorf("decoding response: %w", err))
	}
	if resp.StatusCode >= 300 {
		msg := resp.Status
		if out.Error != nil {
			msg = out.Error.Message
		}
		return nil, errs.Servicef("embedding", fmt.Errorf("request failed: %s", msg))
	}
	if len(out.Data) != len(texts) {
		return nil, errs.Servicef("embedding", fmt.Errorf("expected %d vectors, got %d", len(texts), len(out.Data)))
	}

	// The API may return items out of order; place each by index.
	vectors := make([][]float64, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, errs.Servicef("embedding", fmt.Errorf("vector index %d out of range", d.Index))
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, errs.Servicef("embedding", fmt.Errorf("no embedding returned for input %d", i))
		}
	}
	return vectors, nil
}

// EmbedText is the single-text convenience wrapping a one-element call.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
