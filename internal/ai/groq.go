package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	groqEndpoint     = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel = "llama-3.1-8b-instant"
	groqMaxTokens    = 1024
)

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GroqClient talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

type GroqOption func(*GroqClient)

// WithGroqEndpoint overrides the completions URL (tests, proxies).
func WithGroqEndpoint(url string) GroqOption {
	return func(c *GroqClient) { c.endpoint = url }
}

// WithHTTPClient replaces the default client, which has a 30s timeout.
func WithHTTPClient(hc *http.Client) GroqOption {
	return func(c *GroqClient) { c.http = hc }
}

func NewGroqClient(apiKey, model string, opts ...GroqOption) (*GroqClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("groq: missing api key")
	}
	if model == "" {
		model = defaultGroqModel
	}
	c := &GroqClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: groqEndpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *GroqClient) Name() string { return "groq" }

// Generate sends prompt as a single user message and returns the first choice.
func (c *GroqClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: groqMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("groq: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("groq: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("groq: read response: %w", err)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("groq: unmarshal response (status %d): %w", resp.StatusCode, err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("groq: api error (status %d): %s", resp.StatusCode, cr.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("groq: unexpected status %d", resp.StatusCode)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("groq: API returned empty choices array (raw: %s)", body)
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
