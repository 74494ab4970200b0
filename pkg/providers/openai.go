// Package providers implements the OpenAI-compatible chat completion client
// used for both model tiers.
package providers

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

// DefaultAPIBase points at OpenRouter, which fronts both model tiers.
const DefaultAPIBase = "https://openrouter.ai/api/v1"

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 30 * time.Second

// Client calls POST /chat/completions on an OpenAI-compatible API.
type Client struct {
	APIKey  string
	APIBase string

	httpClient *http.Client
}

// NewClient creates a Client. An empty apiBase falls back to OpenRouter and
// a non-positive timeout to the default.
func NewClient(apiKey, apiBase string, timeout time.Duration) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		APIKey:     apiKey,
		APIBase:    apiBase,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complete sends the system prompt plus the user question and returns the
// first choice. Non-2xx statuses come back as *APIError so callers can
// distinguish auth, throttling and server failures.
func (c *Client) Complete(ctx context.Context, systemPrompt, question string, p Params) (*Completion, error) {
	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.APIBase, "/"))

	reqBody := map[string]interface{}{
		"model": p.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": question},
		},
		"max_tokens":        p.MaxTokens,
		"temperature":       p.Temperature,
		"top_p":             p.TopP,
		"presence_penalty":  p.PresencePenalty,
		"frequency_penalty": p.FrequencyPenalty,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

	if strings.Contains(c.APIBase, "openrouter.ai") {
		req.Header.Set("HTTP-Referer", "https://github.com/daus212/it-helper-bot")
		req.Header.Set("X-Title", "IT Helper Bot")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &Completion{
		Content:     strings.TrimSpace(response.Choices[0].Message.Content),
		TotalTokens: response.Usage.TotalTokens,
	}, nil
}
