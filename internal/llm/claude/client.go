// Package claude implements port.CompletionClient on the Anthropic Messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediguard/internal/config"
	"mediguard/internal/domain"
	"mediguard/internal/llm"
	"mediguard/internal/port"
)

const (
	providerName     = "claude"
	apiURL           = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

func init() {
	llm.RegisterProvider(providerName, func(cfg *config.AnalyzerConfig) (port.CompletionClient, error) {
		return NewClient(cfg), nil
	})
}

// Client implements port.CompletionClient using the Anthropic Messages API.
type Client struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewClient creates a Claude client. cfg.BaseURL overrides the API endpoint.
func NewClient(cfg *config.AnalyzerConfig) *Client {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	return newClient(cfg, endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.AnalyzerConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.AnalyzerConfig, endpoint string) *Client {
	// The analyzer model defaults to an OpenAI name; ignore it here.
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: timeout},
	}
}

// Complete implements port.CompletionClient.
func (c *Client) Complete(ctx context.Context, in port.CompletionRequest) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.model,
		"max_tokens":  c.maxTokens,
		"temperature": in.Temperature,
		"system":      in.SystemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": buildContentBlocks(in),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &llm.UpstreamError{Provider: providerName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		upErr := llm.NewUpstreamError(providerName, resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", llm.NewRateLimitError(providerName, upErr)
		}
		return "", upErr
	}

	return parseResponse(respBody)
}

func buildContentBlocks(in port.CompletionRequest) []map[string]interface{} {
	var blocks []map[string]interface{}

	if a := in.Attachment; a != nil {
		blockType := "image"
		if a.MIMEType == "application/pdf" {
			blockType = "document"
		}
		blocks = append(blocks, map[string]interface{}{
			"type": blockType,
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": a.MIMEType,
				"data":       a.Base64(),
			},
		})
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": in.UserText,
	})
	return blocks
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: unmarshaling response: %v", domain.ErrUpstreamFailure, err)
	}

	if resp.StopReason == "max_tokens" {
		return "", fmt.Errorf("%w: output truncated (stop_reason: max_tokens)", domain.ErrUpstreamFailure)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	answer := strings.TrimSpace(b.String())
	if answer == "" {
		return "", llm.ErrEmptyAnswer
	}
	return answer, nil
}
