// Package openai implements port.CompletionClient on the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"mediguard/internal/config"
	"mediguard/internal/llm"
	"mediguard/internal/port"
)

const (
	providerName     = "openai"
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 4096
)

func init() {
	llm.RegisterProvider(providerName, func(cfg *config.AnalyzerConfig) (port.CompletionClient, error) {
		return NewClient(cfg), nil
	})
}

// Client sends one chat completion per Complete call.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

// NewClient creates an OpenAI client. cfg.BaseURL, when set, points it at a
// compatible endpoint.
func NewClient(cfg *config.AnalyzerConfig) *Client {
	return NewClientWithBaseURL(cfg, cfg.BaseURL)
}

// NewClientWithBaseURL creates a client against a custom API base URL (for testing).
func NewClientWithBaseURL(cfg *config.AnalyzerConfig, baseURL string) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		oc.BaseURL = strings.TrimRight(baseURL, "/")
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		api:       openai.NewClientWithConfig(oc),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete implements port.CompletionClient.
func (c *Client) Complete(ctx context.Context, in port.CompletionRequest) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: in.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: in.SystemPrompt},
			buildUserMessage(in),
		},
	}
	// Reasoning models take MaxCompletionTokens instead of MaxTokens.
	if isReasoningModel(c.model) {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyAnswer
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", llm.ErrEmptyAnswer
	}
	return answer, nil
}

func buildUserMessage(in port.CompletionRequest) openai.ChatCompletionMessage {
	if in.Attachment == nil {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: in.UserText}
	}
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: in.UserText},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    in.Attachment.DataURI(),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	}
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		up := &llm.UpstreamError{
			Provider:   providerName,
			StatusCode: apiErr.HTTPStatusCode,
			Body:       llm.Truncate(apiErr.Message, 2000),
			Err:        err,
		}
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return llm.NewRateLimitError(providerName, up)
		}
		return up
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		up := &llm.UpstreamError{
			Provider:   providerName,
			StatusCode: reqErr.HTTPStatusCode,
			Body:       llm.Truncate(reqErr.Error(), 2000),
			Err:        err,
		}
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return llm.NewRateLimitError(providerName, up)
		}
		return up
	}

	return &llm.UpstreamError{Provider: providerName, Err: err}
}
