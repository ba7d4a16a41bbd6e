package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediguard/internal/config"
	"mediguard/internal/domain"
	"mediguard/internal/llm"
	openaiclient "mediguard/internal/llm/openai"
	"mediguard/internal/port"
)

func newTestClient(serverURL string) *openaiclient.Client {
	cfg := &config.AnalyzerConfig{
		Provider:    "openai",
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		MaxTokens:   1024,
		TimeoutSecs: 5,
	}
	return openaiclient.NewClientWithBaseURL(cfg, serverURL+"/v1")
}

func chatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			},
		},
	}
}

func TestComplete_Text(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.InDelta(t, 0.2, body["temperature"], 0.0001)
		assert.Equal(t, float64(1024), body["max_tokens"])
		assert.Equal(t, "json_object", body["response_format"].(map[string]interface{})["type"])

		messages := body["messages"].([]interface{})
		require.Len(t, messages, 2)
		system := messages[0].(map[string]interface{})
		assert.Equal(t, "system", system["role"])
		assert.Equal(t, "be strict", system["content"])
		user := messages[1].(map[string]interface{})
		assert.Equal(t, "user", user["role"])
		assert.Equal(t, "Bill:\nCT scan $860 x2", user["content"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{"summary":"ok"}`))
	}))
	defer server.Close()

	answer, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{
		SystemPrompt: "be strict",
		UserText:     "Bill:\nCT scan $860 x2",
		Temperature:  0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, answer)
}

func TestComplete_ImageAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		user := body["messages"].([]interface{})[1].(map[string]interface{})
		parts := user["content"].([]interface{})
		require.Len(t, parts, 2)

		text := parts[0].(map[string]interface{})
		assert.Equal(t, "text", text["type"])
		assert.Equal(t, "read this bill", text["text"])

		img := parts[1].(map[string]interface{})
		assert.Equal(t, "image_url", img["type"])
		assert.Equal(t, "data:image/jpeg;base64,YWJj", img["image_url"].(map[string]interface{})["url"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{
		SystemPrompt: "sys",
		UserText:     "read this bill",
		Attachment:   &port.Attachment{MIMEType: "image/jpeg", Data: []byte("abc")},
		Temperature:  0.2,
	})
	require.NoError(t, err)
}

func TestComplete_UpstreamError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
	assert.Equal(t, 1, calls)

	var up *llm.UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, http.StatusInternalServerError, up.StatusCode)
	assert.Contains(t, up.Body, "model overloaded")
}

func TestComplete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit","type":"requests"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})
	require.Error(t, err)

	var rl *llm.RateLimitError
	assert.True(t, errors.As(err, &rl))
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestComplete_EmptyAnswer(t *testing.T) {
	tests := []struct {
		name string
		resp map[string]interface{}
	}{
		{"blank content", chatResponse("   ")},
		{"no choices", map[string]interface{}{"id": "x", "choices": []interface{}{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(tt.resp)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})
			assert.ErrorIs(t, err, llm.ErrEmptyAnswer)
			assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
		})
	}
}

func TestRegisteredInFactory(t *testing.T) {
	client, err := llm.NewClient(&config.AnalyzerConfig{Provider: "openai", APIKey: "sk"})
	require.NoError(t, err)
	assert.IsType(t, &openaiclient.Client{}, client)
}
