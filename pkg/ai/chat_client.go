package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatClient implements Client against an OpenAI-compatible chat-completion API
type ChatClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewChatClient creates a chat-completion client. An empty apiKey is legal and
// produces an unavailable client so the rest of the system can run AI-less.
func NewChatClient(baseURL, apiKey string) *ChatClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &ChatClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Available implements Client
func (c *ChatClient) Available() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete implements Client. It performs exactly one network call and leaves
// token accounting to the caller.
func (c *ChatClient) Complete(ctx context.Context, messages []Message, opts Options) (*Completion, error) {
	if !c.Available() {
		return nil, &AuthError{Message: "no API key configured"}
	}
	if len(messages) == 0 {
		return nil, &ValidationError{Message: "no messages to send"}
	}

	payload := chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Message: "failed to read response: " + err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Message: string(respBody)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{Message: string(respBody)}
	case resp.StatusCode != http.StatusOK:
		return nil, &UpstreamError{Status: resp.StatusCode, Message: string(respBody)}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &UpstreamError{Message: "failed to parse response: " + err.Error()}
	}

	if len(result.Choices) == 0 {
		return nil, &UpstreamError{Message: "no completion choices returned"}
	}

	return &Completion{
		Text:             result.Choices[0].Message.Content,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
	}, nil
}
