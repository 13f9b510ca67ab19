package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client for OpenAI chat completions, including compatible
// servers reached through BaseURL
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config.APIKey == "" && config.BaseURL == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
	}
	oc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oc.BaseURL = config.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: config.timeout()}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		config: config,
	}, nil
}

// Chat sends a single chat completion request
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, model string) (string, error) {
	if model == "" {
		model = c.DefaultModel()
	}

	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", newBackendError(ProviderOpenAI, model, apiErr.HTTPStatusCode, apiErr.Message, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", newBackendError(ProviderOpenAI, model, reqErr.HTTPStatusCode, "request failed", err)
		}
		return "", newBackendError(ProviderOpenAI, model, 0, "request failed", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", newBackendError(ProviderOpenAI, model, 0, "empty reply", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// DefaultModel returns the configured model
func (c *OpenAIClient) DefaultModel() string {
	return c.config.DefaultModel()
}

// Close is a no-op
func (c *OpenAIClient) Close() error {
	return nil
}

var _ Client = (*OpenAIClient)(nil)
