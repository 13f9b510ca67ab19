package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client for the Anthropic Messages API
type AnthropicClient struct {
	client *anthropic.Client
	config *Config
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(config *Config) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: config.timeout()}),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicClient{
		client: &client,
		config: config,
	}, nil
}

// Chat sends the conversation with system messages in the dedicated system field
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message, model string) (string, error) {
	if model == "" {
		model = c.DefaultModel()
	}
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return "", newBackendError(ProviderAnthropic, model, 0, "no user message", nil)
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: int64(defaultMaxTokens),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, m := range turns {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", newBackendError(ProviderAnthropic, model, apiErr.StatusCode, "request failed", err)
		}
		return "", newBackendError(ProviderAnthropic, model, 0, "request failed", err)
	}

	var parts []string
	for _, content := range message.Content {
		if content.Type == "text" {
			parts = append(parts, content.Text)
		}
	}
	if len(parts) == 0 {
		return "", newBackendError(ProviderAnthropic, model, 0, "no text content in reply", nil)
	}
	return strings.Join(parts, ""), nil
}

// DefaultModel returns the configured model
func (c *AnthropicClient) DefaultModel() string {
	return c.config.DefaultModel()
}

// Close is a no-op
func (c *AnthropicClient) Close() error {
	return nil
}

var _ Client = (*AnthropicClient)(nil)
