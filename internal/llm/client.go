package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-scorer/internal/logger"
)

// Role is the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is an abstraction over LLM providers
type Client interface {
	// Chat sends the conversation and returns the assistant reply text.
	// An empty model selects DefaultModel.
	Chat(ctx context.Context, messages []Message, model string) (string, error)
	// DefaultModel returns the model used when Chat gets an empty model
	DefaultModel() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(config), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	case ProviderOpenAI:
		return NewOpenAIClient(config)
	case ProviderAnthropic:
		return NewAnthropicClient(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", config.Provider)
	}
}

// SystemAndUser builds the common two-message conversation.
func SystemAndUser(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}

// splitSystem separates system messages (joined) from the rest, for providers with a
// dedicated system field.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

type loggingClient struct {
	inner    Client
	provider Provider
	log      *zap.Logger
}

// WithLogging logs provider, model and latency of each call at debug level.
func WithLogging(c Client, provider Provider, log *zap.Logger) Client {
	if log == nil {
		return c
	}
	return &loggingClient{inner: c, provider: provider, log: log}
}

func (l *loggingClient) Chat(ctx context.Context, messages []Message, model string) (string, error) {
	if model == "" {
		model = l.inner.DefaultModel()
	}
	start := time.Now()
	reply, err := l.inner.Chat(ctx, messages, model)

	fields := append(logger.BackendFields(string(l.provider), model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("reply_chars", len(reply)),
	)
	if err != nil {
		l.log.Debug("llm chat failed", append(fields, zap.Error(err))...)
		return "", err
	}
	l.log.Debug("llm chat", fields...)
	return reply, nil
}

func (l *loggingClient) DefaultModel() string { return l.inner.DefaultModel() }

func (l *loggingClient) Close() error { return l.inner.Close() }
