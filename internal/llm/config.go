// Package llm provides a provider-neutral chat client for the scoring pipeline.
// Every provider is reached through the same synchronous, non-streaming Chat call.
package llm

import "time"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOllama is a local or remote Ollama server
	ProviderOllama Provider = "ollama"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider or any OpenAI-compatible server
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
)

const (
	// DefaultTimeout bounds a single chat call
	DefaultTimeout = 120 * time.Second
	// DefaultOllamaURL is used when no base URL is configured
	DefaultOllamaURL = "http://localhost:11434"
	// DefaultOllamaModel is the default local model
	DefaultOllamaModel = "qwen3:1.7b"

	defaultGeminiModel    = "gemini-2.5-flash"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
	defaultMaxTokens      = 1024
)

// Config holds the client configuration for the application
type Config struct {
	Provider Provider
	// Model is the default model; empty means the provider default
	Model   string
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Temperature applies to providers that accept it
	Temperature float32
}

// DefaultConfig returns the default configuration (a local Ollama server)
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOllama,
		Model:       DefaultOllamaModel,
		BaseURL:     DefaultOllamaURL,
		Timeout:     DefaultTimeout,
		Temperature: 0.1,
	}
}

// DefaultModel returns the configured model, falling back to the provider default.
func (c *Config) DefaultModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderGemini:
		return defaultGeminiModel
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderAnthropic:
		return defaultAnthropicModel
	default:
		return DefaultOllamaModel
	}
}

// timeout returns the configured timeout or the default
func (c *Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// WithModel returns a copy of the Config with a different default model
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}
