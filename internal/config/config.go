// Package config loads and validates the service configuration.
// Values come from environment variables, optionally layered over a YAML or JSON file.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the resolved, validated configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	// Embeddings
	EmbedModelName string `mapstructure:"embed_model_name" validate:"required"`
	EmbedProvider  string `mapstructure:"embed_provider" validate:"oneof=ollama openai gemini"`
	EmbedBaseURL   string `mapstructure:"embed_base_url" validate:"omitempty,url"`

	// Chat backend
	LLMProvider        string        `mapstructure:"llm_provider" validate:"oneof=ollama gemini openai anthropic"`
	LLMModel           string        `mapstructure:"llm_model"`
	LLMTimeout         time.Duration `mapstructure:"llm_timeout" validate:"gt=0"`
	OllamaBaseURL      string        `mapstructure:"ollama_base_url" validate:"required,url"`
	OllamaDefaultModel string        `mapstructure:"ollama_default_model" validate:"required"`
	GeminiAPIKey       string        `mapstructure:"gemini_api_key"`
	OpenAIAPIKey       string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL      string        `mapstructure:"openai_base_url" validate:"omitempty,url"`
	AnthropicAPIKey    string        `mapstructure:"anthropic_api_key"`

	// Input limits
	MaxJDChars              int   `mapstructure:"max_jd_chars" validate:"gte=1"`
	MaxResumeChars          int   `mapstructure:"max_resume_chars" validate:"gte=1"`
	MaxUploadBytes          int64 `mapstructure:"max_upload_bytes" validate:"gte=1"`
	MaxPDFPages             int   `mapstructure:"max_pdf_pages" validate:"gte=1"`
	MaxQuestionsPerCategory int   `mapstructure:"max_questions_per_category" validate:"gte=1"`

	// Scoring
	TopK                 int    `mapstructure:"top_k" validate:"gte=1,lte=20"`
	ScoringConcurrency   int    `mapstructure:"scoring_concurrency" validate:"gte=1,lte=64"`
	ScoringFailurePolicy string `mapstructure:"scoring_failure_policy" validate:"oneof=isolate abort"`

	// Access control
	AppAPIKey            string `mapstructure:"app_api_key"`
	AppAPIKeyHash        string `mapstructure:"app_api_key_hash"`
	MaxRequestsPerMinute int    `mapstructure:"max_requests_per_minute" validate:"gte=0"`
	JWTSecret            string `mapstructure:"jwt_secret"`
	JWTExpirationHours   int    `mapstructure:"jwt_expiration_hours" validate:"gte=1"`

	// Process
	Port     int  `mapstructure:"port" validate:"gte=1,lte=65535"`
	LogJSON  bool `mapstructure:"log_json"`
	LogDebug bool `mapstructure:"log_debug"`
}

// defaults holds every key with its default. Keys without a default still need an
// entry so viper binds the environment variable.
var defaults = map[string]any{
	"embed_model_name": "",
	"embed_provider":   "ollama",
	"embed_base_url":   "",

	"llm_provider":         "ollama",
	"llm_model":            "",
	"llm_timeout":          "120s",
	"ollama_base_url":      "http://localhost:11434",
	"ollama_default_model": "qwen3:1.7b",
	"gemini_api_key":       "",
	"openai_api_key":       "",
	"openai_base_url":      "",
	"anthropic_api_key":    "",

	"max_jd_chars":               8000,
	"max_resume_chars":           20000,
	"max_upload_bytes":           5 * 1024 * 1024,
	"max_pdf_pages":              20,
	"max_questions_per_category": 25,

	"top_k":                  3,
	"scoring_concurrency":    4,
	"scoring_failure_policy": "isolate",

	"app_api_key":             "",
	"app_api_key_hash":        "",
	"max_requests_per_minute": 30,
	"jwt_secret":              "",
	"jwt_expiration_hours":    24,

	"port":      8080,
	"log_json":  false,
	"log_debug": false,
}

// Load resolves the configuration. path may be empty; when set the file must exist.
// Environment variables (upper-case key names) override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", strings.ToUpper(key), err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.trim()
	if cfg.EmbedBaseURL == "" && cfg.EmbedProvider == "ollama" {
		cfg.EmbedBaseURL = cfg.OllamaBaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) trim() {
	c.EmbedModelName = strings.TrimSpace(c.EmbedModelName)
	c.EmbedProvider = strings.ToLower(strings.TrimSpace(c.EmbedProvider))
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.ScoringFailurePolicy = strings.ToLower(strings.TrimSpace(c.ScoringFailurePolicy))
	c.OllamaBaseURL = strings.TrimRight(strings.TrimSpace(c.OllamaBaseURL), "/")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their environment variable name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return strings.ToUpper(name)
	})
	return v
}

// Validate checks field rules and provider-specific requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}

	switch c.LLMProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config error: GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("config error: OPENAI_API_KEY or OPENAI_BASE_URL is required when LLM_PROVIDER=openai")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("config error: ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
	}

	switch c.EmbedProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config error: GEMINI_API_KEY is required when EMBED_PROVIDER=gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" && c.EmbedBaseURL == "" {
			return fmt.Errorf("config error: OPENAI_API_KEY or EMBED_BASE_URL is required when EMBED_PROVIDER=openai")
		}
	}

	if c.AppAPIKey != "" && c.AppAPIKeyHash != "" {
		return fmt.Errorf("config error: APP_API_KEY and APP_API_KEY_HASH are mutually exclusive")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", fe.Field(), fe.Value())
	case "gte", "gt", "lte":
		return fmt.Sprintf("%s must be %s %s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// AuthEnabled reports whether requests must authenticate.
func (c *Config) AuthEnabled() bool {
	return c.AppAPIKey != "" || c.AppAPIKeyHash != ""
}

// ChatModel returns the model used for chat calls: LLM_MODEL when set, else the Ollama
// default for the ollama provider and the provider default otherwise.
func (c *Config) ChatModel() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	if c.LLMProvider == "ollama" {
		return c.OllamaDefaultModel
	}
	return ""
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
