package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const chatEndpoint = "/api/chat"

// OllamaClient implements Client against the Ollama /api/chat endpoint
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float32
	httpClient  *http.Client
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error"`
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(config *Config) *OllamaClient {
	base := config.BaseURL
	if base == "" {
		base = DefaultOllamaURL
	}
	return &OllamaClient{
		baseURL:     strings.TrimRight(base, "/"),
		model:       config.DefaultModel(),
		temperature: config.Temperature,
		httpClient:  &http.Client{Timeout: config.timeout()},
	}
}

// Chat sends a non-streaming chat request and returns message.content
func (c *OllamaClient) Chat(ctx context.Context, messages []Message, model string) (string, error) {
	if model == "" {
		model = c.model
	}

	payload := ollamaChatRequest{Model: model, Messages: messages, Stream: false}
	if c.temperature > 0 {
		payload.Options = map[string]any{"temperature": c.temperature}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", newBackendError(ProviderOllama, model, 0, "failed to encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", newBackendError(ProviderOllama, model, 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", newBackendError(ProviderOllama, model, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", newBackendError(ProviderOllama, model, resp.StatusCode, strings.TrimSpace(string(raw)), nil)
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", newBackendError(ProviderOllama, model, resp.StatusCode, "failed to decode response", err)
	}
	if out.Error != "" {
		return "", newBackendError(ProviderOllama, model, resp.StatusCode, out.Error, nil)
	}
	if strings.TrimSpace(out.Message.Content) == "" {
		return "", newBackendError(ProviderOllama, model, resp.StatusCode, "empty reply", nil)
	}
	return out.Message.Content, nil
}

// DefaultModel returns the configured model
func (c *OllamaClient) DefaultModel() string {
	return c.model
}

// Close is a no-op; the http.Client holds no resources that need releasing
func (c *OllamaClient) Close() error {
	return nil
}

var _ Client = (*OllamaClient)(nil)
