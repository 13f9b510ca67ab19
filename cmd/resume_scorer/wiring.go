package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-scorer/internal/config"
	"github.com/jonathan/resume-scorer/internal/embedding"
	"github.com/jonathan/resume-scorer/internal/ingestion"
	"github.com/jonathan/resume-scorer/internal/llm"
	"github.com/jonathan/resume-scorer/internal/logger"
	"github.com/jonathan/resume-scorer/internal/prompts"
	"github.com/jonathan/resume-scorer/internal/questions"
	"github.com/jonathan/resume-scorer/internal/scoring"
)

// chatTemperature keeps question generation and scoring close to deterministic.
const chatTemperature = 0.1

// loadConfig resolves the configuration and applies the logging flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("json") {
		cfg.LogJSON = logJSON
	}
	if cmd.Flags().Changed("debug") {
		cfg.LogDebug = logDebug
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

func llmConfig(cfg *config.Config) *llm.Config {
	c := &llm.Config{
		Provider:    llm.Provider(cfg.LLMProvider),
		Model:       cfg.ChatModel(),
		Timeout:     cfg.LLMTimeout,
		Temperature: chatTemperature,
	}
	switch c.Provider {
	case llm.ProviderOllama:
		c.BaseURL = cfg.OllamaBaseURL
	case llm.ProviderGemini:
		c.APIKey = cfg.GeminiAPIKey
	case llm.ProviderOpenAI:
		c.APIKey = cfg.OpenAIAPIKey
		c.BaseURL = cfg.OpenAIBaseURL
	case llm.ProviderAnthropic:
		c.APIKey = cfg.AnthropicAPIKey
	}
	return c
}

func embeddingConfig(cfg *config.Config) embedding.Config {
	c := embedding.Config{
		Provider: embedding.Provider(cfg.EmbedProvider),
		Model:    cfg.EmbedModelName,
		BaseURL:  cfg.EmbedBaseURL,
		Timeout:  cfg.LLMTimeout,
	}
	switch c.Provider {
	case embedding.ProviderOpenAI:
		c.APIKey = cfg.OpenAIAPIKey
	case embedding.ProviderGemini:
		c.APIKey = cfg.GeminiAPIKey
	}
	return c
}

func scoringOptions(cfg *config.Config) scoring.Options {
	return scoring.Options{
		MaxResumeChars:          cfg.MaxResumeChars,
		MaxQuestionsPerCategory: cfg.MaxQuestionsPerCategory,
		Concurrency:             cfg.ScoringConcurrency,
		Policy:                  scoring.FailurePolicy(cfg.ScoringFailurePolicy),
	}
}

func newExtractor(cfg *config.Config) *ingestion.Extractor {
	return ingestion.NewExtractor(cfg.MaxUploadBytes, cfg.MaxPDFPages)
}

// pipeline bundles the long-lived components shared by serve, generate and score.
type pipeline struct {
	client    llm.Client
	embedder  embedding.Embedder
	generator *questions.Generator
	scorer    *scoring.Scorer
	extractor *ingestion.Extractor
}

// newPipeline builds the chat client and, when withEmbeddings is set, the embedder and
// scorer. The embedder is probed so misconfiguration fails before any request.
func newPipeline(ctx context.Context, cfg *config.Config, log *zap.Logger, withEmbeddings bool) (*pipeline, error) {
	if err := prompts.Verify(); err != nil {
		return nil, err
	}

	lc := llmConfig(cfg)
	client, err := llm.NewClient(ctx, lc)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	client = llm.WithLogging(client, lc.Provider, log)

	p := &pipeline{
		client:    client,
		generator: questions.NewGenerator(client, "", log.Named("questions")),
		extractor: newExtractor(cfg),
	}
	if !withEmbeddings {
		return p, nil
	}

	emb, err := embedding.New(ctx, embeddingConfig(cfg))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if err := embedding.Probe(ctx, emb); err != nil {
		_ = client.Close()
		return nil, err
	}
	log.Info("embedding backend ready",
		zap.String(logger.FieldProvider, cfg.EmbedProvider),
		zap.String(logger.FieldModel, cfg.EmbedModelName),
	)

	p.embedder = emb
	p.scorer = scoring.NewScorer(emb, client, scoringOptions(cfg), log.Named("scoring"))
	return p, nil
}

func (p *pipeline) Close() error {
	return p.client.Close()
}

// readUpload loads a local file the same way an HTTP upload is received.
func readUpload(path string) (*ingestion.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &ingestion.Upload{Filename: filepath.Base(path), Data: data}, nil
}

// readSource extracts the text of a file-backed input. maxChars <= 0 means no limit.
func readSource(e *ingestion.Extractor, label, path string, maxChars int) (string, error) {
	if path == "" {
		return "", fmt.Errorf("--%s is required", label)
	}
	upload, err := readUpload(path)
	if err != nil {
		return "", err
	}
	return e.Resolve(ingestion.Source{Label: label, File: upload}, maxChars)
}
