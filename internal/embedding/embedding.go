// Package embedding turns text into unit-length vectors and compares them.
package embedding

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonathan/resume-scorer/internal/apperr"
)

// Embedder maps texts to one L2-normalized vector per text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider names an embedding backend
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

const probeText = "embedding probe"

// Config selects and configures an embedding backend.
type Config struct {
	Provider Provider
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// New builds the configured backend wrapped in normalization.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model name is required")
	}

	var backend Embedder
	switch cfg.Provider {
	case ProviderOllama, "":
		backend = NewOllama(cfg.BaseURL, cfg.Model, cfg.Timeout)
	case ProviderOpenAI:
		b, err := NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		backend = b
	case ProviderGemini:
		b, err := NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return Normalizing(backend), nil
}

// Probe embeds a fixed string so a misconfigured backend fails at startup rather than on
// the first request.
func Probe(ctx context.Context, e Embedder) error {
	vecs, err := e.Embed(ctx, []string{probeText})
	if err != nil {
		return fmt.Errorf("embedding probe failed: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return fmt.Errorf("embedding probe returned no vector")
	}
	return nil
}

type normalizing struct {
	inner Embedder
}

// Normalizing wraps e so every returned row has unit length and the row count matches
// the input. Empty input never reaches e.
func Normalizing(e Embedder) Embedder {
	if n, ok := e.(*normalizing); ok {
		return n
	}
	return &normalizing{inner: e}
}

func (n *normalizing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vecs, err := n.inner.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, apperr.Backend(apperr.CodeEmbeddingFailed,
			fmt.Sprintf("embedding backend returned %d vectors for %d texts", len(vecs), len(texts)), nil)
	}
	out := make([][]float32, len(vecs))
	for i, v := range vecs {
		out[i] = Normalize(v)
	}
	return out, nil
}

// Normalize returns v scaled to unit length. A zero vector stays zero.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Similarity returns the len(a) x len(b) matrix of inner products. For normalized rows
// this is cosine similarity; values are clamped into [-1, 1].
func Similarity(a, b [][]float32) [][]float64 {
	out := make([][]float64, len(a))
	for i, row := range a {
		out[i] = make([]float64, len(b))
		for j, col := range b {
			out[i][j] = clamp(dot(row, col))
		}
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

func backendErr(provider Provider, err error) error {
	return apperr.Backend(apperr.CodeEmbeddingFailed, fmt.Sprintf("%s embedding request failed", provider), err)
}
