// Package retrieval builds an in-memory chunk index over a document and ranks chunks
// against a query.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-scorer/internal/chunking"
	"github.com/jonathan/resume-scorer/internal/embedding"
	"github.com/jonathan/resume-scorer/internal/types"
)

// EvidenceSeparator joins retrieved chunk texts.
const EvidenceSeparator = "\n\n---\n\n"

// BuildIndex chunks text and embeds every chunk. Empty text gives an empty index
// without calling the embedder.
func BuildIndex(ctx context.Context, e embedding.Embedder, text string, maxChars, overlap int) (*types.EmbeddingIndex, error) {
	chunks := chunking.Chunk(text, maxChars, overlap)
	if len(chunks) == 0 {
		return &types.EmbeddingIndex{}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vecs) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(chunks))
	}
	return &types.EmbeddingIndex{Chunks: chunks, Vectors: vecs}, nil
}

// Retrieve returns the topK chunks most similar to query, best first. Equal scores keep
// chunk order, so the lower chunk ID wins a tie.
func Retrieve(ctx context.Context, e embedding.Embedder, query string, index *types.EmbeddingIndex, topK int) ([]types.RetrievedChunk, error) {
	if index.Len() == 0 || topK <= 0 {
		return []types.RetrievedChunk{}, nil
	}

	qv, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(qv))
	}
	scores := embedding.Similarity(qv, index.Vectors)[0]

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}
	out := make([]types.RetrievedChunk, 0, topK)
	for _, i := range order[:topK] {
		c := index.Chunks[i]
		out = append(out, types.RetrievedChunk{
			ChunkID:    c.ID,
			Start:      c.Start,
			End:        c.End,
			Similarity: scores[i],
			Text:       c.Text,
		})
	}
	return out, nil
}

// JoinEvidence concatenates chunk texts in ranked order.
func JoinEvidence(chunks []types.RetrievedChunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, EvidenceSeparator)
}
