// Package chunking splits text into fixed-size, overlapping windows.
package chunking

import (
	"strings"

	"github.com/jonathan/resume-scorer/internal/types"
)

const (
	// DefaultMaxChars is the window size used when the caller passes a non-positive size
	DefaultMaxChars = 600
	// DefaultOverlap is the default number of characters shared by consecutive windows
	DefaultOverlap = 100

	// ResumeMaxChars is the window size used for résumé evidence
	ResumeMaxChars = 700
	// ResumeOverlap is the overlap used for résumé evidence
	ResumeOverlap = 150
)

// Chunk splits text into windows of at most maxChars runes, each starting overlap runes
// before the end of the previous one. Offsets are rune indices into the trimmed text.
// Chunking is positional only; word and sentence boundaries are ignored.
func Chunk(text string, maxChars, overlap int) []types.TextChunk {
	runes := []rune(strings.TrimSpace(text))
	n := len(runes)
	if n == 0 {
		return nil
	}

	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars - 1
	}

	var chunks []types.TextChunk
	start := 0
	for {
		end := start + maxChars
		if end > n {
			end = n
		}
		chunks = append(chunks, types.TextChunk{
			ID:    len(chunks),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
		if end >= n {
			break
		}
		start = end - overlap
	}
	return chunks
}
