package types

// TextChunk is a positional window over a source text.
// Start and End are rune offsets into the trimmed text; End is exclusive.
type TextChunk struct {
	ID    int    `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// EmbeddingIndex pairs chunks with their normalized embeddings.
// Vectors[i] is the embedding of Chunks[i].
type EmbeddingIndex struct {
	Chunks  []TextChunk
	Vectors [][]float32
}

// Len returns the number of indexed chunks.
func (idx *EmbeddingIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Chunks)
}

// RetrievedChunk is a ranked snapshot of one chunk's relevance to one question.
type RetrievedChunk struct {
	ChunkID    int     `json:"chunk_id"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
}

// ScoredQuestion is the audited answer to a single screening question.
type ScoredQuestion struct {
	Category        Category         `json:"category"`
	Question        string           `json:"question"`
	Answer          string           `json:"answer"`
	Score           float64          `json:"score"` // 0-10
	Reasoning       string           `json:"reasoning"`
	EvidenceChars   int              `json:"evidence_chars"` // runes of joined evidence text
	RetrievedChunks []RetrievedChunk `json:"retrieved_chunks"`
	Failed          bool             `json:"failed,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// ResumeRagResult is the final report for one résumé against one set of questions.
type ResumeRagResult struct {
	Questions       []ScoredQuestion `json:"questions"`
	AverageScore    float64          `json:"average_score"`
	FailedQuestions int              `json:"failed_questions,omitempty"`
}
