package scoring

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/resume-scorer/internal/llm"
)

var vocab = []string{"license", "driver", "sales", "years", "go", "kubernetes", "degree", "team"}

// keywordEmbedder counts vocabulary words, plus a constant dimension so no row is zero.
type keywordEmbedder struct {
	calls atomic.Int32
	err   error
}

func (k *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	k.calls.Add(1)
	if k.err != nil {
		return nil, k.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		lower := strings.ToLower(t)
		row := make([]float32, len(vocab)+1)
		for j, w := range vocab {
			row[j] = float32(strings.Count(lower, w))
		}
		row[len(vocab)] = 0.1
		out[i] = row
	}
	return out, nil
}

// keywordModel scores a question 9 when every vocabulary word in it appears in the
// evidence and 1 otherwise. Replies and errors can be scripted per question.
type keywordModel struct {
	mu       sync.Mutex
	calls    int
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
	scripted map[string]string
	failing  map[string]bool
}

func (m *keywordModel) Chat(_ context.Context, messages []llm.Message, _ string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	cur := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if cur <= seen || m.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	question, evidence := splitScoringPrompt(messages[len(messages)-1].Content)
	if m.failing[question] {
		return "", &llm.BackendError{Provider: llm.ProviderOllama, Message: "connection refused", Cause: errors.New("dial tcp")}
	}
	if reply, ok := m.scripted[question]; ok {
		return reply, nil
	}

	q := strings.ToLower(question)
	ev := strings.ToLower(evidence)
	matched, wanted := 0, 0
	for _, w := range vocab {
		if strings.Contains(q, w) {
			wanted++
			if strings.Contains(ev, w) {
				matched++
			}
		}
	}
	if wanted > 0 && matched == wanted {
		return "```json\n{\"answer\": \"Yes\", \"score\": 9, \"reasoning\": \"stated in the résumé\"}\n```", nil
	}
	return `{"answer": "No", "score": 1, "reasoning": "not mentioned"}`, nil
}

func (m *keywordModel) DefaultModel() string { return "keyword" }
func (m *keywordModel) Close() error         { return nil }

func (m *keywordModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func splitScoringPrompt(user string) (question, evidence string) {
	_, rest, _ := strings.Cut(user, "Question:\n")
	question, rest, _ = strings.Cut(rest, "\n\n")
	_, rest, _ = strings.Cut(rest, "\"\"\"\n")
	evidence, _, _ = strings.Cut(rest, "\n\"\"\"")
	return question, evidence
}
