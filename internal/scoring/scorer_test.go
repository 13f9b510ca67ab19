package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/resume-scorer/internal/apperr"
	"github.com/jonathan/resume-scorer/internal/embedding"
	"github.com/jonathan/resume-scorer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const licenseResume = "Delivery driver. Holds a valid driver's license with a clean record. Forklift certified."

func newTestScorer(opts Options) (*Scorer, *keywordEmbedder, *keywordModel) {
	emb := &keywordEmbedder{}
	model := &keywordModel{}
	return NewScorer(embedding.Normalizing(emb), model, opts, nil), emb, model
}

func TestScore_OversizedResume(t *testing.T) {
	s, emb, model := newTestScorer(Options{MaxResumeChars: 10})
	q := &types.JDQuestions{Experience: []types.Question{{Question: "Does the candidate have sales experience?"}}}

	_, err := s.Score(context.Background(), q, strings.Repeat("é", 11), 3)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Equal(t, int32(0), emb.calls.Load())
	assert.Equal(t, 0, model.callCount())

	_, err = s.Score(context.Background(), q, strings.Repeat("é", 10), 3)
	assert.NoError(t, err, "limit counts characters, not bytes")
}

func TestScore_OrderAndAggregate(t *testing.T) {
	s, _, model := newTestScorer(Options{Concurrency: 3})
	model.delay = 5 * time.Millisecond

	q := &types.JDQuestions{
		Education:       []types.Question{{Question: "Does the candidate hold a degree?"}},
		Experience:      []types.Question{{Question: "Does the candidate hold a driver's license?"}, {Question: "Does the candidate have 3+ years of sales experience?"}},
		TechnicalSkills: []types.Question{{Question: "Does the candidate know Go and Kubernetes?"}},
		SoftSkills:      []types.Question{{Question: "Does the candidate lead a team?"}},
	}

	res, err := s.Score(context.Background(), q, licenseResume, 2)
	require.NoError(t, err)
	require.Len(t, res.Questions, 5)

	wantOrder := []types.Category{
		types.CategoryEducation,
		types.CategoryExperience,
		types.CategoryExperience,
		types.CategoryTechnicalSkills,
		types.CategorySoftSkills,
	}
	var sum float64
	for i, sq := range res.Questions {
		assert.Equal(t, wantOrder[i], sq.Category)
		assert.False(t, sq.Failed)
		assert.LessOrEqual(t, len(sq.RetrievedChunks), 2)
		assert.Greater(t, sq.EvidenceChars, 0)
		sum += sq.Score
	}
	assert.Equal(t, "Does the candidate hold a driver's license?", res.Questions[1].Question)
	assert.Equal(t, 9.0, res.Questions[1].Score)
	assert.Equal(t, "Yes", res.Questions[1].Answer)
	assert.Equal(t, 1.0, res.Questions[2].Score)
	assert.InDelta(t, sum/5, res.AverageScore, 1e-9)
	assert.Equal(t, 0, res.FailedQuestions)
	assert.Equal(t, 5, model.callCount())
}

func TestScore_ConcurrencyLimit(t *testing.T) {
	s, _, model := newTestScorer(Options{Concurrency: 2})
	model.delay = 10 * time.Millisecond

	var qs []types.Question
	for i := 0; i < 8; i++ {
		qs = append(qs, types.Question{Question: fmt.Sprintf("Does the candidate hold license %d?", i)})
	}
	res, err := s.Score(context.Background(), &types.JDQuestions{TechnicalSkills: qs}, licenseResume, 1)
	require.NoError(t, err)
	require.Len(t, res.Questions, 8)
	for i, sq := range res.Questions {
		assert.Equal(t, qs[i].Question, sq.Question)
	}
	assert.LessOrEqual(t, model.maxSeen.Load(), int32(2))
}

func TestScore_CapsPerCategory(t *testing.T) {
	s, _, model := newTestScorer(Options{MaxQuestionsPerCategory: 2})
	q := &types.JDQuestions{
		Education:  []types.Question{{Question: "q1"}, {Question: "q2"}, {Question: "q3"}},
		SoftSkills: []types.Question{{Question: "q4"}},
	}

	res, err := s.Score(context.Background(), q, licenseResume, 3)
	require.NoError(t, err)
	require.Len(t, res.Questions, 3)
	assert.Equal(t, "q2", res.Questions[1].Question)
	assert.Equal(t, "q4", res.Questions[2].Question)
	assert.Equal(t, 3, model.callCount())
}

func TestScore_NoQuestions(t *testing.T) {
	s, emb, model := newTestScorer(Options{})

	for _, q := range []*types.JDQuestions{nil, {}} {
		res, err := s.Score(context.Background(), q, licenseResume, 3)
		require.NoError(t, err)
		assert.Empty(t, res.Questions)
		assert.NotNil(t, res.Questions)
		assert.Equal(t, 0.0, res.AverageScore)
	}
	assert.Equal(t, int32(0), emb.calls.Load())
	assert.Equal(t, 0, model.callCount())
}

func TestScore_EmptyEvidence(t *testing.T) {
	s, _, model := newTestScorer(Options{})
	q := &types.JDQuestions{Experience: []types.Question{{Question: "Does the candidate hold a driver's license?"}}}

	res, err := s.Score(context.Background(), q, "   ", 3)
	require.NoError(t, err)
	require.Len(t, res.Questions, 1)

	sq := res.Questions[0]
	assert.Equal(t, "No", sq.Answer)
	assert.Equal(t, 0.0, sq.Score)
	assert.Contains(t, sq.Reasoning, "No résumé evidence")
	assert.Empty(t, sq.RetrievedChunks)
	assert.False(t, sq.Failed)
	assert.Equal(t, 0, model.callCount())
}

func TestScore_IsolatePolicy(t *testing.T) {
	s, _, model := newTestScorer(Options{Policy: PolicyIsolate})
	model.scripted = map[string]string{"Is the reply broken?": "I think the candidate is great!"}
	model.failing = map[string]bool{"Is the backend down?": true}

	q := &types.JDQuestions{Experience: []types.Question{
		{Question: "Does the candidate hold a driver's license?"},
		{Question: "Is the reply broken?"},
		{Question: "Is the backend down?"},
	}}

	res, err := s.Score(context.Background(), q, licenseResume, 3)
	require.NoError(t, err)
	require.Len(t, res.Questions, 3)

	assert.False(t, res.Questions[0].Failed)
	assert.Equal(t, 9.0, res.Questions[0].Score)

	for _, sq := range res.Questions[1:] {
		assert.True(t, sq.Failed)
		assert.Equal(t, 0.0, sq.Score)
		assert.NotEmpty(t, sq.Error)
		assert.True(t, strings.HasPrefix(sq.Reasoning, "scoring failed: "))
	}
	assert.Contains(t, res.Questions[1].Error, "parse error")
	assert.Contains(t, res.Questions[2].Error, "connection refused")
	assert.Equal(t, 2, res.FailedQuestions)
	assert.InDelta(t, 3.0, res.AverageScore, 1e-9)
}

func TestScore_IsolateAllTransportFailures(t *testing.T) {
	s, _, model := newTestScorer(Options{})
	model.failing = map[string]bool{"a": true, "b": true}

	q := &types.JDQuestions{Education: []types.Question{{Question: "a"}, {Question: "b"}}}
	_, err := s.Score(context.Background(), q, licenseResume, 3)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeScoringFailed, apperr.CodeOf(err))
}

func TestScore_IsolateAllParseFailuresStillReports(t *testing.T) {
	s, _, model := newTestScorer(Options{})
	model.scripted = map[string]string{"a": "nope", "b": "[]"}

	q := &types.JDQuestions{Education: []types.Question{{Question: "a"}, {Question: "b"}}}
	res, err := s.Score(context.Background(), q, licenseResume, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FailedQuestions)
	assert.Equal(t, 0.0, res.AverageScore)
}

func TestScore_AbortPolicy(t *testing.T) {
	tests := []struct {
		name     string
		scripted map[string]string
		failing  map[string]bool
	}{
		{name: "parse failure", scripted: map[string]string{"b": "not json"}},
		{name: "transport failure", failing: map[string]bool{"b": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, model := newTestScorer(Options{Policy: PolicyAbort, Concurrency: 1})
			model.scripted = tt.scripted
			model.failing = tt.failing

			q := &types.JDQuestions{Education: []types.Question{{Question: "a"}, {Question: "b"}, {Question: "c"}}}
			_, err := s.Score(context.Background(), q, licenseResume, 3)
			require.Error(t, err)
			assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
			assert.Equal(t, apperr.CodeScoringFailed, apperr.CodeOf(err))
		})
	}
}

func TestScore_IndexFailure(t *testing.T) {
	s, emb, model := newTestScorer(Options{})
	emb.err = errors.New("embedding backend down")

	q := &types.JDQuestions{Education: []types.Question{{Question: "a"}}}
	_, err := s.Score(context.Background(), q, licenseResume, 3)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeScoringFailed, apperr.CodeOf(err))
	assert.ErrorContains(t, err, "embedding backend down")
	assert.Equal(t, 0, model.callCount())
}

func TestScore_DefaultTopK(t *testing.T) {
	s, _, _ := newTestScorer(Options{})
	resume := strings.Repeat("Drove trucks with a driver's license for years. ", 80)

	q := &types.JDQuestions{Experience: []types.Question{{Question: "Does the candidate hold a driver's license?"}}}
	res, err := s.Score(context.Background(), q, resume, 0)
	require.NoError(t, err)
	assert.Len(t, res.Questions[0].RetrievedChunks, DefaultTopK)
}
