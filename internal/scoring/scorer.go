// Package scoring answers screening questions against a résumé with retrieval-augmented
// LLM calls and aggregates the per-question scores.
package scoring

import (
	"context"
	"fmt"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-scorer/internal/apperr"
	"github.com/jonathan/resume-scorer/internal/chunking"
	"github.com/jonathan/resume-scorer/internal/embedding"
	"github.com/jonathan/resume-scorer/internal/llm"
	"github.com/jonathan/resume-scorer/internal/logger"
	"github.com/jonathan/resume-scorer/internal/prompts"
	"github.com/jonathan/resume-scorer/internal/retrieval"
	"github.com/jonathan/resume-scorer/internal/types"
)

// FailurePolicy decides what a single failed question does to the whole call.
type FailurePolicy string

const (
	// PolicyIsolate records a degraded question and keeps scoring the rest
	PolicyIsolate FailurePolicy = "isolate"
	// PolicyAbort fails the whole call on the first failed question
	PolicyAbort FailurePolicy = "abort"
)

// Defaults
const (
	DefaultMaxResumeChars          = 20000
	DefaultMaxQuestionsPerCategory = 25
	DefaultTopK                    = 3
	DefaultConcurrency             = 4

	noEvidenceReasoning = "No résumé evidence was available to answer this question."
	answerNo            = "No"
)

// Options configures a Scorer. Zero values take the defaults.
type Options struct {
	MaxResumeChars          int
	MaxQuestionsPerCategory int
	Concurrency             int
	Policy                  FailurePolicy
	// Model overrides the client's default model
	Model string
}

func (o Options) withDefaults() Options {
	if o.MaxResumeChars <= 0 {
		o.MaxResumeChars = DefaultMaxResumeChars
	}
	if o.MaxQuestionsPerCategory <= 0 {
		o.MaxQuestionsPerCategory = DefaultMaxQuestionsPerCategory
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Policy == "" {
		o.Policy = PolicyIsolate
	}
	return o
}

// Scorer scores résumés against generated questions.
type Scorer struct {
	embedder embedding.Embedder
	client   llm.Client
	opts     Options
	log      *zap.Logger
}

// NewScorer creates a Scorer.
func NewScorer(e embedding.Embedder, client llm.Client, opts Options, log *zap.Logger) *Scorer {
	return &Scorer{
		embedder: e,
		client:   client,
		opts:     opts.withDefaults(),
		log:      logger.OrNop(log),
	}
}

type job struct {
	category types.Category
	question string
}

// questionFailure is a per-question failure. transport is false when the backend
// answered but the reply could not be parsed.
type questionFailure struct {
	err       error
	transport bool
}

// Score answers every question (capped per category) from résumé evidence. The output
// order is category order, then question order, regardless of concurrency.
func (s *Scorer) Score(ctx context.Context, q *types.JDQuestions, resumeText string, topK int) (*types.ResumeRagResult, error) {
	if n := utf8.RuneCountInString(resumeText); n > s.opts.MaxResumeChars {
		return nil, apperr.Validation(fmt.Sprintf("résumé text is %d characters, above the limit of %d", n, s.opts.MaxResumeChars))
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	jobs := s.plan(q)
	if len(jobs) == 0 {
		return &types.ResumeRagResult{Questions: []types.ScoredQuestion{}}, nil
	}

	index, err := retrieval.BuildIndex(ctx, s.embedder, resumeText, chunking.ResumeMaxChars, chunking.ResumeOverlap)
	if err != nil {
		return nil, apperr.Backend(apperr.CodeScoringFailed, "failed to index résumé", err)
	}

	results := make([]types.ScoredQuestion, len(jobs))
	var transportFailures atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			sq, failure := s.scoreOne(gctx, j, index, topK)
			if failure != nil {
				if s.opts.Policy == PolicyAbort {
					return failure.err
				}
				if failure.transport {
					transportFailures.Add(1)
				}
				sq = degrade(sq, failure.err)
				s.log.Warn("question scoring degraded",
					zap.String("category", string(j.category)),
					zap.String("question", logger.TruncateForLog(j.question, 120)),
					zap.Error(failure.err),
				)
			}
			results[i] = sq
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Backend(apperr.CodeScoringFailed, "scoring aborted on a failed question", err)
	}

	if int(transportFailures.Load()) == len(jobs) {
		return nil, apperr.Backend(apperr.CodeScoringFailed, "every scoring request failed", nil)
	}
	return aggregate(results), nil
}

// plan flattens the questions in category order, capping each category.
func (s *Scorer) plan(q *types.JDQuestions) []job {
	var jobs []job
	for _, cat := range types.Categories {
		qs := q.ForCategory(cat)
		if len(qs) > s.opts.MaxQuestionsPerCategory {
			qs = qs[:s.opts.MaxQuestionsPerCategory]
		}
		for _, question := range qs {
			jobs = append(jobs, job{category: cat, question: question.Question})
		}
	}
	return jobs
}

func (s *Scorer) scoreOne(ctx context.Context, j job, index *types.EmbeddingIndex, topK int) (types.ScoredQuestion, *questionFailure) {
	sq := types.ScoredQuestion{
		Category:        j.category,
		Question:        j.question,
		RetrievedChunks: []types.RetrievedChunk{},
	}

	if index.Len() == 0 {
		sq.Answer = answerNo
		sq.Score = MinScore
		sq.Reasoning = noEvidenceReasoning
		return sq, nil
	}

	chunks, err := retrieval.Retrieve(ctx, s.embedder, j.question, index, topK)
	if err != nil {
		return sq, &questionFailure{err: err, transport: true}
	}
	sq.RetrievedChunks = chunks
	evidence := retrieval.JoinEvidence(chunks)
	sq.EvidenceChars = utf8.RuneCountInString(evidence)

	user, err := prompts.Render(prompts.ScoringFile, prompts.KeyUser, map[string]string{
		"Question": j.question,
		"Evidence": evidence,
	})
	if err != nil {
		return sq, &questionFailure{err: err}
	}
	system := prompts.MustGet(prompts.ScoringFile, prompts.KeySystem)

	content, err := s.client.Chat(ctx, llm.SystemAndUser(system, user), s.opts.Model)
	if err != nil {
		return sq, &questionFailure{err: err, transport: true}
	}

	reply, err := ParseReply(content)
	if err != nil {
		s.log.Debug("unparseable scoring reply", zap.String("reply", logger.TruncateForLog(content, 500)))
		return sq, &questionFailure{err: err}
	}
	sq.Answer = reply.Answer
	sq.Score = reply.Score
	sq.Reasoning = reply.Reasoning
	return sq, nil
}

func degrade(sq types.ScoredQuestion, err error) types.ScoredQuestion {
	sq.Score = MinScore
	sq.Failed = true
	sq.Error = err.Error()
	sq.Reasoning = "scoring failed: " + err.Error()
	return sq
}

func aggregate(results []types.ScoredQuestion) *types.ResumeRagResult {
	out := &types.ResumeRagResult{Questions: results}
	if len(results) == 0 {
		return out
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
		if r.Failed {
			out.FailedQuestions++
		}
	}
	out.AverageScore = sum / float64(len(results))
	return out
}
