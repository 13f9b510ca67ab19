// Package questions turns a job description into categorized yes/no screening questions
// using an LLM.
package questions

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-scorer/internal/apperr"
	"github.com/jonathan/resume-scorer/internal/llm"
	"github.com/jonathan/resume-scorer/internal/logger"
	"github.com/jonathan/resume-scorer/internal/prompts"
	"github.com/jonathan/resume-scorer/internal/schemas"
	"github.com/jonathan/resume-scorer/internal/types"
)

const logReplyLimit = 500

// Generator extracts screening questions from job descriptions.
type Generator struct {
	client llm.Client
	model  string
	log    *zap.Logger
}

// NewGenerator creates a Generator. An empty model uses the client default.
func NewGenerator(client llm.Client, model string, log *zap.Logger) *Generator {
	return &Generator{client: client, model: model, log: logger.OrNop(log)}
}

// Generate makes one chat call and returns the validated questions. Any transport,
// decoding or schema failure is a generation failure; nothing is retried.
func (g *Generator) Generate(ctx context.Context, jdText string) (*types.JDQuestions, error) {
	user, err := prompts.Render(prompts.QuestionsFile, prompts.KeyUser, map[string]string{
		"JobDescription": jdText,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, apperr.CodeInternal, "question prompt unavailable", err)
	}
	system := prompts.MustGet(prompts.QuestionsFile, prompts.KeySystem)

	reply, err := g.client.Chat(ctx, llm.SystemAndUser(system, user), g.model)
	if err != nil {
		return nil, apperr.Backend(apperr.CodeGenerationFailed, "question generation request failed", err)
	}

	out, err := parseQuestions(reply)
	if err != nil {
		g.log.Debug("unusable question generation reply",
			zap.Error(err),
			zap.String("reply", logger.TruncateForLog(reply, logReplyLimit)),
		)
		return nil, apperr.Backend(apperr.CodeGenerationFailed, "model returned malformed questions", err)
	}

	g.log.Debug("generated questions", zap.Int("total", out.Total()))
	return out, nil
}

// parseQuestions strips fences, checks the schema, decodes and tidies the questions.
func parseQuestions(reply string) (*types.JDQuestions, error) {
	cleaned := llm.CleanJSONBlock(reply)
	if err := schemas.Validate(schemas.JDQuestions, cleaned); err != nil {
		return nil, err
	}

	var out types.JDQuestions
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, err
	}
	out.Education = tidy(out.Education)
	out.Experience = tidy(out.Experience)
	out.TechnicalSkills = tidy(out.TechnicalSkills)
	out.SoftSkills = tidy(out.SoftSkills)
	return &out, nil
}

// tidy trims question text and drops blank questions. Never returns nil so categories
// serialize as [].
func tidy(qs []types.Question) []types.Question {
	out := make([]types.Question, 0, len(qs))
	for _, q := range qs {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}
		out = append(out, types.Question{Question: text})
	}
	return out
}
