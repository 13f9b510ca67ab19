package main

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-scorer/internal/ingestion"
	"github.com/jonathan/resume-scorer/internal/observability"
	"github.com/jonathan/resume-scorer/internal/types"
)

var (
	scoreJDFile     string
	scoreResumeFile string
	scoreTopK       int
	scoreVerbose    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a résumé against a job description",
	Long:  "Generate screening questions from the job description and answer each one from the résumé, printing the full report as JSON.",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreJDFile, "jd", "", "Path to the job description file (required)")
	scoreCmd.Flags().StringVar(&scoreResumeFile, "resume", "", "Path to the résumé file (required)")
	scoreCmd.Flags().IntVar(&scoreTopK, "top-k", 0, "Résumé chunks retrieved per question (default TOP_K)")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print a human-readable summary to stderr")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	topK := cfg.TopK
	if scoreTopK > 0 {
		topK = scoreTopK
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	p, err := newPipeline(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	jdText, err := readSource(p.extractor, "jd", scoreJDFile, cfg.MaxJDChars)
	if err != nil {
		return err
	}
	resumeText, err := readSource(p.extractor, "resume", scoreResumeFile, cfg.MaxResumeChars)
	if err != nil {
		return err
	}

	q, err := p.generator.Generate(ctx, jdText)
	if err != nil {
		return fmt.Errorf("failed to generate questions: %w", err)
	}
	result, err := p.scorer.Score(ctx, q, resumeText, topK)
	if err != nil {
		return fmt.Errorf("failed to score résumé: %w", err)
	}

	if scoreVerbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintQuestions(q)
		printer.PrintScoreReport(result)
	}

	return writeJSON(cmd, types.ScoreResponse{
		Success:             true,
		Result:              result,
		JDTextLength:        utf8.RuneCountInString(jdText),
		ResumeTextLength:    utf8.RuneCountInString(resumeText),
		JDTokenEstimate:     ingestion.EstimateTokens(jdText),
		ResumeTokenEstimate: ingestion.EstimateTokens(resumeText),
		JDText:              jdText,
		ResumeText:          resumeText,
		Questions:           q,
		Message:             fmt.Sprintf("Scored %d questions.", len(result.Questions)),
	})
}
