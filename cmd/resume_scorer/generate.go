package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-scorer/internal/observability"
)

var (
	generateJDFile  string
	generateVerbose bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate screening questions from a job description",
	Long:  "Generate yes/no screening questions, grouped by category, from a job description file (text, HTML or PDF).",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateJDFile, "jd", "", "Path to the job description file (required)")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print a human-readable summary to stderr")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	p, err := newPipeline(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	jdText, err := readSource(p.extractor, "jd", generateJDFile, cfg.MaxJDChars)
	if err != nil {
		return err
	}

	q, err := p.generator.Generate(ctx, jdText)
	if err != nil {
		return fmt.Errorf("failed to generate questions: %w", err)
	}
	if generateVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintQuestions(q)
	}
	return writeJSON(cmd, q)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
