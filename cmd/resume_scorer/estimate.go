package main

import (
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-scorer/internal/ingestion"
	"github.com/jonathan/resume-scorer/internal/types"
)

var (
	estimateJDFile     string
	estimateResumeFile string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate token counts for a job description and résumé",
	Long:  "Extract both files and print their lengths and approximate token counts. No model is called and no configuration is needed.",
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().StringVar(&estimateJDFile, "jd", "", "Path to the job description file (required)")
	estimateCmd.Flags().StringVar(&estimateResumeFile, "resume", "", "Path to the résumé file (required)")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	extractor := ingestion.NewExtractor(0, 0)

	jdText, err := readSource(extractor, "jd", estimateJDFile, 0)
	if err != nil {
		return err
	}
	resumeText, err := readSource(extractor, "resume", estimateResumeFile, 0)
	if err != nil {
		return err
	}

	return writeJSON(cmd, types.TokenEstimateResponse{
		JDTextLength:        utf8.RuneCountInString(jdText),
		ResumeTextLength:    utf8.RuneCountInString(resumeText),
		JDTokenEstimate:     ingestion.EstimateTokens(jdText),
		ResumeTokenEstimate: ingestion.EstimateTokens(resumeText),
	})
}
