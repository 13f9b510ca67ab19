package ingestion

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-scorer/internal/apperr"
)

// Source is one logical input (the job description or the résumé) as submitted: form
// text, a file, both or neither.
type Source struct {
	// Label names the input in error messages, e.g. "jd" or "resume"
	Label string
	Text  string
	File  *Upload
}

// Resolve enforces that exactly one of text or file was provided and returns the input
// text. Text, typed or extracted from the file, longer than maxChars characters is
// rejected; maxChars <= 0 disables the check.
func (e *Extractor) Resolve(src Source, maxChars int) (string, error) {
	hasText := src.Text != ""
	hasFile := src.File != nil

	switch {
	case hasText && hasFile:
		return "", apperr.Client(apperr.CodeBothProvided,
			fmt.Sprintf("%s: provide either %s_text OR %s_file, not both.", src.Label, src.Label, src.Label))
	case !hasText && !hasFile:
		return "", apperr.Client(apperr.CodeMissingInput,
			fmt.Sprintf("%s is required. Provide %s_text or %s_file.", src.Label, src.Label, src.Label))
	case hasFile:
		text, err := e.ExtractText(*src.File)
		if err != nil {
			return "", err
		}
		if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
			return "", apperr.TooLarge(apperr.CodeTextTooLarge,
				fmt.Sprintf("%s_file text is too long (>%d characters).", src.Label, maxChars))
		}
		return text, nil
	}

	text := strings.TrimSpace(src.Text)
	if text == "" {
		return "", apperr.Client(apperr.CodeEmptyText, fmt.Sprintf("%s_text is empty.", src.Label))
	}
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		return "", apperr.TooLarge(apperr.CodeTextTooLarge,
			fmt.Sprintf("%s_text is too long (>%d characters).", src.Label, maxChars))
	}
	return text, nil
}
