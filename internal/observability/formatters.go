// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-scorer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	p.printLine(title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		p.printLine(line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printLine pads by runes rather than bytes so accented text keeps the border aligned.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printLine(line string) {
	inner := boxWidth - 4
	line = truncate(line, inner)
	fmt.Fprintf(p.out, "│ %s%s │\n", line, strings.Repeat(" ", inner-len([]rune(line))))
}

// PrintQuestions outputs the generated screening questions grouped by category.
func (p *Printer) PrintQuestions(q *types.JDQuestions) {
	if q == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total questions: %d\n", q.Total()))

	for _, c := range types.Categories {
		list := q.ForCategory(c)
		if len(list) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s (%d):\n", c, len(list)))
		count := min(len(list), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", truncate(list[i].Question, 50)))
		}
		if len(list) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(list)-maxItemsToShow))
		}
	}

	p.printBox("SCREENING QUESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScoreReport outputs the average score, the per-category averages and the
// weakest answered questions.
func (p *Printer) PrintScoreReport(result *types.ResumeRagResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Average score: %.2f / 10\n", result.AverageScore))
	sb.WriteString(fmt.Sprintf("Questions:     %d", len(result.Questions)))
	if result.FailedQuestions > 0 {
		sb.WriteString(fmt.Sprintf(" (%d failed)", result.FailedQuestions))
	}
	sb.WriteString("\n")

	sums := map[types.Category]float64{}
	counts := map[types.Category]int{}
	var weak []types.ScoredQuestion
	for _, sq := range result.Questions {
		if sq.Failed {
			continue
		}
		sums[sq.Category] += sq.Score
		counts[sq.Category]++
		if sq.Score < 5 {
			weak = append(weak, sq)
		}
	}

	if len(counts) > 0 {
		sb.WriteString("\nBy category:\n")
		for _, c := range types.Categories {
			if counts[c] == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %-18s %5.2f\n", c, sums[c]/float64(counts[c])))
		}
	}

	if len(weak) > 0 {
		sb.WriteString("\nGaps:\n")
		count := min(len(weak), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ✗ %s (%.0f)\n", truncate(weak[i].Question, 44), weak[i].Score))
		}
		if len(weak) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(weak)-maxItemsToShow))
		}
	}

	p.printBox("RÉSUMÉ SCORE", strings.TrimSuffix(sb.String(), "\n"))
}
