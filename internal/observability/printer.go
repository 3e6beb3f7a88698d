// Package observability provides formatted output utilities for verbose
// CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-match-engine/internal/types"
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

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintOptimizedScore outputs a human-readable summary of an optimized
// match score.
func (p *Printer) PrintOptimizedScore(score *types.OptimizedMatchScore) {
	if score == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall:  %.1f / 100\n\n", score.Score))

	sb.WriteString("Breakdown:\n")
	for _, entry := range score.Breakdown {
		sb.WriteString(fmt.Sprintf("  %-12s %6.1f  (%d matches)\n", entry.Category, entry.Score, entry.Matches))
	}

	if len(score.MissingSkills) > 0 {
		sb.WriteString("\nMissing skills:\n")
		count := min(len(score.MissingSkills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", score.MissingSkills[i]))
		}
		if len(score.MissingSkills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(score.MissingSkills)-maxItemsToShow))
		}
	}

	if len(score.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for i, suggestion := range score.Suggestions {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion))
		}
	}

	p.printBox("OPTIMIZED MATCH SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchResults outputs the per-requirement matches with quality
// bands.
func (p *Printer) PrintMatchResults(results *types.JDMatchingResults) {
	if results == nil || len(results.Matches) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:     %s\n", results.JDMetadata.Title))
	if results.JDMetadata.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", results.JDMetadata.Company))
	}
	sb.WriteString(fmt.Sprintf("Overall:  %.1f / 100\n\n", results.OverallScore))

	count := min(len(results.Matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		match := results.Matches[i]
		target := "(no match)"
		if match.CVComponent != nil {
			target = match.CVComponent.Title
		}
		sb.WriteString(fmt.Sprintf("  %-9s %5.1f  %s → %s\n", match.Quality, match.Score, match.JDComponent.Title, target))
	}
	if len(results.Matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(results.Matches)-maxItemsToShow))
	}

	p.printBox("REQUIREMENT MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVariantRecommendation outputs the variant comparison with the
// recommended focus area first.
func (p *Printer) PrintVariantRecommendation(rec *types.VariantRecommendation) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Recommended: %s (%.1f)\n\n", rec.Recommended.FocusArea, rec.Recommended.Score))
	for _, entry := range rec.Comparison {
		marker := " "
		if entry.FocusArea == rec.Recommended.FocusArea {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("  %s %-11s %6.1f  (Δ %+.1f)\n", marker, entry.FocusArea, entry.Score, entry.Delta))
	}

	p.printBox("CV VARIANTS", strings.TrimSuffix(sb.String(), "\n"))
}
