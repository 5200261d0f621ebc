// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/dchen/portfolio-engine/internal/scoring"
	"github.com/dchen/portfolio-engine/internal/types"
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

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintAttemptTrail outputs the provider attempt sequence for a run.
func (p *Printer) PrintAttemptTrail(attempts []types.ParseAttempt) {
	if len(attempts) == 0 {
		return
	}

	var sb strings.Builder
	for i, attempt := range attempts {
		sb.WriteString(fmt.Sprintf("#%d  %-10s %s", i+1, attempt.Provider, attempt.Outcome))
		if attempt.Outcome == types.OutcomeSuccess {
			sb.WriteString(fmt.Sprintf("  score %.1f", attempt.Score))
		}
		if attempt.Latency > 0 {
			sb.WriteString(fmt.Sprintf("  (%dms)", attempt.Latency.Milliseconds()))
		}
		sb.WriteString("\n")
	}

	p.printBox("PROVIDER ATTEMPTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScoreBreakdown outputs the per-band quality sub-scores.
func (p *Printer) PrintScoreBreakdown(provider string, breakdown scoring.Breakdown) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Provider: %s\n\n", provider))
	sb.WriteString(fmt.Sprintf("Identity:     %5.1f / %.0f\n", breakdown.Identity, scoring.IdentityMax))
	sb.WriteString(fmt.Sprintf("Format:       %5.1f / %.0f\n", breakdown.Format, scoring.FormatMax))
	sb.WriteString(fmt.Sprintf("Structure:    %5.1f / %.0f\n", breakdown.Structure, scoring.StructureMax))
	sb.WriteString(fmt.Sprintf("Consistency:  %5.1f / %.0f\n", breakdown.Consistency, scoring.ConsistencyMax))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total:        %5.1f / 100", breakdown.Total))

	p.printBox("QUALITY SCORE", sb.String())
}

// PrintSuggestions outputs the cross-validation suggestion list.
func (p *Printer) PrintSuggestions(suggestions []types.Suggestion) {
	if len(suggestions) == 0 {
		return
	}

	var sb strings.Builder
	applied := 0
	for _, s := range suggestions {
		if s.Applied {
			applied++
		}
	}
	sb.WriteString(fmt.Sprintf("%d suggestions (%d applied)\n\n", len(suggestions), applied))

	count := min(len(suggestions), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := suggestions[i]
		marker := " "
		if s.Applied {
			marker = "+"
		}
		value := s.NewValue
		if len(value) > 30 {
			value = value[:27] + "..."
		}
		sb.WriteString(fmt.Sprintf("%s %s: %s\n", marker, s.Field, value))
	}
	if len(suggestions) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(suggestions)-maxItemsToShow))
	}

	p.printBox("CROSS-VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompletenessReport outputs the final completeness report.
func (p *Printer) PrintCompletenessReport(report *types.CompletenessReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:    %d / 100\n", report.Score))
	sb.WriteString(fmt.Sprintf("Complete: %v\n", report.IsComplete))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", report.StrategyUsed))

	if len(report.MissingItems) > 0 {
		sb.WriteString("\nMissing:\n")
		count := min(len(report.MissingItems), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", report.MissingItems[i]))
		}
		if len(report.MissingItems) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.MissingItems)-maxItemsToShow))
		}
	}

	p.printBox("COMPLETENESS REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecordSummary outputs a short summary of the final record.
func (p *Printer) PrintRecordSummary(record *types.PortfolioData) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:   %s\n", record.PersonalInfo.Name))
	sb.WriteString(fmt.Sprintf("Email:  %s\n", record.PersonalInfo.Email))
	sb.WriteString(fmt.Sprintf("Skills: %d  Experience: %d  Education: %d\n",
		len(record.Skills), len(record.Experience), len(record.Education)))
	sb.WriteString(fmt.Sprintf("Projects: %d  Achievements: %d", len(record.Projects), len(record.Achievements)))

	p.printBox("PARSED RECORD", sb.String())
}
