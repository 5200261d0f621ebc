// Package validation produces the final completeness report for a parsed
// record: an LLM-backed comparison against the source text when possible,
// a rule-based fallback otherwise. This stage never fails.
package validation

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dchen/portfolio-engine/internal/llm"
	"github.com/dchen/portfolio-engine/internal/prompts"
	"github.com/dchen/portfolio-engine/internal/types"
)

// CompleteAt is the completeness score at or above which a record is
// considered complete.
const CompleteAt = 80

// Strategy is one way of judging completeness
type Strategy interface {
	Name() string
	Validate(ctx context.Context, documentText string, record *types.PortfolioData) (*types.CompletenessReport, error)
}

// Validator tries each strategy in order and returns the first report.
// The Quick strategy is always appended as the terminal fallback, so a
// report is always produced.
type Validator struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewValidator builds the standard chain: detailed first when a client is
// available, quick always last.
func NewValidator(client llm.Client, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	var strategies []Strategy
	if client != nil {
		strategies = append(strategies, &DetailedValidator{client: client})
	}
	strategies = append(strategies, &QuickValidator{})
	return &Validator{strategies: strategies, logger: logger}
}

// Report judges how completely the record captures the document. It
// degrades through the strategy chain and never returns an error.
func (v *Validator) Report(ctx context.Context, documentText string, record *types.PortfolioData) *types.CompletenessReport {
	for _, strategy := range v.strategies {
		report, err := strategy.Validate(ctx, documentText, record)
		if err != nil {
			v.logger.Warn("validation.strategy_failed", "strategy", strategy.Name(), "error", err)
			continue
		}
		v.logger.Info("validation.report", "strategy", strategy.Name(), "score", report.Score)
		return report
	}
	// unreachable while QuickValidator terminates the chain, but keep a
	// sane report if the chain is ever misconfigured
	report, _ := (&QuickValidator{}).Validate(ctx, documentText, record)
	return report
}

// DetailedValidator asks an LLM to compare the source text against the
// parsed record and list what is missing.
type DetailedValidator struct {
	client llm.Client
}

// Name returns the strategy identifier
func (d *DetailedValidator) Name() string { return types.StrategyDetailed }

type detailedResponse struct {
	CompletenessScore int      `json:"completeness_score"`
	IsComplete        bool     `json:"is_complete"`
	MissingItems      []string `json:"missing_items"`
	Suggestions       []string `json:"suggestions"`
}

// Validate runs the LLM comparison
func (d *DetailedValidator) Validate(ctx context.Context, documentText string, record *types.PortfolioData) (*types.CompletenessReport, error) {
	recordJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, err
	}

	template := prompts.MustGet("validation.json", "completeness-check")
	prompt := prompts.Format(template, map[string]string{
		"ResumeText": documentText,
		"ParsedJSON": string(recordJSON),
	})

	raw, err := d.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, err
	}

	var parsed detailedResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &parsed); err != nil {
		return nil, err
	}
	if parsed.CompletenessScore < 0 {
		parsed.CompletenessScore = 0
	}
	if parsed.CompletenessScore > 100 {
		parsed.CompletenessScore = 100
	}

	return &types.CompletenessReport{
		Score:        parsed.CompletenessScore,
		IsComplete:   parsed.IsComplete || parsed.CompletenessScore >= CompleteAt,
		MissingItems: parsed.MissingItems,
		Suggestions:  parsed.Suggestions,
		StrategyUsed: types.StrategyDetailed,
	}, nil
}

// QuickValidator is the rule-based fallback. No external calls, never
// fails.
type QuickValidator struct{}

// Name returns the strategy identifier
func (q *QuickValidator) Name() string { return types.StrategyQuick }

var quickEmailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate scores by deduction: start at 100, subtract for each missing
// field, floor at 0.
func (q *QuickValidator) Validate(_ context.Context, _ string, record *types.PortfolioData) (*types.CompletenessReport, error) {
	score := 100
	var missing []string

	if record == nil {
		record = &types.PortfolioData{}
	}

	if len(strings.TrimSpace(record.PersonalInfo.Name)) <= 2 {
		score -= 25
		missing = append(missing, "name")
	}
	if !quickEmailRe.MatchString(strings.TrimSpace(record.PersonalInfo.Email)) {
		score -= 25
		missing = append(missing, "email")
	}
	if len(record.Skills) == 0 {
		score -= 15
		missing = append(missing, "skills")
	}
	if strings.TrimSpace(record.PersonalInfo.Phone) == "" {
		score -= 2
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(record.PersonalInfo.Location) == "" {
		score -= 2
		missing = append(missing, "location")
	}
	if score < 0 {
		score = 0
	}

	return &types.CompletenessReport{
		Score:        score,
		IsComplete:   score >= CompleteAt,
		MissingItems: missing,
		StrategyUsed: types.StrategyQuick,
	}, nil
}
