package types

import "time"

// AttemptOutcome classifies the result of one provider attempt
type AttemptOutcome string

// Attempt outcome values
const (
	// OutcomeSuccess means the provider returned a scorable record
	OutcomeSuccess AttemptOutcome = "success"
	// OutcomeFailure means the provider failed or returned unusable output
	OutcomeFailure AttemptOutcome = "failure"
	// OutcomeRateLimited means the provider signaled throttling
	OutcomeRateLimited AttemptOutcome = "rate_limited"
)

// ParseAttempt records a single provider attempt within an orchestration run.
// The sequence of attempts is kept for logging and diagnostics and is
// surfaced to the caller alongside the final record.
type ParseAttempt struct {
	Provider string         `json:"provider"`
	Outcome  AttemptOutcome `json:"outcome"`
	Score    float64        `json:"score,omitempty"`
	Latency  time.Duration  `json:"latency"`
	Error    string         `json:"error,omitempty"`
}

// Suggestion actions
const (
	// SuggestionAdd fills a field that is empty or absent in the primary record
	SuggestionAdd = "add"
	// SuggestionEnhance would replace existing primary content; never auto-applied
	SuggestionEnhance = "enhance"
)

// Suggestion is a proposed field-level change produced by cross-validation.
// Additive suggestions are applied automatically; suggestions that would
// replace non-empty primary content are surfaced but left unapplied.
type Suggestion struct {
	Field    string `json:"field"`
	Action   string `json:"action"`
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value"`
	Reason   string `json:"reason"`
	Applied  bool   `json:"applied"`
}

// Report strategies
const (
	// StrategyDetailed is the LLM-backed comparison against the source text
	StrategyDetailed = "detailed"
	// StrategyQuick is the rule-based fallback that never fails
	StrategyQuick = "quick"
)

// CompletenessReport is the final user-facing quality report for a record
type CompletenessReport struct {
	Score        int      `json:"completeness_score"`
	IsComplete   bool     `json:"is_complete"`
	MissingItems []string `json:"missing_items"`
	Suggestions  []string `json:"suggestions,omitempty"`
	StrategyUsed string   `json:"strategy_used"`
}
