// Package providers implements the text-extraction provider adapters the
// orchestrator rotates across. Each adapter wraps one LLM backend and turns
// raw resume text into a candidate PortfolioData record or a typed failure.
// Adapters know nothing about each other; rotation, scoring, and retry
// policy live in the orchestrator.
package providers

import (
	"context"

	"github.com/dchen/portfolio-engine/internal/types"
)

// Extractor is the contract every provider adapter implements.
//
// Extract fails with exactly one of *RateLimitedError, *InvalidOutputError,
// or *ProviderError. Adapters make a best-effort attempt to salvage a
// structurally valid subset from partial or truncated responses before
// declaring the output invalid.
type Extractor interface {
	// Name returns the stable provider identifier used by the tracker
	// and the attempt trail.
	Name() string
	// Extract parses resume text into a structured record.
	Extract(ctx context.Context, resumeText string) (*types.PortfolioData, error)
}
