package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dchen/portfolio-engine/internal/types"
)

// AllProvidersFailedError is the single error an orchestration run
// surfaces to its caller: every configured provider failed or was rate
// limited and no candidate record exists. It carries the full attempt
// trail for diagnostics.
type AllProvidersFailedError struct {
	Attempts []types.ParseAttempt
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Provider, a.Outcome))
	}
	return fmt.Sprintf("all providers failed (%d attempts: %s)", len(e.Attempts), strings.Join(parts, ", "))
}

// ErrNoProviders is returned when an orchestrator is asked to run with an
// empty provider list.
var ErrNoProviders = fmt.Errorf("no providers configured")
