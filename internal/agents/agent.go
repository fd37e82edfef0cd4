// Package agents provides the signal-generating agents.
package agents

import (
	"context"

	"smc-trader/internal/models"
)

// Agent defines the interface for signal agents.
type Agent interface {
	// Name returns the unique name of the agent.
	Name() string
	// GenerateSignal analyzes one symbol/timeframe pair and returns a
	// decision. Failure paths degrade to a WAIT decision with a reason
	// string; the error is reserved for context cancellation.
	GenerateSignal(ctx context.Context, timeframe models.Timeframe) (*models.Decision, error)
}
