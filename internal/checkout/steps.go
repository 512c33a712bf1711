package checkout

import (
	"context"
	"log/slog"
)

// followUp is an effect that runs once an order has been placed. The order
// stands whatever happens here, so follow-ups have no compensation.
type followUp struct {
	name string
	run  func(ctx context.Context) error
}

// runFollowUps runs every follow-up in order. A failing one is logged and the
// rest still run.
func runFollowUps(ctx context.Context, steps []followUp) {
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			slog.ErrorContext(ctx, "checkout follow-up failed", "step", step.name, "error", err)
		}
	}
}
