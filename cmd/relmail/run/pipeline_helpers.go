package run

import (
	"context"
	"time"

	"github.com/flarebyte/relmail/internal/stage"
)

// runStages executes the provided list of stage names in order.
func runStages(ctx context.Context, in stage.Envelope, stages []string, deps stage.Deps) (stage.Envelope, error) {
	out := in
	var err error
	for _, name := range stages {
		start := time.Now()
		if deps.Logger != nil {
			deps.Logger.DebugContext(ctx, "stage started", "stage", name)
		}
		out, err = stage.Run(ctx, name, out, deps)
		if err != nil {
			return stage.Envelope{}, err
		}
		if deps.Logger != nil {
			deps.Logger.DebugContext(ctx, "stage finished", "stage", name, "elapsed", time.Since(start))
		}
	}
	return out, nil
}
