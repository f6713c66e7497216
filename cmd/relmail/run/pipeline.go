package run

import (
	"context"

	"github.com/google/uuid"

	"github.com/flarebyte/relmail/internal/config"
	"github.com/flarebyte/relmail/internal/stage"
)

// runStageNames is the fixed pipeline for `relmail run`.
var runStageNames = []string{
	"locate-artifact",
	"enrich-git",
	"upload-artifact",
	"read-changelog",
	"render-email",
	"send-email",
	"write-output",
}

var previewStageNames = []string{
	"locate-artifact",
	"enrich-git",
	"read-changelog",
	"render-email",
	"write-preview",
}

func newEnvelope(cfg *config.Config) stage.Envelope {
	return stage.Envelope{Meta: &stage.Meta{RunID: uuid.NewString(), Config: cfg}}
}

// executePipeline runs stages in order and stops at the first failure.
func executePipeline(ctx context.Context, in stage.Envelope, stages []string, deps stage.Deps) (stage.Envelope, error) {
	if deps.Logger != nil {
		deps.Logger = deps.Logger.With("run", in.Meta.RunID)
	}
	return runStages(ctx, in, stages, deps)
}
