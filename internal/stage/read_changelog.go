package stage

import (
	"context"

	"github.com/flarebyte/relmail/internal/changelog"
)

const readChangelogStage = "read-changelog"

func readChangelogRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	path := in.cfg().ChangelogFile
	changes, err := changelog.Latest(path)
	if err != nil {
		return Envelope{}, stageError(readChangelogStage, KindChangelogRead, err)
	}
	deps.logger().DebugContext(ctx, "changelog read", "path", path, "bytes", len(changes))
	out := in
	out.Changes = &changes
	return out, nil
}

func init() { Register(readChangelogStage, readChangelogRunner) }
