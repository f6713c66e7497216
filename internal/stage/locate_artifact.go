package stage

import (
	"context"

	"github.com/flarebyte/relmail/internal/artifact"
)

const locateArtifactStage = "locate-artifact"

func locateArtifactRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	a, err := artifact.Locate(in.cfg().ReleaseDir)
	if err != nil {
		return Envelope{}, stageError(locateArtifactStage, KindArtifactNotFound, err)
	}
	deps.logger().InfoContext(ctx, "artifact located", "version", a.Version, "path", a.Path)
	out := in
	out.Artifact = &a
	return out, nil
}

func init() { Register(locateArtifactStage, locateArtifactRunner) }
