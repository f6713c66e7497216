package stage

import (
	"context"
	"errors"

	"github.com/flarebyte/relmail/internal/distribution"
)

const uploadArtifactStage = "upload-artifact"

func uploadKind(err error) Kind {
	switch {
	case errors.Is(err, distribution.ErrNotReady):
		return KindUploadNeverReady
	case errors.Is(err, distribution.ErrProcessingFailed), errors.Is(err, distribution.ErrStatusFailed):
		return KindUploadProcessing
	default:
		return KindUploadSubmission
	}
}

func uploadArtifactRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Artifact == nil {
		return Envelope{}, missingInput(uploadArtifactStage, KindUploadSubmission, "artifact")
	}
	cfg := in.cfg()
	client, err := distribution.NewClient(distribution.Config{
		UploadURL:    cfg.Distribution.UploadURL,
		StatusURL:    cfg.Distribution.StatusURL,
		Token:        cfg.Distribution.Token,
		PollInterval: cfg.Distribution.PollInterval,
		PollTimeout:  cfg.Distribution.PollTimeout,
		MaxAttempts:  cfg.Distribution.MaxAttempts,
		Fields:       cfg.Distribution.Fields,
		HTTPClient:   deps.httpClient(),
		Progress:     deps.Progress,
	})
	if err != nil {
		return Envelope{}, stageError(uploadArtifactStage, KindUploadSubmission, err)
	}

	log := deps.logger()
	job, err := client.Submit(ctx, in.Artifact.Path)
	if err != nil {
		return Envelope{}, stageError(uploadArtifactStage, uploadKind(err), err)
	}
	log.InfoContext(ctx, "uploaded, processing", "job", job)

	res, err := client.Wait(ctx, job)
	if err != nil {
		return Envelope{}, stageError(uploadArtifactStage, uploadKind(err), err)
	}
	log.InfoContext(ctx, "upload ready", "link", res.Link)
	out := in
	out.Upload = &res
	return out, nil
}

func init() { Register(uploadArtifactStage, uploadArtifactRunner) }
