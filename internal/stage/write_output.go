package stage

import (
	"context"
	"fmt"

	"github.com/flarebyte/relmail/internal/notify"
	"github.com/flarebyte/relmail/internal/summary"
)

const (
	writeOutputStage  = "write-output"
	writePreviewStage = "write-preview"
)

// Summarize builds the run summary from the envelope.
func Summarize(in Envelope) summary.Summary {
	cfg := in.cfg()
	s := summary.Summary{
		AppName:    cfg.AppName,
		Recipients: notify.ParseRecipients(cfg.EmailTo),
		Sent:       in.Sent,
	}
	if in.Meta != nil {
		s.RunID = in.Meta.RunID
	}
	if in.Artifact != nil {
		s.Version = in.Artifact.Version
		s.Artifact = in.Artifact.Path
	}
	if in.Upload != nil {
		s.Link = in.Upload.Link
		s.QRCode = in.Upload.QRCode
	}
	if in.Email != nil {
		s.Subject = in.Email.Subject
	}
	if in.Git != nil {
		s.Commit = in.Git.Commit
		s.Branch = in.Git.Branch
	}
	return s
}

func writeOutputRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if err := summary.Write(deps.stdout(), in.cfg().Output, Summarize(in)); err != nil {
		return Envelope{}, stageError(writeOutputStage, KindOutput, err)
	}
	return in, nil
}

// writePreviewRunner prints the rendered email for humans.
func writePreviewRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Email == nil {
		return Envelope{}, missingInput(writePreviewStage, KindTemplate, "rendered email")
	}
	_, err := fmt.Fprintf(deps.stdout(), "Subject: %s\n\n%s\n", in.Email.Subject, in.Email.Body)
	if err != nil {
		return Envelope{}, stageError(writePreviewStage, KindOutput, err)
	}
	return in, nil
}

func init() {
	Register(writeOutputStage, writeOutputRunner)
	Register(writePreviewStage, writePreviewRunner)
}
