package stage

import (
	"context"

	"github.com/flarebyte/relmail/internal/distribution"
	"github.com/flarebyte/relmail/internal/mailtmpl"
)

const renderEmailStage = "render-email"

// templateValues builds the placeholder values from explicit stage results.
func templateValues(appName, version string, up distribution.UploadResult, changes string) mailtmpl.Values {
	return mailtmpl.Values{
		DownloadURL: up.Link,
		LogoURL:     up.QRCode,
		Changes:     changes,
		AppName:     appName,
		AppVersion:  version,
	}
}

func renderEmailRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	switch {
	case in.Artifact == nil:
		return Envelope{}, missingInput(renderEmailStage, KindTemplate, "artifact")
	case in.Upload == nil:
		return Envelope{}, missingInput(renderEmailStage, KindTemplate, "upload result")
	case in.Changes == nil:
		return Envelope{}, missingInput(renderEmailStage, KindTemplate, "changelog")
	}
	cfg := in.cfg()
	v := templateValues(cfg.AppName, in.Artifact.Version, *in.Upload, *in.Changes)
	if in.Git != nil {
		v.GitCommit = in.Git.ShortCommit
		v.GitBranch = in.Git.Branch
	}
	email, err := mailtmpl.Render(cfg.TemplateFile, v)
	if err != nil {
		return Envelope{}, stageError(renderEmailStage, KindTemplate, err)
	}
	deps.logger().DebugContext(ctx, "email rendered", "subject", email.Subject)
	out := in
	out.Email = &email
	return out, nil
}

func init() { Register(renderEmailStage, renderEmailRunner) }
