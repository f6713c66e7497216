package stage

import (
	"context"

	"github.com/flarebyte/relmail/internal/gitinfo"
)

const enrichGitStage = "enrich-git"

// enrichGitRunner is a passthrough unless a repository path is configured.
func enrichGitRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	repo := in.cfg().GitRepo
	if repo == "" {
		return in, nil
	}
	info, err := gitinfo.Head(repo)
	if err != nil {
		return Envelope{}, stageError(enrichGitStage, KindGit, err)
	}
	deps.logger().DebugContext(ctx, "git head resolved", "commit", info.ShortCommit, "branch", info.Branch)
	out := in
	out.Git = &info
	return out, nil
}

func init() { Register(enrichGitStage, enrichGitRunner) }
