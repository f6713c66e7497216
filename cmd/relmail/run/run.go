package run

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/flarebyte/relmail/internal/config"
	"github.com/flarebyte/relmail/internal/logging"
	"github.com/flarebyte/relmail/internal/stage"
)

// Cmd represents the `relmail run` command.
var Cmd = newRunCmd()

// newDeps builds the stage collaborators for a command.
var newDeps = func(cfg *config.Config, o *options, stdout, stderr io.Writer) stage.Deps {
	d := stage.Deps{
		Logger: logging.New(stderr, cfg.LogFormat, o.verbose),
		Stdout: stdout,
	}
	if o.progress {
		d.Progress = newProgressPrinter(stderr, progressEvery).report
	}
	return d
}

func newRunCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "run",
		Short:         "Upload the release build and email the latest changes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return usageError(err)
			}
			if err := cfg.Validate(); err != nil {
				return usageError(err)
			}
			deps := newDeps(cfg, o, cmd.OutOrStdout(), cmd.ErrOrStderr())
			_, err = executePipeline(cmd.Context(), newEnvelope(cfg), runStageNames, deps)
			return evaluateRunExit(err)
		},
	}
	bindRunFlags(cmd, o)
	return cmd
}
