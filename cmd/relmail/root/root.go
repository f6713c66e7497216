package root

import (
	"context"

	"github.com/flarebyte/relmail/cmd/relmail/run"
	"github.com/flarebyte/relmail/cmd/relmail/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for relmail.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relmail",
		Short: "Upload a mobile release build and email the release notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(run.Cmd)
	cmd.AddCommand(run.PreviewCmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
