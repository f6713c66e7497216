package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/flarebyte/relmail/internal/buildinfo"
	"github.com/spf13/cobra"
)

var (
	flagShort bool
	flagJSON  bool
)

// VersionCmd implements `relmail version`.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func writeVersion(stdout, stderr io.Writer) error {
	if flagShort || !flagJSON {
		_, err := fmt.Fprintf(stdout, "relmail %s\n", buildinfo.Summary())
		return err
	}

	// JSON goes to stdout; the human line goes to stderr so scripts can pipe.
	_, _ = fmt.Fprintf(stderr, "relmail version: %s\n", buildinfo.Summary())
	info := buildinfo.Current()
	return encodeJSON(stdout, map[string]any{
		"version":  info.Version,
		"commit":   info.Commit,
		"date":     info.Date,
		"built_by": info.BuiltBy,
		"go":       runtime.Version(),
		"go_os":    runtime.GOOS,
		"go_arch":  runtime.GOARCH,
	})
}

func init() {
	VersionCmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	VersionCmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
}
