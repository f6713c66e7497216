// Package buildinfo exposes version metadata for the CLI. Values are set at
// build time via -ldflags; cli.Version and cli.Date are honored as fallbacks
// for release scripts that target that package.
package buildinfo

import (
	"strings"

	"github.com/flarebyte/relmail/cli"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
	BuiltBy = ""
)

// Info is the resolved build metadata.
type Info struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

// Current resolves build metadata, applying the cli fallbacks.
func Current() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, BuiltBy: BuiltBy}
	if info.Version == "" {
		info.Version = cli.Version
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Date == "" {
		info.Date = cli.Date
	}
	return info
}

// Summary returns a concise single-line version string,
// e.g. "1.4.0 (commit=0123456, date=2026-02-09)".
func Summary() string {
	info := Current()
	var parts []string
	if info.Commit != "" {
		c := info.Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if info.Date != "" {
		parts = append(parts, "date="+info.Date)
	}
	if len(parts) == 0 {
		return info.Version
	}
	return info.Version + " (" + strings.Join(parts, ", ") + ")"
}
