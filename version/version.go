// Package version reports the build of the goratio binaries.
package version

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// These variables are set via ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Build describes the running binary
type Build struct {
	Version   string
	GitCommit string
	BuildDate string
}

// Current returns the build information. Binaries installed with go install
// carry no ldflags, so the module version is used instead.
func Current() Build {
	b := Build{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
	if b.Version != "dev" {
		return b
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		b.Version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.GitCommit = s.Value
		case "vcs.time":
			b.BuildDate = s.Value
		}
	}
	return b
}

// GetVersion returns the version string
func GetVersion() string {
	return Current().Version
}

// GetFullVersion returns a full version string with commit and date
func GetFullVersion() string {
	b := Current()
	if b.GitCommit == "unknown" {
		return b.Version
	}
	return fmt.Sprintf("%s (commit %s, built %s)", b.Version, b.GitCommit, b.BuildDate)
}

// LogValue implements slog.LogValuer
func (b Build) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("version", b.Version),
		slog.String("commit", b.GitCommit),
		slog.String("built", b.BuildDate),
	)
}
