// Package buildinfo carries version data stamped in with -ldflags:
//
//	-X 'github.com/pixol20/MemeSender/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/pixol20/MemeSender/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/pixol20/MemeSender/core/buildinfo.Date=2025-08-30T12:00:00Z'
package buildinfo

import "log/slog"

var (
	Version = "dev"
	Commit  = "local"
	// Date is an RFC3339 timestamp, empty for local builds.
	Date = ""
)

// Attrs returns the build fields for the startup log line.
func Attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("build_version", Version),
		slog.String("build_commit", Commit),
		slog.String("build_time", Date),
	}
}
