// Package version exposes build-time version metadata.
package version

// Populated via -ldflags at release build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
