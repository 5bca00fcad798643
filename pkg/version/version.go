package version

import (
	_ "embed"
	"strings"
)

// Set at build time via -ldflags.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

//go:embed version.txt
var embedded string

// Current returns the release version: the build-time value when injected,
// otherwise the embedded version file.
func Current() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	return strings.TrimSpace(embedded)
}

// Summary returns a human-friendly version string for CLI output.
func Summary() string {
	return Current()
}
