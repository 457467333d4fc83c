// Package version holds the gatehook build information. It has no
// dependencies so any package can import it.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags during build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// IsDevBuild returns true if running a development build (not a release).
func IsDevBuild() bool {
	return Version == "dev"
}

// String renders the build information on one line.
func String() string {
	return fmt.Sprintf("gatehook %s (commit %s, built %s, %s/%s)",
		Version, Commit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
