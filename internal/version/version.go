// Package version reports build metadata set through -ldflags "-X".
package version

import "fmt"

//nolint:gochecknoglobals // overwritten by the linker
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build as "mongoes <version> (<commit>, built <date>)".
func String() string {
	return fmt.Sprintf("mongoes %s (%s, built %s)", Version, Commit, Date)
}
