// Package version reports what build of the scanner is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// featureFlags names the detection and storage capabilities compiled into
// this build, so a pasted `version` output tells us what the binary can do.
const featureFlags = "SHA256+Heuristics/JSON+SQLite"

// EngineVersion resolves the module version stamped by the toolchain.
// Binaries built with `go install module@tag` carry the tag; a local
// `go run` reports "(devel)".
func EngineVersion() string {
	v := "(devel)"

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		v = info.Main.Version
	}

	return fmt.Sprintf("%s (%s)", v, featureFlags)
}
