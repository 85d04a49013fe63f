// Package version exposes the build version of the dartfocus binary.
package version

// Version is the CLI version, overridden at build time via
// -ldflags "-X github.com/rshade/dartfocus/pkg/version.Version=v1.2.3".
var Version = "dev" //nolint:gochecknoglobals // Set by the linker at build time

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
