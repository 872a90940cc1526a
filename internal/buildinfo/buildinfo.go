// Package buildinfo holds version identity injected at build time via ldflags.
package buildinfo

// Set by the release build, e.g.
// -ldflags "-X github.com/confab-io/confab/internal/buildinfo.Version=0.3.0".
var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent returns the identity string used on outbound HTTP requests.
func UserAgent() string {
	return "confab/" + Version
}
