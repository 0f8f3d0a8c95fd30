// Package version holds the build's protocol/server version banner,
// exchanged only for diagnostics — it plays no part in the wire grammar
// itself, which has no handshake phase.
package version

import "github.com/blang/semver"

// Current is this build's version. Bump the minor component when the
// status-code table or grammar gains a backward-compatible addition, the
// major component when it breaks older clients.
var Current = semver.MustParse("2.0.0")

// Banner renders Current for a startup log line or diagnostic CLI output.
func Banner() string {
	return "rpcgate/" + Current.String()
}

// Compatible reports whether actual satisfies a minimum required version.
func Compatible(required, actual semver.Version) bool {
	return actual.GTE(required)
}
