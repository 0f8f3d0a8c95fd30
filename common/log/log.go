// Package log provides the process-wide structured logger shared by the
// server pipeline, the client proxy and the demo binaries.
package log

import (
	"os"

	"github.com/op/go-logging"
)

// Log is the process-wide logger. Packages that need to log reach for this
// value directly.
var Log = logging.MustGetLogger("rpcgate")

var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} ▶ %{level:.4s} %{shortfunc}%{color:reset} %{message}`,
)

func init() {
	SetupLogging(logging.INFO)
}

// SetupLogging installs a stderr backend at the given level. Tests call it
// with logging.CRITICAL (or use Silence) to keep test output quiet.
func SetupLogging(level logging.Level) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
	return Log
}

// Silence drops the logger's output to nothing, for use in tests that
// exercise failure paths and don't want the noise.
func Silence() {
	logging.SetBackend(logging.AddModuleLevel(logging.NewLogBackend(discard{}, "", 0)))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
