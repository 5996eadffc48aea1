// Package build carries the handful of build-mode switches the rest of
// ablsim calls into, in the same spirit as Sia's own build package.
package build

import (
	"fmt"
	"os"

	"gitlab.com/NebulousLabs/log"
)

// debug is set at link time via
// -ldflags "-X github.com/greenan-labs/ablsim/internal/build.debug=true"
// for development builds (-X only sets string variables). Release builds
// ship with it "false".
var debug = "false"

// DEBUG reports whether this is a development build.
var DEBUG = debug == "true"

var logger = mustLogger()

func mustLogger() *log.Logger {
	l, err := log.NewLogger(os.Stderr)
	if err != nil {
		panic(err)
	}
	return l
}

// Debugln logs at debug level, for non-fatal numerical conditions worth
// recording but not surfacing to the user (spec.md §7's
// SolverNonConvergence: "Log at debug level").
func Debugln(v ...interface{}) {
	logger.Debugln(v...)
}

// Critical should be called when the program has entered a state that
// should be impossible. In debug builds it panics so the invariant
// violation is impossible to miss; in release builds it logs at Critical
// level and lets the caller continue, since a running estimator is more
// useful than a crashed one.
func Critical(v ...interface{}) {
	s := fmt.Sprintln(v...)
	if DEBUG {
		panic("Critical error: " + s)
	}
	logger.Critical(s)
}
