package monitoring

import "log"

// Logf is the package-level progress logger used by the pipeline stages. It
// defaults to log.Printf but may be replaced by SetLogger; tests typically
// mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Verbose gates Debugf output. The CLI flips this with -verbose.
var Verbose bool

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Debugf logs only when Verbose is set. Used for per-segment and per-batch
// detail that would swamp a normal run.
func Debugf(format string, v ...interface{}) {
	if Verbose {
		Logf(format, v...)
	}
}
