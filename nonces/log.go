package nonces

import "github.com/decred/slog"

// log is the package logger, disabled until UseLogger is called.
var log = slog.Disabled

// UseLogger sets the package logger. It should be called before opening a
// ledger.
func UseLogger(logger slog.Logger) {
	log = logger
}
