// Package berlog centralizes Berlin's logging setup on top of
// github.com/charmbracelet/log, the way the completion-server codebase this
// project borrows its structure from centralizes its own logger construction
// in internal/logger.
package berlog

import (
	"os"

	"github.com/charmbracelet/log"
)

// Default creates a leveled logger with the given prefix, respecting the
// process-wide level set by SetLevelFromEnv.
func Default(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// SetLevelFromEnv reads BERLIN_LOG_LEVEL (debug|info|warn|error, default
// info) and sets it as the package-wide charmbracelet/log level so every
// logger created afterwards, in any package, inherits it.
func SetLevelFromEnv() {
	switch os.Getenv("BERLIN_LOG_LEVEL") {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
