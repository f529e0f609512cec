// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup installs a timestamped text formatter and picks the level.
// Verbose enables debug output.
func Setup(verbose bool) {
	SetupTo(os.Stderr, verbose)
}

// SetupTo is Setup with an explicit destination.
func SetupTo(w io.Writer, verbose bool) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// IsVerbose reports whether debug logging is enabled.
func IsVerbose() bool {
	return log.IsLevelEnabled(log.DebugLevel)
}
