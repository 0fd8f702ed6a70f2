package core

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger returns a timestamped leveled logger writing to w.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "piprules",
	})
}

// DiscardLogger is used where no log output is wanted, chiefly tests.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
