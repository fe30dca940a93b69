// Package logging provides structured logging setup for gatekeeper.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the default slog logger on stderr.
// Verbose mode uses human-readable text at debug; otherwise JSON at warn,
// so command output on stdout stays clean.
func Setup(verbose bool) {
	SetupTo(os.Stderr, verbose)
}

// SetupTo is Setup with an explicit destination.
func SetupTo(w io.Writer, verbose bool) {
	var handler slog.Handler
	if verbose {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		})
	}
	slog.SetDefault(slog.New(handler))
}
