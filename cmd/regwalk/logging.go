// SPDX-License-Identifier: MPL-2.0

package main

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// initLogging installs a charmbracelet/log handler as the slog default
// so the library packages' slog calls render consistently with the rest
// of the CLI output. Debug level requires --verbose.
func initLogging() {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})
	slog.SetDefault(slog.New(logger))
}
