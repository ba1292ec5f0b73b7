// Package logging assembles structured slog loggers and formatting helpers used
// across moviemeta.
//
// It owns the configurable console/JSON handlers, fans records out to the
// terminal and the log file, and exposes context-aware helpers so engine code
// can tag log lines with run identifiers and pass numbers. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
