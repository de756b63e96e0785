// Package logging provides structured logging for Scanlink Core.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the optional "logging" section of the
// configuration document:
//
//	"logging": {
//	  "level": "info",
//	  "format": "json",
//	  "output": "stdout"
//	}
//
// # Usage
//
//	logger := logging.New(rec.Logging, "1.0.0")
//	logger.Info("starting service", "topic", rec.Topic)
//	logger.Error("failed to connect", "error", err)
//
// Failures to log are never fatal; logging is best-effort by construction.
package logging
