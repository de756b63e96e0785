// Package config handles loading and self-healing of Scanlink Core configuration.
//
// This package manages:
//   - Loading the JSON configuration document from disk
//   - Filling absent fields with defaults (host, port, topic)
//   - Generating a stable client identity on first run
//   - Persisting generated values back to the document
//
// Resolution never fails: a missing, unreadable or malformed document is
// logged and treated as empty, so a first run with no config file still
// produces a usable record and writes a healed document to disk. Keys the
// resolver does not understand are preserved verbatim on rewrite.
//
// Performance Characteristics:
//   - Configuration is resolved once at startup
//   - No runtime overhead after initial resolution
//
// Usage:
//
//	rec := config.Resolve("configs/config.json", logging.Default())
//	sub := mqtt.New(rec.Host, rec.Port, rec.ClientID, callback)
package config
