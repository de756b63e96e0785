// Scanlink Core - barcode scan subscriber daemon
//
// This is the main entry point for the Scanlink Core daemon. It resolves
// the configuration document (creating it with a stable client identity on
// first run), connects to the MQTT broker, subscribes to the configured
// topic, and logs every delivered scan until it receives SIGINT/SIGTERM.
//
// The desktop application embeds the same packages; this binary is the
// headless equivalent and doubles as a smoke test against a live broker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scanlink/scanlink-core/internal/infrastructure/config"
	"github.com/scanlink/scanlink-core/internal/infrastructure/logging"
	"github.com/scanlink/scanlink-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.json"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is resolved
	log := logging.Default()
	log.Info("starting Scanlink Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Resolution never fails: a missing or broken document degrades to
	// defaults and is healed on disk.
	configPath := getConfigPath()
	rec := config.Resolve(configPath, log)

	// Reinitialise logger with the document's logging section
	log = logging.New(rec.Logging, version)
	log.Info("configuration resolved", "path", configPath)

	sub := mqtt.New(rec.Host, rec.Port, rec.ClientID, func(topic string, payload []byte) {
		log.Info("message received",
			"topic", topic,
			"bytes", len(payload),
			"payload", string(payload),
		)
	})
	sub.SetLogger(log.With("component", "mqtt"))

	if err := sub.Subscribe(rec.Topic); err != nil {
		return fmt.Errorf("subscribing to %q: %w", rec.Topic, err)
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	sub.Stop()
	log.Info("subscriber stopped")

	return nil
}

// getConfigPath returns the configuration file path, honouring the
// SCANLINK_CONFIG environment variable.
func getConfigPath() string {
	if path := os.Getenv("SCANLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
