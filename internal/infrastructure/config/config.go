package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Defaults applied when the configuration document omits a field.
const (
	// DefaultHost is used when the mqtt section has no broker host.
	DefaultHost = "localhost"

	// DefaultPort is the conventional MQTT broker port.
	DefaultPort uint16 = 1883

	// DefaultTopic is assigned (and persisted) when no topic is configured.
	DefaultTopic = "test/topic"

	// clientIDPrefix is combined with a random UUID to form generated
	// client identities, e.g. "scanlink_8f14e45f-...".
	clientIDPrefix = "scanlink"
)

// Record is the resolved MQTT configuration handed to the subscribe client.
// It is immutable after resolution and safe to share by value.
type Record struct {
	Host     string
	Port     uint16
	ClientID string
	Topic    string

	// Logging carries the optional "logging" section of the document.
	// The resolver reads it but never writes it back.
	Logging LoggingConfig
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
}

// Logger is the minimal logging surface the resolver needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Resolve loads the configuration document at path and returns a validated
// Record. It never fails: read and parse errors degrade to an empty
// document, absent fields are filled with defaults, and a generated
// client_id or defaulted topic is written back to path so subsequent runs
// observe a stable identity.
//
// The document layout is:
//
//	{
//	  "mqtt": {
//	    "host": "localhost",
//	    "port": 1883,
//	    "client_id": "scanlink_<uuid>",
//	    "topic": "test/topic"
//	  }
//	}
//
// Sibling keys the resolver does not understand are preserved verbatim on
// rewrite, at the document root and inside the mqtt section.
func Resolve(path string, log Logger) Record {
	root := readDocument(path, log)

	node, ok := root["mqtt"].(map[string]any)
	if !ok {
		node = make(map[string]any)
	}

	rec := Record{
		Host:    stringField(node, "host", DefaultHost),
		Port:    portField(node, "port", DefaultPort, log),
		Logging: loggingSection(root),
	}

	updated := false

	rec.ClientID = stringField(node, "client_id", "")
	if rec.ClientID == "" {
		rec.ClientID = GenerateClientID()
		node["client_id"] = rec.ClientID
		updated = true
		log.Info("client_id absent, generated new identity", "client_id", rec.ClientID)
	}

	rec.Topic = stringField(node, "topic", "")
	if rec.Topic == "" {
		rec.Topic = DefaultTopic
		node["topic"] = rec.Topic
		updated = true
		log.Info("topic absent, using default", "topic", rec.Topic)
	}

	if updated {
		root["mqtt"] = node
		writeDocument(path, root, log)
	}

	log.Info("mqtt configuration resolved",
		"host", rec.Host,
		"port", rec.Port,
		"client_id", rec.ClientID,
		"topic", rec.Topic,
	)

	return rec
}

// GenerateClientID returns a new collision-resistant client identity.
func GenerateClientID() string {
	return fmt.Sprintf("%s_%s", clientIDPrefix, uuid.NewString())
}

// readDocument parses the file at path into a generic JSON tree.
// Any failure is logged and an empty tree is returned.
func readDocument(path string, log Logger) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("unable to read config file", "path", path, "error", err)
		return make(map[string]any)
	}

	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		log.Error("failed to parse config file", "path", path, "error", err)
		return make(map[string]any)
	}
	if root == nil {
		root = make(map[string]any)
	}

	return root
}

// writeDocument persists the full tree back to path, pretty-printed.
// Failure is logged but does not invalidate the in-memory record.
func writeDocument(path string, root map[string]any, log Logger) {
	data, err := json.MarshalIndent(root, "", "    ")
	if err != nil {
		log.Warn("unable to encode config document", "path", path, "error", err)
		return
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Warn("unable to write config file", "path", path, "error", err)
	}
}

// stringField returns the string value at key, or fallback if the key is
// absent, empty, or not a string.
func stringField(node map[string]any, key, fallback string) string {
	s, ok := node[key].(string)
	if !ok || s == "" {
		return fallback
	}
	return s
}

// portField returns the port value at key. JSON numbers decode as float64;
// out-of-range or non-numeric values are logged and replaced by fallback.
func portField(node map[string]any, key string, fallback uint16, log Logger) uint16 {
	raw, ok := node[key]
	if !ok {
		return fallback
	}

	f, ok := raw.(float64)
	if !ok || f != float64(int64(f)) || f < 1 || f > 65535 {
		log.Warn("invalid broker port in config, using default", "value", raw, "default", fallback)
		return fallback
	}

	return uint16(f)
}

// loggingSection extracts the optional logging section with defaults.
func loggingSection(root map[string]any) LoggingConfig {
	cfg := LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}

	node, ok := root["logging"].(map[string]any)
	if !ok {
		return cfg
	}

	if v := stringField(node, "level", ""); v != "" {
		cfg.Level = strings.ToLower(v)
	}
	if v := stringField(node, "format", ""); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := stringField(node, "output", ""); v != "" {
		cfg.Output = strings.ToLower(v)
	}

	return cfg
}
