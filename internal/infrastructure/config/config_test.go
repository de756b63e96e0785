package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// testLogger captures log calls for assertions.
type testLogger struct {
	mu     sync.Mutex
	infos  []string
	warns  []string
	errors []string
}

func (l *testLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *testLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *testLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

// readTree parses the document at path for post-resolution assertions.
func readTree(t *testing.T, path string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		t.Fatalf("failed to parse config file: %v", err)
	}
	return root
}

func TestResolve_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	rec := Resolve(path, &testLogger{})

	if rec.Host != DefaultHost {
		t.Errorf("Host = %q, want %q", rec.Host, DefaultHost)
	}
	if rec.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", rec.Port, DefaultPort)
	}
	if rec.Topic != DefaultTopic {
		t.Errorf("Topic = %q, want %q", rec.Topic, DefaultTopic)
	}
	if !strings.HasPrefix(rec.ClientID, "scanlink_") {
		t.Errorf("ClientID = %q, want scanlink_ prefix", rec.ClientID)
	}

	// The healed document must now exist with the generated values.
	root := readTree(t, path)
	node, ok := root["mqtt"].(map[string]any)
	if !ok {
		t.Fatal("written document has no mqtt section")
	}
	if node["client_id"] != rec.ClientID {
		t.Errorf("persisted client_id = %v, want %q", node["client_id"], rec.ClientID)
	}
	if node["topic"] != DefaultTopic {
		t.Errorf("persisted topic = %v, want %q", node["topic"], DefaultTopic)
	}
}

func TestResolve_IdentityStableAcrossRuns(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	first := Resolve(path, &testLogger{})
	second := Resolve(path, &testLogger{})

	if second.ClientID != first.ClientID {
		t.Errorf("ClientID regenerated: first %q, second %q", first.ClientID, second.ClientID)
	}
	if second.Host != first.Host || second.Port != first.Port || second.Topic != first.Topic {
		t.Errorf("resolution not idempotent: first %+v, second %+v", first, second)
	}
}

func TestResolve_CompleteDocumentUntouched(t *testing.T) {
	content := `{
  "mqtt": {
    "host": "broker.local",
    "port": 8883,
    "client_id": "scanner-42",
    "topic": "warehouse/scans"
  },
  "camera": {"device": 1}
}`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	rec := Resolve(path, &testLogger{})

	if rec.Host != "broker.local" {
		t.Errorf("Host = %q, want %q", rec.Host, "broker.local")
	}
	if rec.Port != 8883 {
		t.Errorf("Port = %d, want 8883", rec.Port)
	}
	if rec.ClientID != "scanner-42" {
		t.Errorf("ClientID = %q, want %q", rec.ClientID, "scanner-42")
	}
	if rec.Topic != "warehouse/scans" {
		t.Errorf("Topic = %q, want %q", rec.Topic, "warehouse/scans")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to re-read config file: %v", err)
	}
	if string(after) != content {
		t.Error("complete document was rewritten, want byte-for-byte unchanged")
	}
}

func TestResolve_PreservesUnknownKeys(t *testing.T) {
	content := `{
  "mqtt": {"host": "broker.local", "qos": 1},
  "update_check": {"url": "https://example.com/latest"}
}`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	rec := Resolve(path, &testLogger{})

	root := readTree(t, path)
	if _, ok := root["update_check"]; !ok {
		t.Error("unknown root key update_check was dropped on rewrite")
	}

	node, ok := root["mqtt"].(map[string]any)
	if !ok {
		t.Fatal("rewritten document has no mqtt section")
	}
	if node["qos"] != float64(1) {
		t.Errorf("unknown mqtt key qos = %v, want 1", node["qos"])
	}
	if node["host"] != "broker.local" {
		t.Errorf("mqtt host = %v, want broker.local", node["host"])
	}
	if node["client_id"] != rec.ClientID {
		t.Errorf("persisted client_id = %v, want %q", node["client_id"], rec.ClientID)
	}
}

func TestResolve_MalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	log := &testLogger{}
	rec := Resolve(path, log)

	if rec.Host != DefaultHost || rec.Port != DefaultPort || rec.Topic != DefaultTopic {
		t.Errorf("malformed file did not degrade to defaults: %+v", rec)
	}
	if rec.ClientID == "" {
		t.Error("ClientID empty after malformed resolution")
	}
	if len(log.errors) == 0 {
		t.Error("expected parse failure to be logged at error level")
	}

	// The healed document replaces the malformed one.
	root := readTree(t, path)
	if _, ok := root["mqtt"]; !ok {
		t.Error("healed document missing mqtt section")
	}
}

func TestResolve_InvalidPort(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "out of range",
			content: `{"mqtt": {"host": "h", "port": 70000, "client_id": "c", "topic": "t"}}`,
		},
		{
			name:    "not a number",
			content: `{"mqtt": {"host": "h", "port": "1883", "client_id": "c", "topic": "t"}}`,
		},
		{
			name:    "fractional",
			content: `{"mqtt": {"host": "h", "port": 18.83, "client_id": "c", "topic": "t"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			path := filepath.Join(tmpDir, "config.json")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			log := &testLogger{}
			rec := Resolve(path, log)

			if rec.Port != DefaultPort {
				t.Errorf("Port = %d, want default %d", rec.Port, DefaultPort)
			}
			if len(log.warns) == 0 {
				t.Error("expected invalid port to be logged at warn level")
			}
		})
	}
}

func TestResolve_LoggingSection(t *testing.T) {
	content := `{
  "mqtt": {"host": "h", "port": 1883, "client_id": "c", "topic": "t"},
  "logging": {"level": "DEBUG", "format": "text"}
}`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	rec := Resolve(path, &testLogger{})

	if rec.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", rec.Logging.Level, "debug")
	}
	if rec.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", rec.Logging.Format, "text")
	}
	if rec.Logging.Output != "stdout" {
		t.Errorf("Logging.Output = %q, want default %q", rec.Logging.Output, "stdout")
	}
}

func TestGenerateClientID(t *testing.T) {
	a := GenerateClientID()
	b := GenerateClientID()

	if !strings.HasPrefix(a, "scanlink_") {
		t.Errorf("GenerateClientID() = %q, want scanlink_ prefix", a)
	}
	if a == b {
		t.Errorf("GenerateClientID() produced duplicate identity %q", a)
	}
}
