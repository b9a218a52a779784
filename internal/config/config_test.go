package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
server:
  base_url: http://ha.local:8123/
  token: secret
shortcuts:
  - name: table_led
    method: post
    endpoint: /api/services/light/toggle
    body:
      entity_id: light.table
    hotkey: ctrl+alt+l
  - name: status
    method: GET
    endpoint: /api/
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAMLAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.BaseURL != "http://ha.local:8123/" || cfg.Server.Token != "secret" {
		t.Fatalf("server not loaded: %+v", cfg.Server)
	}
	if len(cfg.Shortcuts) != 2 {
		t.Fatalf("expected 2 shortcuts, got %d", len(cfg.Shortcuts))
	}
	led := cfg.Shortcuts[0]
	if led.Body["entity_id"] != "light.table" || led.Hotkey != "ctrl+alt+l" {
		t.Fatalf("table_led mismatch: %+v", led)
	}
	status := cfg.Shortcuts[1]
	if status.Body == nil || len(status.Body) != 0 {
		t.Fatalf("missing body should default to empty map, got %#v", status.Body)
	}
	if status.Hotkey != "" {
		t.Fatalf("missing hotkey should be empty, got %q", status.Hotkey)
	}
	if cfg.Listener.Workers != defaultWorkers || cfg.Listener.QueueSize != defaultQueueSize {
		t.Fatalf("listener defaults not applied: %+v", cfg.Listener)
	}
}

func TestLoadJSONForUnknownExtension(t *testing.T) {
	doc := `{"server":{"base_url":"http://x","token":"t"},
	"shortcuts":[{"name":"a","method":"POST","endpoint":"/api/a","hotkey":null}],
	"listener":{"workers":2}}`
	cfg, err := Load(writeFile(t, "config.conf", doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Shortcuts[0].Name != "a" || cfg.Shortcuts[0].Hotkey != "" {
		t.Fatalf("unexpected shortcut: %+v", cfg.Shortcuts[0])
	}
	if cfg.Listener.Workers != 2 {
		t.Fatalf("listener.workers = %d, want 2", cfg.Listener.Workers)
	}
}

func TestLoadTOML(t *testing.T) {
	doc := `
[server]
base_url = "http://ha.local:8123"
token = "t"

[[shortcuts]]
name = "scene"
method = "POST"
endpoint = "/api/services/scene/turn_on"
hotkey = "ctrl+shift+s"
[shortcuts.body]
entity_id = "scene.movie"

[metrics]
enabled = true
`
	cfg, err := Load(writeFile(t, "config.toml", doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Shortcuts[0].Body["entity_id"]; got != "scene.movie" {
		t.Fatalf("body entity_id = %v", got)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != defaultMetricsAddr {
		t.Fatalf("metrics section not applied: %+v", cfg.Metrics)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestLoadParseError(t *testing.T) {
	_, err := Load(writeFile(t, "config.json", "{not json"))
	var cfgErr *Error
	if !errors.As(err, &cfgErr) || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadRejectsTrailingJSON(t *testing.T) {
	doc := `{"server": {"base_url": "http://x", "token": "t"}, "shortcuts": []}`
	if _, err := Load(writeFile(t, "config.json", doc+"\n\n")); err != nil {
		t.Fatalf("trailing whitespace must load: %v", err)
	}
	_, err := Load(writeFile(t, "config.json", doc+" garbage"))
	var cfgErr *Error
	if !errors.As(err, &cfgErr) || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	server := map[string]any{"base_url": "http://x", "token": "t"}
	good := map[string]any{"name": "a", "method": "GET", "endpoint": "/a"}
	cases := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"no server", map[string]any{"shortcuts": []any{}}, "'server' and 'shortcuts'"},
		{"no shortcuts", map[string]any{"server": server}, "'server' and 'shortcuts'"},
		{"no token", map[string]any{"server": map[string]any{"base_url": "http://x"}, "shortcuts": []any{}}, "'base_url' and 'token'"},
		{"no base_url", map[string]any{"server": map[string]any{"token": "t"}, "shortcuts": []any{}}, "'base_url' and 'token'"},
		{"shortcuts not list", map[string]any{"server": server, "shortcuts": map[string]any{}}, "must be a list"},
		{"missing endpoint", map[string]any{"server": server, "shortcuts": []any{map[string]any{"name": "a", "method": "GET"}}}, "missing 'endpoint'"},
		{"empty method", map[string]any{"server": server, "shortcuts": []any{map[string]any{"name": "a", "method": "", "endpoint": "/a"}}}, "'method' must be"},
		{"body not mapping", map[string]any{"server": server, "shortcuts": []any{map[string]any{"name": "a", "method": "GET", "endpoint": "/a", "body": "x"}}}, "'body' must be"},
		{"duplicate", map[string]any{"server": server, "shortcuts": []any{good, good}}, "duplicate"},
	}
	for _, c := range cases {
		_, err := Validate(c.raw)
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		var cfgErr *Error
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected *Error, got %T", c.name, err)
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%s: error %q does not mention %q", c.name, err, c.want)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HA_SHORTCUTS_LOG_LEVEL", "debug")
	t.Setenv("HA_SHORTCUTS_LOG_FORMAT", "json")
	t.Setenv("HA_SHORTCUTS_METRICS_ADDR", "1.2.3.4:9999")

	cfg, err := Load(writeFile(t, "config.yml", sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging overrides failed: %+v", cfg.Logging)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != "1.2.3.4:9999" {
		t.Fatalf("metrics override failed: %+v", cfg.Metrics)
	}
}

func TestFormatAndLookup(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{
		"table_led -> post /api/services/light/toggle ctrl+alt+l",
		"status -> GET /api/ (no hotkey)",
	}
	for i, sc := range cfg.Shortcuts {
		if got := sc.Format(); got != want[i] {
			t.Fatalf("Format()=%q want %q", got, want[i])
		}
	}
	if _, ok := cfg.Lookup("status"); !ok {
		t.Fatalf("expected lookup hit")
	}
	if _, ok := cfg.Lookup("Status"); ok {
		t.Fatalf("lookup must be exact")
	}
}
