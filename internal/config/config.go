package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigName  = "config.yaml"
	defaultWorkers     = 4
	defaultQueueSize   = 64
	defaultMetricsAddr = "127.0.0.1:9318"
)

// Config holds the server, the shortcut list and the listener settings.
type Config struct {
	Server    Server
	Shortcuts []Shortcut

	Logging struct {
		Level  string `json:"level"`  // debug, info, warn, error
		Format string `json:"format"` // text, json
		File   string `json:"file"`   // optional rotated copy of the log
	}

	Listener struct {
		Workers   int `json:"workers"`
		QueueSize int `json:"queue_size"`
	}

	Metrics struct {
		Enabled bool   `json:"enabled"`
		Addr    string `json:"addr"`
	}

	// Path is the file the config was loaded from.
	Path string
}

// Default returns a Config with listener, logging and metrics defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Listener.Workers = defaultWorkers
	cfg.Listener.QueueSize = defaultQueueSize
	cfg.Metrics.Addr = defaultMetricsAddr
	return cfg
}

// DefaultPath returns config.yaml next to the executable unless
// HA_SHORTCUTS_CONFIG points elsewhere.
func DefaultPath() string {
	if v := os.Getenv("HA_SHORTCUTS_CONFIG"); v != "" {
		return v
	}
	exe, err := os.Executable()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(filepath.Dir(exe), defaultConfigName)
}

// Load reads, parses and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Errorf("config file not found: %s", path)
		}
		return nil, Errorf("read config: %w", err)
	}

	raw := map[string]any{}
	if err := decode(path, data, &raw); err != nil {
		return nil, Errorf("config parse error: %w", err)
	}

	cfg, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	if err := applySections(cfg, raw); err != nil {
		return nil, err
	}
	cfg.Path = path
	applyEnvOverrides(cfg)
	return cfg, nil
}

func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	case ".toml":
		return toml.Unmarshal(data, v)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(v); err != nil {
			return err
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return errors.New("unexpected data after JSON document")
		}
		return nil
	}
}

// applySections copies the optional logging/listener/metrics sections onto
// cfg. Each section is re-encoded as JSON so the three file formats share a
// single typed decode.
func applySections(cfg *Config, raw map[string]any) error {
	for key, dst := range map[string]any{
		"logging":  &cfg.Logging,
		"listener": &cfg.Listener,
		"metrics":  &cfg.Metrics,
	} {
		section, ok := raw[key]
		if !ok || section == nil {
			continue
		}
		if _, ok := section.(map[string]any); !ok {
			return Errorf("'%s' must be a mapping", key)
		}
		buf, err := json.Marshal(section)
		if err != nil {
			return Errorf("%s: %w", key, err)
		}
		if err := json.Unmarshal(buf, dst); err != nil {
			return Errorf("%s: %w", key, err)
		}
	}
	if cfg.Listener.Workers <= 0 {
		cfg.Listener.Workers = defaultWorkers
	}
	if cfg.Listener.QueueSize <= 0 {
		cfg.Listener.QueueSize = defaultQueueSize
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = defaultMetricsAddr
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HA_SHORTCUTS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HA_SHORTCUTS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("HA_SHORTCUTS_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
}

// Lookup returns the first shortcut with exactly the given name.
func (c *Config) Lookup(name string) (Shortcut, bool) {
	for _, s := range c.Shortcuts {
		if s.Name == name {
			return s, true
		}
	}
	return Shortcut{}, false
}
