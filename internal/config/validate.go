package config

import "fmt"

// Validate checks a decoded config document and converts it into a Config.
// The first problem found aborts; nothing is partially applied.
func Validate(raw map[string]any) (*Config, error) {
	serverRaw, hasServer := raw["server"]
	shortcutsRaw, hasShortcuts := raw["shortcuts"]
	if !hasServer || !hasShortcuts {
		return nil, Errorf("config must contain 'server' and 'shortcuts'")
	}

	server, ok := serverRaw.(map[string]any)
	if !ok {
		return nil, Errorf("'server' must be a mapping")
	}
	_, hasURL := server["base_url"]
	_, hasToken := server["token"]
	if !hasURL || !hasToken {
		return nil, Errorf("server config must include 'base_url' and 'token'")
	}

	cfg := Default()
	var err error
	if cfg.Server.BaseURL, err = requireString(server, "base_url", "server"); err != nil {
		return nil, err
	}
	if cfg.Server.Token, err = requireString(server, "token", "server"); err != nil {
		return nil, err
	}

	list, ok := shortcutsRaw.([]any)
	if !ok {
		return nil, Errorf("'shortcuts' must be a list")
	}
	seen := make(map[string]struct{}, len(list))
	cfg.Shortcuts = make([]Shortcut, 0, len(list))
	for i, item := range list {
		sc, err := shortcutFrom(i, item)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[sc.Name]; dup {
			return nil, Errorf("duplicate shortcut name %q", sc.Name)
		}
		seen[sc.Name] = struct{}{}
		cfg.Shortcuts = append(cfg.Shortcuts, sc)
	}
	return cfg, nil
}

func shortcutFrom(index int, item any) (Shortcut, error) {
	entry, ok := item.(map[string]any)
	if !ok {
		return Shortcut{}, Errorf("shortcut #%d must be a mapping", index+1)
	}
	for _, field := range []string{"name", "method", "endpoint"} {
		if _, ok := entry[field]; !ok {
			return Shortcut{}, Errorf("shortcut missing '%s': %v", field, entry)
		}
	}

	var (
		sc  Shortcut
		err error
	)
	where := fmt.Sprintf("shortcut #%d", index+1)
	if sc.Name, err = requireString(entry, "name", where); err != nil {
		return Shortcut{}, err
	}
	where = fmt.Sprintf("shortcut %q", sc.Name)
	if sc.Method, err = requireString(entry, "method", where); err != nil {
		return Shortcut{}, err
	}
	if sc.Endpoint, err = requireString(entry, "endpoint", where); err != nil {
		return Shortcut{}, err
	}

	switch body := entry["body"].(type) {
	case nil:
		sc.Body = map[string]any{}
	case map[string]any:
		sc.Body = body
	default:
		return Shortcut{}, Errorf("%s: 'body' must be a mapping", where)
	}

	switch hk := entry["hotkey"].(type) {
	case nil:
	case string:
		sc.Hotkey = hk
	default:
		return Shortcut{}, Errorf("%s: 'hotkey' must be a string", where)
	}
	return sc, nil
}

func requireString(m map[string]any, key, where string) (string, error) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", Errorf("%s: '%s' must be a non-empty string", where, key)
	}
	return s, nil
}
