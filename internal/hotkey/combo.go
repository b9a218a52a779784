package hotkey

import (
	"strings"

	"hashortcuts/internal/config"
)

var modifierNames = map[string]bool{
	"ctrl": true, "control": true,
	"alt": true, "option": true,
	"shift": true,
	"cmd": true, "command": true, "super": true, "win": true, "windows": true,
}

// canonicalNames folds aliases onto one name per physical key class.
var canonicalNames = map[string]string{
	"control": "ctrl", "lctrl": "ctrl", "rctrl": "ctrl",
	"option": "alt", "lalt": "alt", "ralt": "alt", "altgr": "alt",
	"lshift": "shift", "rshift": "shift",
	"command": "cmd", "super": "cmd", "win": "cmd", "windows": "cmd",
	"lcmd": "cmd", "rcmd": "cmd", "meta": "cmd",
	"return": "enter",
	"escape": "esc",
}

// IsModifier reports whether name is a modifier key name or alias.
func IsModifier(name string) bool {
	return modifierNames[strings.ToLower(name)]
}

// Canonical returns the comparable form of a key name.
func Canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := canonicalNames[name]; ok {
		return c
	}
	return name
}

// Split breaks a "+"-joined combo into lower-cased tokens, skipping empty
// ones.
func Split(combo string) []string {
	var parts []string
	for _, raw := range strings.Split(combo, "+") {
		part := strings.ToLower(strings.TrimSpace(raw))
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// ToPynputCombo rewrites "ctrl+alt+l" into the bracketed form "<ctrl>+<alt>+l":
// modifiers and multi-character names are wrapped, single characters are not.
func ToPynputCombo(combo string) (string, error) {
	if combo == "" {
		return "", config.Errorf("empty hotkey")
	}
	parts := Split(combo)
	if len(parts) == 0 {
		return "", config.Errorf("invalid hotkey '%s'", combo)
	}
	for i, part := range parts {
		if IsModifier(part) || len(part) > 1 {
			parts[i] = "<" + part + ">"
		}
	}
	return strings.Join(parts, "+"), nil
}

// ParseCombo parses the bracketed form into canonical key names.
func ParseCombo(combo string) ([]string, error) {
	var keys []string
	seen := map[string]bool{}
	for _, raw := range strings.Split(combo, "+") {
		tok := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") && len(tok) > 2:
			tok = tok[1 : len(tok)-1]
		case len([]rune(tok)) == 1:
		default:
			return nil, config.Errorf("failed to parse hotkey '%s': bad token %q", combo, raw)
		}
		key := Canonical(tok)
		if seen[key] {
			return nil, config.Errorf("failed to parse hotkey '%s': %q repeated", combo, tok)
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys, nil
}
