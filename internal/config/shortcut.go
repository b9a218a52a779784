package config

import "fmt"

// Server describes the Home Assistant instance every shortcut talks to.
type Server struct {
	BaseURL string
	Token   string
}

// Shortcut binds an optional key combination to one REST call.
type Shortcut struct {
	Name     string
	Method   string
	Endpoint string
	Body     map[string]any
	Hotkey   string // empty when the shortcut is trigger-only
}

// Format renders the shortcut the way --list prints it.
func (s Shortcut) Format() string {
	hotkey := s.Hotkey
	if hotkey == "" {
		hotkey = "(no hotkey)"
	}
	return fmt.Sprintf("%s -> %s %s %s", s.Name, s.Method, s.Endpoint, hotkey)
}
