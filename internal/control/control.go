// Package control defines the listener's unix-socket protocol and the
// client side used by --status.
package control

import "time"

// Ops understood by the listener.
const (
	OpStatus = "status"
	OpHealth = "health"
)

type Request struct {
	Op string `json:"op"`
}

type Status struct {
	Running   bool     `json:"running"`
	PID       int      `json:"pid"`
	Backend   string   `json:"backend"`
	Hotkeys   int      `json:"hotkeys"`
	UptimeSec float64  `json:"uptime_sec"`
	Firings   []Firing `json:"firings"`
}

type SimpleResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Firing records one hotkey-triggered call.
type Firing struct {
	ID         string    `json:"id"`
	Shortcut   string    `json:"shortcut"`
	OK         bool      `json:"ok"`
	StatusCode int       `json:"status_code,omitempty"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
