// Package hotkey binds shortcut key combinations to callbacks through an
// interchangeable OS-level backend.
package hotkey

import "context"

// Provider is a global hotkey backend.
type Provider interface {
	// Register binds combo (as written in the config, e.g. "ctrl+alt+l")
	// to fn. fn must return quickly; it runs on the backend's event path.
	Register(combo string, fn func()) error
	// Run blocks until ctx is done or the backend stops.
	Run(ctx context.Context) error
}
