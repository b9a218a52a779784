package daemon

import (
	"os"
	"path/filepath"
)

const (
	pidName    = "ha-shortcuts.pid"
	logName    = "ha-shortcuts.out"
	socketName = "ha-shortcuts.sock"
)

// Paths locates the lifecycle files of the background listener.
type Paths struct {
	Pid    string
	Log    string
	Socket string
}

// DefaultPaths puts the files next to the executable, or in
// HA_SHORTCUTS_STATE_DIR when set.
func DefaultPaths() Paths {
	dir := os.Getenv("HA_SHORTCUTS_STATE_DIR")
	if dir == "" {
		if exe, err := os.Executable(); err == nil {
			dir = filepath.Dir(exe)
		}
	}
	return PathsIn(dir)
}

// PathsIn returns the lifecycle file locations inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		Pid:    filepath.Join(dir, pidName),
		Log:    filepath.Join(dir, logName),
		Socket: filepath.Join(dir, socketName),
	}
}
