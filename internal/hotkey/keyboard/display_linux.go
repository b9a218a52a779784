//go:build linux

package keyboard

import (
	"errors"
	"os"
)

// X11 grabs need a display; without one the library fails deep in cgo.
func displayAvailable() error {
	if os.Getenv("DISPLAY") == "" {
		return errors.New("DISPLAY not set")
	}
	return nil
}
