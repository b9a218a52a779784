//go:build darwin || windows

package keyboard

func displayAvailable() error { return nil }
