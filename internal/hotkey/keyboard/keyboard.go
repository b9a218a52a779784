//go:build linux || darwin || windows

// Package keyboard is the "keyboard" hotkey backend: each combination is
// grabbed directly through the OS hotkey API (X11 on Linux, Carbon on macOS,
// RegisterHotKey on Windows).
package keyboard

import (
	"context"
	"sync"

	"hashortcuts/internal/config"
	"hashortcuts/internal/hotkey"

	xhotkey "golang.design/x/hotkey"
)

// keyMap covers the keys available on every platform.
var keyMap = map[string]xhotkey.Key{
	"a": xhotkey.KeyA, "b": xhotkey.KeyB, "c": xhotkey.KeyC, "d": xhotkey.KeyD,
	"e": xhotkey.KeyE, "f": xhotkey.KeyF, "g": xhotkey.KeyG, "h": xhotkey.KeyH,
	"i": xhotkey.KeyI, "j": xhotkey.KeyJ, "k": xhotkey.KeyK, "l": xhotkey.KeyL,
	"m": xhotkey.KeyM, "n": xhotkey.KeyN, "o": xhotkey.KeyO, "p": xhotkey.KeyP,
	"q": xhotkey.KeyQ, "r": xhotkey.KeyR, "s": xhotkey.KeyS, "t": xhotkey.KeyT,
	"u": xhotkey.KeyU, "v": xhotkey.KeyV, "w": xhotkey.KeyW, "x": xhotkey.KeyX,
	"y": xhotkey.KeyY, "z": xhotkey.KeyZ,
	"0": xhotkey.Key0, "1": xhotkey.Key1, "2": xhotkey.Key2, "3": xhotkey.Key3,
	"4": xhotkey.Key4, "5": xhotkey.Key5, "6": xhotkey.Key6, "7": xhotkey.Key7,
	"8": xhotkey.Key8, "9": xhotkey.Key9,
	"f1": xhotkey.KeyF1, "f2": xhotkey.KeyF2, "f3": xhotkey.KeyF3, "f4": xhotkey.KeyF4,
	"f5": xhotkey.KeyF5, "f6": xhotkey.KeyF6, "f7": xhotkey.KeyF7, "f8": xhotkey.KeyF8,
	"f9": xhotkey.KeyF9, "f10": xhotkey.KeyF10, "f11": xhotkey.KeyF11, "f12": xhotkey.KeyF12,
	"space": xhotkey.KeySpace, "enter": xhotkey.KeyReturn, "esc": xhotkey.KeyEscape,
	"tab": xhotkey.KeyTab, "delete": xhotkey.KeyDelete,
	"left": xhotkey.KeyLeft, "right": xhotkey.KeyRight,
	"up": xhotkey.KeyUp, "down": xhotkey.KeyDown,
}

type binding struct {
	hk *xhotkey.Hotkey
	fn func()
}

// Provider grabs each combination with golang.design/x/hotkey.
type Provider struct {
	mu       sync.Mutex
	bindings []binding
}

// New returns an empty provider.
func New() *Provider {
	return &Provider{}
}

// Parse splits "ctrl+alt+l" into modifiers and the single non-modifier key.
func Parse(combo string) ([]xhotkey.Modifier, xhotkey.Key, error) {
	parts := hotkey.Split(combo)
	if len(parts) == 0 {
		return nil, 0, config.Errorf("invalid hotkey '%s'", combo)
	}
	var (
		mods   []xhotkey.Modifier
		key    xhotkey.Key
		hasKey bool
	)
	for _, part := range parts {
		name := hotkey.Canonical(part)
		if m, ok := modifierMap[name]; ok {
			mods = append(mods, m)
			continue
		}
		k, ok := keyMap[name]
		if !ok {
			return nil, 0, config.Errorf("failed to register hotkey '%s': unsupported key %q", combo, part)
		}
		if hasKey {
			return nil, 0, config.Errorf("failed to register hotkey '%s': more than one non-modifier key", combo)
		}
		key, hasKey = k, true
	}
	if !hasKey {
		return nil, 0, config.Errorf("failed to register hotkey '%s': no key besides modifiers", combo)
	}
	return mods, key, nil
}

// Check parses combo without registering it.
func Check(combo string) error {
	_, _, err := Parse(combo)
	return err
}

// Register grabs combo with the OS. Failure to grab (no display, key
// already taken) is reported as a config error.
func (p *Provider) Register(combo string, fn func()) error {
	mods, key, err := Parse(combo)
	if err != nil {
		return err
	}
	if err := displayAvailable(); err != nil {
		return config.Errorf("keyboard backend unavailable: %w", err)
	}
	hk := xhotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return config.Errorf("failed to register hotkey '%s': %w", combo, err)
	}
	p.mu.Lock()
	p.bindings = append(p.bindings, binding{hk: hk, fn: fn})
	p.mu.Unlock()
	return nil
}

// Run forwards key-down events to the bound callbacks until ctx is done,
// then releases every grab.
func (p *Provider) Run(ctx context.Context) error {
	p.mu.Lock()
	bindings := append([]binding(nil), p.bindings...)
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, b := range bindings {
		wg.Add(1)
		go func(b binding) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-b.hk.Keydown():
					b.fn()
				}
			}
		}(b)
	}
	<-ctx.Done()
	wg.Wait()
	for _, b := range bindings {
		_ = b.hk.Unregister()
	}
	return ctx.Err()
}
