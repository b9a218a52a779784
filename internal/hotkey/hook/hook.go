// Package hook is the "pynput" hotkey backend: a low-level keyboard
// observer (libuiohook via robotn/gohook) whose press/release events are
// canonicalised and fed to one matcher per combination.
package hook

import (
	"context"
	"errors"
	"strings"
	"sync"

	"hashortcuts/internal/config"
	"hashortcuts/internal/hotkey"

	gohook "github.com/robotn/gohook"
)

// shifted lists characters that share a keycode with an unshifted one.
const shifted = `~!@#$%^&*()_+{}|:"<>?`

// Provider observes every key event and matches combinations itself.
type Provider struct {
	mu       sync.Mutex
	matchers []*hotkey.Matcher
	names    map[uint16]string
	codes    map[string]uint16
}

// New builds the keycode tables from gohook's key map. Each keycode gets a
// single name, so aliases such as "<" resolve to the same key as ",".
func New() *Provider {
	p := &Provider{
		names: make(map[uint16]string, len(gohook.Keycode)),
		codes: make(map[string]uint16, len(gohook.Keycode)),
	}
	for name, code := range gohook.Keycode {
		c := hotkey.Canonical(name)
		if prev, ok := p.codes[c]; !ok || code < prev {
			p.codes[c] = code
		}
		if prev, ok := p.names[code]; !ok || preferName(c, prev) {
			p.names[code] = c
		}
	}
	return p
}

// preferName orders candidate names for one keycode: unshifted first, then
// shorter, then lexically smaller.
func preferName(a, b string) bool {
	as, bs := isShifted(a), isShifted(b)
	if as != bs {
		return bs
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isShifted(name string) bool {
	return len(name) == 1 && strings.Contains(shifted, name)
}

var defaultTables = sync.OnceValue(New)

// Check reports whether combo would register with this backend.
func Check(combo string) error {
	_, err := defaultTables().keys(combo)
	return err
}

// Register translates combo to the bracketed form, parses it and adds a
// matcher for it.
func (p *Provider) Register(combo string, fn func()) error {
	keys, err := p.keys(combo)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.matchers = append(p.matchers, hotkey.NewMatcher(keys, fn))
	p.mu.Unlock()
	return nil
}

// keys resolves combo to the names dispatch produces for the same keys.
func (p *Provider) keys(combo string) ([]string, error) {
	bracketed, err := hotkey.ToPynputCombo(combo)
	if err != nil {
		return nil, err
	}
	keys, err := hotkey.ParseCombo(bracketed)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		if hotkey.IsModifier(k) {
			continue
		}
		code, ok := p.codes[k]
		if !ok {
			return nil, config.Errorf("failed to parse hotkey '%s': unknown key %q", combo, k)
		}
		keys[i] = p.names[code]
	}
	return keys, nil
}

// Run starts the global observer and feeds it to the matchers until ctx is
// done or the observer stops.
func (p *Provider) Run(ctx context.Context) error {
	events := gohook.Start()
	defer gohook.End()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errors.New("keyboard observer stopped")
			}
			p.dispatch(ev)
		}
	}
}

func (p *Provider) dispatch(ev gohook.Event) {
	var press bool
	switch ev.Kind {
	case gohook.KeyHold:
		press = true
	case gohook.KeyUp:
	default:
		return
	}
	key := p.canonical(ev)
	if key == "" {
		return
	}
	p.mu.Lock()
	matchers := p.matchers
	p.mu.Unlock()
	for _, m := range matchers {
		if press {
			m.Press(key)
		} else {
			m.Release(key)
		}
	}
}

// canonical maps a platform key event to the name used in combos.
func (p *Provider) canonical(ev gohook.Event) string {
	if name, ok := p.names[ev.Keycode]; ok {
		return name
	}
	if name := gohook.RawcodetoKeychar(ev.Rawcode); name != "" {
		return hotkey.Canonical(name)
	}
	if ev.Keychar > 0 && ev.Keychar != 0xFFFF {
		return hotkey.Canonical(string(ev.Keychar))
	}
	return ""
}
