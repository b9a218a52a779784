// Package backend selects the hotkey provider named on the command line.
package backend

import (
	"sort"
	"strings"

	"hashortcuts/internal/config"
	"hashortcuts/internal/hotkey"
	"hashortcuts/internal/hotkey/hook"
	"hashortcuts/internal/hotkey/keyboard"
)

const (
	Keyboard = "keyboard"
	Pynput   = "pynput"
	Default  = Keyboard
)

type factory struct {
	new   func() hotkey.Provider
	check func(combo string) error
}

var factories = map[string]factory{
	Keyboard: {new: func() hotkey.Provider { return keyboard.New() }, check: keyboard.Check},
	Pynput:   {new: func() hotkey.Provider { return hook.New() }, check: hook.Check},
}

// Names lists the accepted backend names.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns a fresh provider for name. Names match exactly.
func New(name string) (hotkey.Provider, error) {
	f, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return f.new(), nil
}

// Valid reports whether name selects a known backend.
func Valid(name string) bool {
	_, ok := factories[name]
	return ok
}

// CheckCombo reports whether combo would register with the named backend,
// without grabbing anything.
func CheckCombo(name, combo string) error {
	f, err := lookup(name)
	if err != nil {
		return err
	}
	return f.check(combo)
}

func lookup(name string) (factory, error) {
	f, ok := factories[name]
	if !ok {
		return factory{}, config.Errorf("unknown backend '%s' (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}
