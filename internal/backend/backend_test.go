package backend

import (
	"errors"
	"reflect"
	"testing"

	"hashortcuts/internal/config"
	"hashortcuts/internal/hotkey/hook"
	"hashortcuts/internal/hotkey/keyboard"
)

func TestNewSelectsProvider(t *testing.T) {
	p, err := New("keyboard")
	if err != nil {
		t.Fatalf("keyboard: %v", err)
	}
	if _, ok := p.(*keyboard.Provider); !ok {
		t.Fatalf("keyboard backend is %T", p)
	}
	p, err = New("pynput")
	if err != nil {
		t.Fatalf("pynput: %v", err)
	}
	if _, ok := p.(*hook.Provider); !ok {
		t.Fatalf("pynput backend is %T", p)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	for _, name := range []string{"evdev", "KEYBOARD", "Pynput", ""} {
		_, err := New(name)
		var cfgErr *config.Error
		if !errors.As(err, &cfgErr) {
			t.Fatalf("New(%q): expected config error, got %v", name, err)
		}
		if Valid(name) {
			t.Fatalf("Valid(%q) = true", name)
		}
	}
	if !reflect.DeepEqual(Names(), []string{"keyboard", "pynput"}) {
		t.Fatalf("names = %v", Names())
	}
}

func TestCheckCombo(t *testing.T) {
	for _, name := range Names() {
		if err := CheckCombo(name, "ctrl+alt+l"); err != nil {
			t.Fatalf("%s: ctrl+alt+l: %v", name, err)
		}
		if err := CheckCombo(name, "ctrl+hyper"); err == nil {
			t.Fatalf("%s: ctrl+hyper should be rejected", name)
		}
	}
	if err := CheckCombo("evdev", "ctrl+a"); err == nil {
		t.Fatalf("unknown backend should be rejected")
	}
}
