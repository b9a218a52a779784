package config

import "fmt"

// Error reports a problem with the configuration or with anything derived
// from it: missing file, bad syntax, invalid fields, unknown backend or a
// hotkey that cannot be registered.
type Error struct {
	err error
}

// Errorf builds an *Error; %w verbs wrap as with fmt.Errorf.
func Errorf(format string, args ...any) error {
	return &Error{err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string { return e.err.Error() }

func (e *Error) Unwrap() error { return e.err }
