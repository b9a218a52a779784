package hotkey

import (
	"context"
	"errors"
	"fmt"
	"io"

	"hashortcuts/internal/config"

	"github.com/sirupsen/logrus"
)

// State is the dispatcher lifecycle stage.
type State int

const (
	Idle State = iota
	Registering
	Listening
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Registering:
		return "registering"
	case Listening:
		return "listening"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Dispatcher registers shortcut hotkeys with a Provider and blocks while
// the provider listens.
type Dispatcher struct {
	provider Provider
	out      io.Writer
	logger   *logrus.Logger
	state    State
	bound    int
}

// NewDispatcher returns an idle dispatcher printing progress lines to out.
func NewDispatcher(p Provider, out io.Writer, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{provider: p, out: out, logger: logger}
}

// State returns the current lifecycle stage.
func (d *Dispatcher) State() State { return d.state }

// Bound returns how many shortcuts were registered.
func (d *Dispatcher) Bound() int { return d.bound }

// Register binds every shortcut that has a hotkey, in order. fire is called
// from the backend's event path and must not block. The first failure
// aborts; the dispatcher is then Terminated.
func (d *Dispatcher) Register(shortcuts []config.Shortcut, fire func(config.Shortcut)) error {
	if d.state != Idle {
		return fmt.Errorf("register: dispatcher is %s", d.state)
	}
	d.state = Registering
	for _, sc := range shortcuts {
		if sc.Hotkey == "" {
			continue
		}
		sc := sc
		if err := d.provider.Register(sc.Hotkey, func() { fire(sc) }); err != nil {
			d.state = Terminated
			var cfgErr *config.Error
			if errors.As(err, &cfgErr) {
				return err
			}
			return config.Errorf("failed to register hotkey '%s': %w", sc.Hotkey, err)
		}
		d.bound++
		_, _ = fmt.Fprintf(d.out, "Registered hotkey '%s' for '%s'\n", sc.Hotkey, sc.Name)
		d.logger.WithFields(logrus.Fields{"hotkey": sc.Hotkey, "shortcut": sc.Name}).Debug("hotkey registered")
	}
	return nil
}

// Listen blocks in the provider until ctx is done.
func (d *Dispatcher) Listen(ctx context.Context) error {
	if d.state != Registering {
		return fmt.Errorf("listen: dispatcher is %s", d.state)
	}
	d.state = Listening
	_, _ = fmt.Fprintln(d.out, "Listening for hotkeys (Ctrl+C to exit)...")
	err := d.provider.Run(ctx)
	d.state = Terminated
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
