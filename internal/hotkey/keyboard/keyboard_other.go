//go:build !linux && !darwin && !windows

package keyboard

import (
	"context"

	"hashortcuts/internal/config"
)

// Provider is unavailable on this platform.
type Provider struct{}

// New returns a provider whose registrations always fail.
func New() *Provider {
	return &Provider{}
}

func Check(combo string) error {
	return config.Errorf("keyboard backend unavailable on this platform")
}

func (p *Provider) Register(combo string, fn func()) error {
	return config.Errorf("keyboard backend unavailable on this platform")
}

func (p *Provider) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
