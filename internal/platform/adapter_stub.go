//go:build !windows

package platform

import (
	"reemap/internal/buttons"
	"reemap/internal/engine"
	"reemap/internal/foreground"
)

// Adapter is a no-op stand-in on platforms without a low-level hook
// implementation. Reemap's engine, ruleset, and config packages are all
// platform-independent and buildable everywhere; only this package is
// Windows-only in practice.
type Adapter struct{}

func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) Start(eng *engine.Engine, tracker *foreground.Tracker) error {
	return ErrUnsupported
}

func (a *Adapter) Stop() error { return nil }

// CurrentWindow has no foreground window to report on platforms without a
// hook implementation.
func (a *Adapter) CurrentWindow() (foreground.WindowInfo, error) {
	return foreground.WindowInfo{}, ErrUnsupported
}

func (a *Adapter) Send(batch []buttons.Input) {}
