// Package singleton guards against two Reemap processes installing hooks at
// once (spec §5 "Resource discipline": "a process-singleton lock prevents a
// second engine instance from double-hooking"). Grounded on
// original_source/src/unique.rs's UniqueGuard: a named CreateMutexW checked
// for ERROR_ALREADY_EXISTS, released on Close.
package singleton

import "errors"

// ErrAlreadyRunning is returned by Acquire when another instance already
// holds the guard.
var ErrAlreadyRunning = errors.New("singleton: another instance of reemap is already running")

// Guard is held for the process lifetime; Close releases it.
type Guard interface {
	Close() error
}
