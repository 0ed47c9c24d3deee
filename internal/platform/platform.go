// Package platform is the seam between the OS's raw input hooks and the
// engine's input vocabulary: it decodes low-level keyboard/mouse hook
// payloads into buttons.HoldButton/TapButton, filters injected events and
// the scroll-lock kill switch, and encodes the engine's synthetic Output
// back into a platform SendInput-style batch.
package platform

import "errors"

// ErrUnsupported is returned by Start on an operating system this package
// has no hook implementation for.
var ErrUnsupported = errors.New("platform: low-level input hooks are not implemented for this operating system")
