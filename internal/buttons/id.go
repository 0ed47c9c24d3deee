package buttons

import "strings"

// ID returns an identifier for b suitable for config files: a "key:",
// "mouse:" or "wheel:" prefix followed by the button's name. Mouse buttons
// use MouseButton.ID, which is independent of their display String(); key
// and wheel IDs reuse String(), so renaming one of those display strings
// changes the ID.
func (b Button) ID() string {
	switch b.Kind {
	case KindKey:
		return "key:" + b.Key.String()
	case KindMouse:
		return "mouse:" + b.Mouse.ID()
	case KindWheel:
		return "wheel:" + b.Wheel.String()
	default:
		return ""
	}
}

// ID returns a stable identifier for h, using the same "key:"/"mouse:"
// vocabulary as Button.ID.
func (h HoldButton) ID() string {
	return h.Button().ID()
}

// ParseButtonID parses the string produced by Button.ID.
func ParseButtonID(s string) (Button, bool) {
	kind, name, ok := strings.Cut(s, ":")
	if !ok {
		return Button{}, false
	}
	switch kind {
	case "key":
		for _, k := range AllKeys() {
			if k.String() == name {
				return ButtonKey(k), true
			}
		}
	case "mouse":
		if m, ok := mouseButtonFromID(name); ok {
			return ButtonMouse(m), true
		}
	case "wheel":
		for _, w := range AllWheelButtons() {
			if w.String() == name {
				return ButtonWheel(w), true
			}
		}
	}
	return Button{}, false
}

// ParseHoldButtonID parses the string produced by HoldButton.ID. It rejects
// wheel IDs since wheel buttons cannot be held.
func ParseHoldButtonID(s string) (HoldButton, bool) {
	b, ok := ParseButtonID(s)
	if !ok || !b.IsHold() {
		return HoldButton{}, false
	}
	return HoldButton{Kind: b.Kind, Key: b.Key, Mouse: b.Mouse}, true
}
