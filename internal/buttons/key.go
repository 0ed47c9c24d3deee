// Package buttons provides the bijection between physical input buttons and
// the input vocabulary the interception engine operates on.
package buttons

// KeyButton is a recognized keyboard key. Values match the Windows virtual-key
// code of the physical key, which keeps platform decode/encode a direct cast
// instead of a lookup table for the common case.
type KeyButton uint8

const (
	KeyLeftShift KeyButton = 0xA0
	KeyRightShift KeyButton = 0xA1
	KeySpace      KeyButton = 0x20
	KeyLeftCtrl   KeyButton = 0xA2
	KeyRightCtrl  KeyButton = 0xA3
	KeyLeftAlt    KeyButton = 0xA4
	KeyRightAlt   KeyButton = 0xA5
	KeyEnter      KeyButton = 0x0D
	KeyEscape     KeyButton = 0x1B
	KeyTab        KeyButton = 0x09
	KeyBackspace  KeyButton = 0x08
	KeyCapsLock   KeyButton = 0x14

	KeyA KeyButton = 0x41
	KeyB KeyButton = 0x42
	KeyC KeyButton = 0x43
	KeyD KeyButton = 0x44
	KeyE KeyButton = 0x45
	KeyF KeyButton = 0x46
	KeyG KeyButton = 0x47
	KeyH KeyButton = 0x48
	KeyI KeyButton = 0x49
	KeyJ KeyButton = 0x4A
	KeyK KeyButton = 0x4B
	KeyL KeyButton = 0x4C
	KeyM KeyButton = 0x4D
	KeyN KeyButton = 0x4E
	KeyO KeyButton = 0x4F
	KeyP KeyButton = 0x50
	KeyQ KeyButton = 0x51
	KeyR KeyButton = 0x52
	KeyS KeyButton = 0x53
	KeyT KeyButton = 0x54
	KeyU KeyButton = 0x55
	KeyV KeyButton = 0x56
	KeyW KeyButton = 0x57
	KeyX KeyButton = 0x58
	KeyY KeyButton = 0x59
	KeyZ KeyButton = 0x5A

	KeyF1  KeyButton = 0x70
	KeyF2  KeyButton = 0x71
	KeyF3  KeyButton = 0x72
	KeyF4  KeyButton = 0x73
	KeyF5  KeyButton = 0x74
	KeyF6  KeyButton = 0x75
	KeyF7  KeyButton = 0x76
	KeyF8  KeyButton = 0x77
	KeyF9  KeyButton = 0x78
	KeyF10 KeyButton = 0x79
	KeyF11 KeyButton = 0x7A
	KeyF12 KeyButton = 0x7B
)

// keyNames maps every recognized KeyButton to its display name, used by the
// (out-of-scope) editor and by tests. Its iteration order (and so the order
// AllKeys returns) is not defined; the dense index sorts keys separately.
var keyNames = map[KeyButton]string{
	KeyLeftShift: "LeftShift", KeyRightShift: "RightShift", KeySpace: "Space",
	KeyLeftCtrl: "LeftCtrl", KeyRightCtrl: "RightCtrl", KeyLeftAlt: "LeftAlt",
	KeyRightAlt: "RightAlt", KeyEnter: "Enter", KeyEscape: "Escape",
	KeyTab: "Tab", KeyBackspace: "Backspace", KeyCapsLock: "CapsLock",
	KeyA: "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F",
	KeyG: "G", KeyH: "H", KeyI: "I", KeyJ: "J", KeyK: "K", KeyL: "L",
	KeyM: "M", KeyN: "N", KeyO: "O", KeyP: "P", KeyQ: "Q", KeyR: "R",
	KeyS: "S", KeyT: "T", KeyU: "U", KeyV: "V", KeyW: "W", KeyX: "X",
	KeyY: "Y", KeyZ: "Z",
	KeyF1: "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5",
	KeyF6: "F6", KeyF7: "F7", KeyF8: "F8", KeyF9: "F9", KeyF10: "F10",
	KeyF11: "F11", KeyF12: "F12",
}

// AllKeys lists every recognized KeyButton, for the editor and for tests.
func AllKeys() []KeyButton {
	out := make([]KeyButton, 0, len(keyNames))
	for k := range keyNames {
		out = append(out, k)
	}
	return out
}

func (k KeyButton) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "UnknownKey"
}

// IsRecognizedKey reports whether vk is a virtual-key code this package
// knows how to remap. Unrecognized codes must be forwarded untouched by the
// platform adapter rather than rejected.
func IsRecognizedKey(vk uint8) bool {
	_, ok := keyNames[KeyButton(vk)]
	return ok
}

// KeyInput is a keyboard down/up event carrying the button it happened to.
type KeyInput struct {
	Button    KeyButton
	Direction Direction
}

func KeyDown(b KeyButton) KeyInput { return KeyInput{Button: b, Direction: Down} }
func KeyUp(b KeyButton) KeyInput   { return KeyInput{Button: b, Direction: Up} }
