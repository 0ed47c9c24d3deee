package buttons

// MouseButton is a recognized mouse button, including the two extended
// ("X") buttons found on many gaming mice.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	MouseX1
	MouseX2
)

func (m MouseButton) String() string {
	switch m {
	case MouseLeft:
		return "LeftClick"
	case MouseMiddle:
		return "MiddleClick"
	case MouseRight:
		return "RightClick"
	case MouseX1:
		return "MouseX1"
	case MouseX2:
		return "MouseX2"
	default:
		return "UnknownMouseButton"
	}
}

// AllMouseButtons lists every recognized MouseButton.
func AllMouseButtons() []MouseButton {
	return []MouseButton{MouseLeft, MouseMiddle, MouseRight, MouseX1, MouseX2}
}

// ID returns a stable, config-file-safe identifier, distinct from String()
// which is meant for human display (e.g. "LeftClick" vs. ID's "Left").
func (m MouseButton) ID() string {
	switch m {
	case MouseLeft:
		return "Left"
	case MouseMiddle:
		return "Middle"
	case MouseRight:
		return "Right"
	case MouseX1:
		return "X1"
	case MouseX2:
		return "X2"
	default:
		return ""
	}
}

func mouseButtonFromID(id string) (MouseButton, bool) {
	for _, m := range AllMouseButtons() {
		if m.ID() == id {
			return m, true
		}
	}
	return 0, false
}

// MouseInput is a mouse button down/up event.
type MouseInput struct {
	Button    MouseButton
	Direction Direction
}

func MouseDown(b MouseButton) MouseInput { return MouseInput{Button: b, Direction: Down} }
func MouseUp(b MouseButton) MouseInput   { return MouseInput{Button: b, Direction: Up} }
