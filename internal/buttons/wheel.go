package buttons

// MouseWheelButton is a scroll direction. Unlike keys and mouse buttons, it
// is a tap button: there is no "holding" a scroll tick, only the instant it
// happened.
type MouseWheelButton uint8

const (
	WheelUp MouseWheelButton = iota
	WheelDown
	WheelHorzRight
	WheelHorzLeft
)

func (w MouseWheelButton) String() string {
	switch w {
	case WheelUp:
		return "ScrollUp"
	case WheelDown:
		return "ScrollDown"
	case WheelHorzRight:
		return "ScrollRight"
	case WheelHorzLeft:
		return "ScrollLeft"
	default:
		return "UnknownWheelButton"
	}
}

// AllWheelButtons lists every recognized MouseWheelButton.
func AllWheelButtons() []MouseWheelButton {
	return []MouseWheelButton{WheelUp, WheelDown, WheelHorzRight, WheelHorzLeft}
}

// WheelInput is a single scroll tick. It carries no direction field of its
// own (unlike KeyInput/MouseInput) because wheel events are single-shot.
type WheelInput struct {
	Button MouseWheelButton
}

func Wheel(b MouseWheelButton) WheelInput { return WheelInput{Button: b} }
