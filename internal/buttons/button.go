package buttons

import "sort"

// Direction distinguishes a hold-class button's down event from its up
// event. Wheel (tap-class) inputs carry no Direction.
type Direction uint8

const (
	Down Direction = iota
	Up
)

func (d Direction) String() string {
	if d == Down {
		return "Down"
	}
	return "Up"
}

// Kind discriminates the three button families. Button, HoldButton, and
// TapButton below are all implemented as a Kind tag plus the matching
// payload field rather than an interface, so that switching on Kind is
// exhaustive-checkable and there is no dynamic dispatch on the interception
// engine's hot path (see spec's note on RemapPolicy: "do not model it with
// inheritance").
type Kind uint8

const (
	KindKey Kind = iota
	KindMouse
	KindWheel
)

// Button is any physical button, including tap-class wheel directions. It is
// the type remap targets (Output) are expressed in.
type Button struct {
	Kind  Kind
	Key   KeyButton
	Mouse MouseButton
	Wheel MouseWheelButton
}

func ButtonKey(k KeyButton) Button     { return Button{Kind: KindKey, Key: k} }
func ButtonMouse(m MouseButton) Button { return Button{Kind: KindMouse, Mouse: m} }
func ButtonWheel(w MouseWheelButton) Button { return Button{Kind: KindWheel, Wheel: w} }

func (b Button) String() string {
	switch b.Kind {
	case KindKey:
		return b.Key.String()
	case KindMouse:
		return b.Mouse.String()
	case KindWheel:
		return b.Wheel.String()
	default:
		return "UnknownButton"
	}
}

// IsHold reports whether this button is hold-class (can be held, has
// distinct down/up events) as opposed to tap-class (wheel).
func (b Button) IsHold() bool { return b.Kind == KindKey || b.Kind == KindMouse }

// HoldButton is a button with distinct down/up events: a key or a mouse
// button. Condition lists (Layer.Condition) are expressed in terms of
// HoldButton, since only physical hold-class presses can gate a layer.
type HoldButton struct {
	Kind  Kind // KindKey or KindMouse
	Key   KeyButton
	Mouse MouseButton
}

func HoldKey(k KeyButton) HoldButton     { return HoldButton{Kind: KindKey, Key: k} }
func HoldMouse(m MouseButton) HoldButton { return HoldButton{Kind: KindMouse, Mouse: m} }

func (h HoldButton) String() string { return h.Button().String() }

// Button widens a HoldButton to the full Button union.
func (h HoldButton) Button() Button {
	switch h.Kind {
	case KindKey:
		return ButtonKey(h.Key)
	case KindMouse:
		return ButtonMouse(h.Mouse)
	default:
		panic("buttons: invalid HoldButton kind")
	}
}

// TapButton is a button whose only event is instantaneous: a scroll
// direction.
type TapButton struct {
	Wheel MouseWheelButton
}

func Tap(w MouseWheelButton) TapButton { return TapButton{Wheel: w} }

func (t TapButton) String() string { return t.Wheel.String() }

func (t TapButton) Button() Button { return ButtonWheel(t.Wheel) }

// Output is the ordered list of target buttons a Remap(output) policy
// dispatches. Order is significant for down-press ordering; length is
// typically small (≤8), so a plain slice (no SmallVec equivalent exists in
// the retrieval pack) is exactly the teacher's style for small owned lists.
type Output []Button

// Clone returns an independent copy of the output, so HeldWithRemap can
// store a snapshot that survives a later ruleset replacement (spec §9,
// "Ownership of Output inside HeldWithRemap").
func (o Output) Clone() Output {
	if o == nil {
		return nil
	}
	out := make(Output, len(o))
	copy(out, o)
	return out
}

// InputKind discriminates the synthesized-input union used for encode/send.
type InputKind uint8

const (
	InputKey InputKind = iota
	InputMouse
	InputWheel
)

// Input is a single synthesized input event ready for platform encoding.
type Input struct {
	Kind  InputKind
	Key   KeyInput
	Mouse MouseInput
	Wheel WheelInput
}

func FromKeyInput(k KeyInput) Input     { return Input{Kind: InputKey, Key: k} }
func FromMouseInput(m MouseInput) Input { return Input{Kind: InputMouse, Mouse: m} }
func FromWheelInput(w WheelInput) Input { return Input{Kind: InputWheel, Wheel: w} }

// -------------------- dense indexing --------------------

var (
	orderedKeys  []KeyButton
	keyIndex     map[KeyButton]int
	orderedMouse = AllMouseButtons()
	orderedWheel = AllWheelButtons()
)

func init() {
	orderedKeys = AllKeys()
	sort.Slice(orderedKeys, func(i, j int) bool { return orderedKeys[i] < orderedKeys[j] })
	keyIndex = make(map[KeyButton]int, len(orderedKeys))
	for i, k := range orderedKeys {
		keyIndex[k] = i
	}
}

// NumButtons is the total count of distinct dense indices Index() can
// return, i.e. the size an EnumMap-style slice keyed by Index() needs.
func NumButtons() int {
	return len(orderedKeys) + len(orderedMouse) + len(orderedWheel)
}

// NumHoldButtons is the size a HoldButton-keyed slice needs.
func NumHoldButtons() int {
	return len(orderedKeys) + len(orderedMouse)
}

// Index returns a stable, dense index for b, suitable as a slice index for
// EnumMap-style storage (spec §4.1: "Button → dense u16 index is stable and
// used for EnumMap-style storage").
func (b Button) Index() uint16 {
	switch b.Kind {
	case KindKey:
		return uint16(keyIndex[b.Key])
	case KindMouse:
		return uint16(len(orderedKeys) + int(b.Mouse))
	case KindWheel:
		return uint16(len(orderedKeys) + len(orderedMouse) + int(b.Wheel))
	default:
		panic("buttons: invalid Button kind")
	}
}

// Index returns a stable, dense index for h, suitable as a slice index
// sized by NumHoldButtons().
func (h HoldButton) Index() uint16 {
	switch h.Kind {
	case KindKey:
		return uint16(keyIndex[h.Key])
	case KindMouse:
		return uint16(len(orderedKeys) + int(h.Mouse))
	default:
		panic("buttons: invalid HoldButton kind")
	}
}

// Equal reports whether two HoldButtons name the same physical button.
func (h HoldButton) Equal(other HoldButton) bool {
	return h.Kind == other.Kind && h.Key == other.Key && h.Mouse == other.Mouse
}
