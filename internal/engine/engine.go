// Package engine implements the interception state machine: on_hold_down,
// on_hold_up, and on_tap. It is the only code that knows how a HookState
// and a Ruleset combine into a swallow/forward decision and a batch of
// synthetic inputs; it has no idea how those inputs reach the OS, nor how
// the active profile gets chosen.
package engine

import (
	"reemap/internal/buttons"
	"reemap/internal/hookstate"
	"reemap/internal/ruleset"
)

// Sink receives a batch of synthetic inputs to send to the platform in a
// single call, so intra-remap ordering is preserved end to end.
type Sink interface {
	Send(batch []buttons.Input)
}

// Engine ties a hookstate.State to a Sink. All three entry points lock the
// state for their entire execution, matching the single coarse mutex the
// concurrency model requires (one hook callback's decision and emission
// happen atomically with respect to any other callback; the platform
// adapter decodes the raw event before calling in).
type Engine struct {
	state *hookstate.State
	sink  Sink
}

func New(state *hookstate.State, sink Sink) *Engine {
	return &Engine{state: state, sink: sink}
}

// OnHoldDown implements spec §4.3.1.
func (e *Engine) OnHoldDown(b buttons.HoldButton) bool {
	e.state.Lock()
	defer e.state.Unlock()

	switch st := e.state.ButtonState(b); st.Kind {
	case hookstate.HeldNoRemap:
		return false
	case hookstate.HeldWithRemap:
		e.sendIfAny(keyDownsOnly(st.Output))
		return true
	}

	profile := e.state.ActiveProfile()
	bits := e.state.ActiveLayerBits()

	for i, layer := range profile.Layers {
		if !layer.Enabled || !layer.ConditionContains(b) {
			continue
		}
		if othersHeld(e.state, layer.Condition, b) {
			if layer.Type == ruleset.Toggle {
				bits[i] = !bits[i]
			} else {
				bits[i] = true
			}
		}
	}

	for i := len(profile.Layers) - 1; i >= 0; i-- {
		layer := profile.Layers[i]
		if !layer.Enabled || !bits[i] {
			continue
		}
		policy := layer.Policy.Get(b.Button())
		switch policy.Kind {
		case ruleset.Defer:
			continue
		case ruleset.NoRemap:
			e.state.SetButtonState(b, hookstate.HoldButtonState{Kind: hookstate.HeldNoRemap})
			return false
		case ruleset.Remap:
			e.sendIfAny(downInputsFor(policy.Output))
			e.state.SetButtonState(b, hookstate.HoldButtonState{Kind: hookstate.HeldWithRemap, Output: policy.Output.Clone()})
			return true
		}
	}

	base := profile.Base.Policy.Get(b.Button())
	switch base.Kind {
	case ruleset.BaseRemap:
		e.sendIfAny(downInputsFor(base.Output))
		e.state.SetButtonState(b, hookstate.HoldButtonState{Kind: hookstate.HeldWithRemap, Output: base.Output.Clone()})
		return true
	default: // ruleset.BaseNoRemap
		e.state.SetButtonState(b, hookstate.HoldButtonState{Kind: hookstate.HeldNoRemap})
		return false
	}
}

// OnHoldUp implements spec §4.3.2. It never re-consults the ruleset: the
// mapping chosen at press time is authoritative.
func (e *Engine) OnHoldUp(b buttons.HoldButton) bool {
	e.state.Lock()
	defer e.state.Unlock()

	profile := e.state.ActiveProfile()
	bits := e.state.ActiveLayerBits()

	for i, layer := range profile.Layers {
		if !layer.Enabled || !layer.ConditionContains(b) {
			continue
		}
		if layer.Type == ruleset.Modifier {
			bits[i] = false
		}
	}

	st := e.state.ButtonState(b)
	e.state.SetButtonState(b, hookstate.HoldButtonState{Kind: hookstate.NotHeld})

	if st.Kind != hookstate.HeldWithRemap {
		return false
	}
	e.sendIfAny(upInputsFor(st.Output))
	return true
}

// OnTap implements spec §4.3.3. Layers are never conditioned on tap
// inputs, so no layer-active bit is ever touched here (P6).
func (e *Engine) OnTap(t buttons.TapButton) bool {
	e.state.Lock()
	defer e.state.Unlock()

	profile := e.state.ActiveProfile()
	bits := e.state.ActiveLayerBits()

	for i := len(profile.Layers) - 1; i >= 0; i-- {
		layer := profile.Layers[i]
		if !layer.Enabled || !bits[i] {
			continue
		}
		policy := layer.Policy.Get(t.Button())
		switch policy.Kind {
		case ruleset.Defer:
			continue
		case ruleset.NoRemap:
			return false
		case ruleset.Remap:
			e.sendIfAny(tapPairInputsFor(policy.Output))
			return true
		}
	}

	base := profile.Base.Policy.Get(t.Button())
	if base.Kind == ruleset.BaseRemap {
		e.sendIfAny(tapPairInputsFor(base.Output))
		return true
	}
	return false
}

// ApplyRuleset implements the swap protocol of spec §4.5: it emits the
// closing Up sequence for every button currently HeldWithRemap under the
// old ruleset, clears all hook state, installs newRuleset, and selects
// activeProfile (computed by the caller, typically by re-running the
// foreground tracker's match against the new ruleset's profiles).
func (e *Engine) ApplyRuleset(newRuleset ruleset.Ruleset, activeProfile int) {
	e.state.Lock()
	defer e.state.Unlock()

	for _, hb := range e.state.HeldWithRemapButtons() {
		st := e.state.ButtonState(hb)
		e.sendIfAny(upInputsFor(st.Output))
	}

	e.state.ReplaceRuleset(newRuleset)
	e.state.SetActiveProfile(activeProfile)
}

func (e *Engine) sendIfAny(batch []buttons.Input) {
	if len(batch) == 0 {
		return
	}
	e.sink.Send(batch)
}

// othersHeld reports whether every condition button other than b is
// currently non-NotHeld, the "all other conditions already satisfied" test
// that arms or toggles a layer on b's press.
func othersHeld(state *hookstate.State, condition []buttons.HoldButton, b buttons.HoldButton) bool {
	for _, c := range condition {
		if c.Equal(b) {
			continue
		}
		if state.ButtonState(c).Kind == hookstate.NotHeld {
			return false
		}
	}
	return true
}

func downInputsFor(out buttons.Output) []buttons.Input {
	ins := make([]buttons.Input, 0, len(out))
	for _, b := range out {
		switch b.Kind {
		case buttons.KindKey:
			ins = append(ins, buttons.FromKeyInput(buttons.KeyDown(b.Key)))
		case buttons.KindMouse:
			ins = append(ins, buttons.FromMouseInput(buttons.MouseDown(b.Mouse)))
		case buttons.KindWheel:
			ins = append(ins, buttons.FromWheelInput(buttons.Wheel(b.Wheel)))
		}
	}
	return ins
}

func upInputsFor(out buttons.Output) []buttons.Input {
	ins := make([]buttons.Input, 0, len(out))
	for _, b := range out {
		switch b.Kind {
		case buttons.KindKey:
			ins = append(ins, buttons.FromKeyInput(buttons.KeyUp(b.Key)))
		case buttons.KindMouse:
			ins = append(ins, buttons.FromMouseInput(buttons.MouseUp(b.Mouse)))
		// Wheel targets produce nothing on release: wheel is tap-class.
		}
	}
	return ins
}

func keyDownsOnly(out buttons.Output) []buttons.Input {
	ins := make([]buttons.Input, 0, len(out))
	for _, b := range out {
		if b.Kind == buttons.KindKey {
			ins = append(ins, buttons.FromKeyInput(buttons.KeyDown(b.Key)))
		}
	}
	return ins
}

func tapPairInputsFor(out buttons.Output) []buttons.Input {
	ins := make([]buttons.Input, 0, len(out)*2)
	for _, b := range out {
		switch b.Kind {
		case buttons.KindKey:
			ins = append(ins, buttons.FromKeyInput(buttons.KeyDown(b.Key)), buttons.FromKeyInput(buttons.KeyUp(b.Key)))
		case buttons.KindMouse:
			ins = append(ins, buttons.FromMouseInput(buttons.MouseDown(b.Mouse)), buttons.FromMouseInput(buttons.MouseUp(b.Mouse)))
		case buttons.KindWheel:
			ins = append(ins, buttons.FromWheelInput(buttons.Wheel(b.Wheel)))
		}
	}
	return ins
}
