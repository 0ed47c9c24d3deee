// Package hookstate holds the process-wide mutable state the interception
// engine reads and writes on every hook callback: per-button hold memory,
// per-layer active bits, and which profile is currently selected. It knows
// nothing about how buttons are decided or how profiles are chosen; those
// are the engine's and the foreground tracker's jobs respectively.
package hookstate

import (
	"sync"

	"reemap/internal/buttons"
	"reemap/internal/ruleset"
)

// HoldKind discriminates what happened the last time a hold-class button
// went down.
type HoldKind uint8

const (
	NotHeld HoldKind = iota
	HeldNoRemap
	HeldWithRemap
)

// HoldButtonState remembers, for one HoldButton, what decision was made at
// press time so the matching release (and any key-repeat downs in between)
// can be handled consistently without re-consulting the ruleset.
type HoldButtonState struct {
	Kind HoldKind

	// Output is populated only when Kind is HeldWithRemap. It is an
	// independent copy taken at commit time (see buttons.Output.Clone),
	// never an alias into the ruleset, so a later ruleset replacement
	// cannot corrupt a press already in flight.
	Output buttons.Output
}

// State is the engine's process-wide singleton. A single mutex (embedded,
// so callers use State.Lock/Unlock directly) guards the whole struct and is
// meant to be held for the entire duration of one hook callback or one
// ruleset swap, matching the coarse-locking discipline the engine requires.
type State struct {
	sync.Mutex

	ruleset       ruleset.Ruleset
	buttonState   []HoldButtonState
	activeProfile int
	layerActive   [][]bool
}

// New builds a State from r, normalized (default profile appended if
// missing), with every hold button NotHeld, every layer inactive, and the
// default profile (last after normalization) selected — the engine-start
// state required by invariant I2.
func New(r ruleset.Ruleset) *State {
	s := &State{}
	s.reset(r)
	return s
}

func (s *State) reset(r ruleset.Ruleset) {
	norm := r.Normalize()
	s.ruleset = norm
	s.buttonState = make([]HoldButtonState, buttons.NumHoldButtons())
	s.layerActive = make([][]bool, len(norm.Profiles))
	for i, p := range norm.Profiles {
		s.layerActive[i] = make([]bool, len(p.Layers))
	}
	s.activeProfile = len(norm.Profiles) - 1 // the synthetic default profile
}

// Ruleset returns the currently applied, normalized ruleset. Callers must
// hold the lock.
func (s *State) Ruleset() ruleset.Ruleset { return s.ruleset }

// ActiveProfileIndex returns the index into Ruleset().Profiles of the
// profile currently selected by the foreground tracker.
func (s *State) ActiveProfileIndex() int { return s.activeProfile }

// ActiveProfile returns the profile the engine should currently consult.
func (s *State) ActiveProfile() ruleset.Profile {
	return s.ruleset.Profiles[s.activeProfile]
}

// ActiveLayerBits returns the live per-layer active-bit slice for the
// currently selected profile. The returned slice aliases internal state and
// must only be mutated while the lock is held.
func (s *State) ActiveLayerBits() []bool {
	return s.layerActive[s.activeProfile]
}

// SetActiveProfile switches the selected profile to idx. Per the foreground
// tracker's contract (spec §4.4): the incoming profile's layer-active bits
// are reset to false (no stuck toggles carried in from a previous focus on
// that profile), while bits for every other profile, including the one
// being left, are preserved untouched.
func (s *State) SetActiveProfile(idx int) {
	s.activeProfile = idx
	bits := s.layerActive[idx]
	for i := range bits {
		bits[i] = false
	}
}

// ButtonState returns the remembered state for hb.
func (s *State) ButtonState(hb buttons.HoldButton) HoldButtonState {
	return s.buttonState[hb.Index()]
}

// SetButtonState records st for hb.
func (s *State) SetButtonState(hb buttons.HoldButton, st HoldButtonState) {
	s.buttonState[hb.Index()] = st
}

// HeldWithRemapButtons returns every HoldButton currently in HeldWithRemap;
// the Output each was committed with is read through ButtonState. Used by
// the ruleset-swap drain (spec §4.5) to synthesize the closing Up sequence
// before the state is cleared.
func (s *State) HeldWithRemapButtons() []buttons.HoldButton {
	var out []buttons.HoldButton
	for _, k := range buttons.AllKeys() {
		hb := buttons.HoldKey(k)
		if s.ButtonState(hb).Kind == HeldWithRemap {
			out = append(out, hb)
		}
	}
	for _, m := range buttons.AllMouseButtons() {
		hb := buttons.HoldMouse(m)
		if s.ButtonState(hb).Kind == HeldWithRemap {
			out = append(out, hb)
		}
	}
	return out
}

// ReplaceRuleset swaps in a new ruleset and clears all hook state: every
// button becomes NotHeld, every layer becomes inactive across every
// profile (I2), and the active profile resets to the last profile of the
// normalized ruleset (the synthetic default, or the ruleset's own trailing
// Always-active profile) until the caller re-runs the foreground match
// (spec §4.5 steps 2–4). The
// caller is responsible for having already drained any HeldWithRemap button
// by emitting its closing Up sequence (step 1) before calling this.
func (s *State) ReplaceRuleset(r ruleset.Ruleset) {
	s.reset(r)
}
