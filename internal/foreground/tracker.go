// Package foreground computes which profile is active for the current
// foreground window and keeps hookstate.State's active profile in sync
// with it. It is deliberately platform-agnostic: the platform package
// feeds it window title/process pairs whenever the foreground window
// changes or a minimized window is restored.
package foreground

import (
	"reemap/internal/hookstate"
	"reemap/internal/ruleset"
)

// WindowInfo is the foreground window snapshot the platform adapter
// extracts on a focus-changed or minimize-ended event.
type WindowInfo struct {
	Title   string
	Process string
}

// Tracker matches WindowInfo against a ruleset's profiles and applies the
// result to hookstate. It does not itself listen for OS window events;
// the platform package's event hook calls Tracker.Check.
type Tracker struct {
	state *hookstate.State

	// OnProfileChanged, if set, is invoked with the newly selected
	// profile's name after every Check call that changes the active
	// profile. Used to drive the control plane's ProfileChanged message
	// without this package depending on it directly.
	OnProfileChanged func(profileName string)
}

func New(state *hookstate.State) *Tracker {
	return &Tracker{state: state}
}

// MatchProfile returns the index into r.Profiles of the first enabled
// profile whose condition matches win, per spec §4.4. r must already be
// normalized (Ruleset.Normalize), so the synthetic Always-active default
// profile guarantees a match always exists.
func MatchProfile(r ruleset.Ruleset, win WindowInfo) int {
	for i, p := range r.Profiles {
		if !p.Enabled {
			continue
		}
		if p.Condition.Matches(win.Title, win.Process) {
			return i
		}
	}
	return len(r.Profiles) - 1
}

// Check re-evaluates the active profile against win and applies the
// result to hookstate, under the same lock discipline as the engine's
// entry points: a focus-change write must not race a hook callback read.
func (t *Tracker) Check(win WindowInfo) {
	t.state.Lock()
	r := t.state.Ruleset()
	idx := MatchProfile(r, win)
	changed := idx != t.state.ActiveProfileIndex()
	if changed {
		t.state.SetActiveProfile(idx)
	}
	t.state.Unlock()

	if changed && t.OnProfileChanged != nil {
		t.OnProfileChanged(r.Profiles[idx].Name)
	}
}
