package foreground

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reemap/internal/hookstate"
	"reemap/internal/ruleset"
)

func testRuleset() ruleset.Ruleset {
	game := ruleset.NewProfile("Game")
	game.Condition = ruleset.ProfileCondition{Kind: ruleset.Process, Process: "game.exe"}

	editor := ruleset.NewProfile("Editor")
	editor.Condition = ruleset.ProfileCondition{Kind: ruleset.Title, Title: "Visual Studio Code"}

	return ruleset.Ruleset{Profiles: []ruleset.Profile{game, editor}}
}

func TestMatchProfilePicksFirstMatchingEnabledProfile(t *testing.T) {
	r := testRuleset().Normalize()

	idx := MatchProfile(r, WindowInfo{Title: "Untitled", Process: "game.exe"})
	assert.Equal(t, 0, idx)

	idx = MatchProfile(r, WindowInfo{Title: "foo.go - Visual Studio Code", Process: "code.exe"})
	assert.Equal(t, 1, idx)

	idx = MatchProfile(r, WindowInfo{Title: "Explorer", Process: "explorer.exe"})
	assert.Equal(t, 2, idx, "falls back to the synthetic default profile")
}

func TestMatchProfileSkipsDisabledProfiles(t *testing.T) {
	r := testRuleset().Normalize()
	r.Profiles[0].Enabled = false

	idx := MatchProfile(r, WindowInfo{Process: "game.exe"})
	assert.Equal(t, 2, idx)
}

func TestCheckUpdatesActiveProfileAndNotifiesOnChange(t *testing.T) {
	r := testRuleset()
	state := hookstate.New(r)
	var changedTo string
	tr := New(state)
	tr.OnProfileChanged = func(name string) { changedTo = name }

	tr.Check(WindowInfo{Process: "game.exe"})
	assert.Equal(t, 0, state.ActiveProfileIndex())
	assert.Equal(t, "Game", changedTo)

	// no change -> callback not invoked again
	changedTo = ""
	tr.Check(WindowInfo{Process: "game.exe"})
	assert.Equal(t, "", changedTo)

	tr.Check(WindowInfo{Title: "Visual Studio Code"})
	assert.Equal(t, 1, state.ActiveProfileIndex())
	require.Equal(t, "Editor", changedTo)
}
