package ruleset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"reemap/internal/buttons"
)

func TestNormalizeAppendsDefaultProfile(t *testing.T) {
	game := NewProfile("Game")
	game.Condition = ProfileCondition{Kind: Process, Process: "game.exe"}
	r := Ruleset{Profiles: []Profile{game}}
	norm := r.Normalize()
	require.Len(t, norm.Profiles, 2)
	assert.Equal(t, DefaultProfileName, norm.Profiles[1].Name)
	assert.Equal(t, Always, norm.Profiles[1].Condition.Kind)
}

func TestNormalizeIsIdempotentWhenAlreadyDefaulted(t *testing.T) {
	d := NewProfile(DefaultProfileName)
	d.Condition = ProfileCondition{Kind: Always}
	r := Ruleset{Profiles: []Profile{NewProfile("Game"), d}}
	norm := r.Normalize()
	assert.Len(t, norm.Profiles, 2)
}

func TestProfileConditionMatches(t *testing.T) {
	c := ProfileCondition{Kind: TitleAndProcess, Title: "Notepad", Process: "notepad.exe"}
	assert.True(t, c.Matches("Untitled - Notepad", "notepad.exe"))
	assert.False(t, c.Matches("Untitled - Notepad", "explorer.exe"))

	always := ProfileCondition{Kind: Always}
	assert.True(t, always.Matches("anything", "anything.exe"))
}

func TestPresetLookup(t *testing.T) {
	c, ok := Preset("OriWotW")
	require.True(t, ok)
	assert.Equal(t, TitleAndProcess, c.Kind)

	_, ok = Preset("NoSuchPreset")
	assert.False(t, ok)
}

func TestRulesetYAMLRoundTrip(t *testing.T) {
	layer := NewLayer("Nav")
	layer.Condition = []buttons.HoldButton{buttons.HoldKey(buttons.KeyCapsLock)}
	layer.Policy.Set(buttons.ButtonKey(buttons.KeyH), RemapPolicy{Kind: Remap, Output: buttons.Output{buttons.ButtonKey(buttons.KeyLeftShift)}})
	layer.Policy.Set(buttons.ButtonKey(buttons.KeyJ), RemapPolicy{Kind: NoRemap})

	base := NewBaseLayer()
	base.Policy.Set(buttons.ButtonMouse(buttons.MouseX1), BaseRemapPolicy{Kind: BaseRemap, Output: buttons.Output{buttons.ButtonKey(buttons.KeyEscape)}})

	profile := Profile{
		Name:      "Editor",
		Enabled:   true,
		Condition: ProfileCondition{Kind: Process, Process: "code.exe"},
		Base:      base,
		Layers:    []Layer{layer},
	}

	versioned := VersionedRuleset{Ruleset: Ruleset{Profiles: []Profile{profile}, ShowRareKeys: true}}

	data, err := yaml.Marshal(versioned)
	require.NoError(t, err)

	var loaded VersionedRuleset
	require.NoError(t, yaml.Unmarshal(data, &loaded))

	require.Len(t, loaded.Ruleset.Profiles, 1)
	got := loaded.Ruleset.Profiles[0]
	assert.Equal(t, "Editor", got.Name)
	assert.True(t, loaded.Ruleset.ShowRareKeys)
	assert.Equal(t, Process, got.Condition.Kind)
	assert.Equal(t, "code.exe", got.Condition.Process)

	require.Len(t, got.Layers, 1)
	gotLayer := got.Layers[0]
	assert.Equal(t, "Nav", gotLayer.Name)
	require.Len(t, gotLayer.Condition, 1)
	assert.True(t, gotLayer.Condition[0].Equal(buttons.HoldKey(buttons.KeyCapsLock)))

	hPolicy := gotLayer.Policy.Get(buttons.ButtonKey(buttons.KeyH))
	assert.Equal(t, Remap, hPolicy.Kind)
	require.Len(t, hPolicy.Output, 1)
	assert.Equal(t, buttons.ButtonKey(buttons.KeyLeftShift), hPolicy.Output[0])

	jPolicy := gotLayer.Policy.Get(buttons.ButtonKey(buttons.KeyJ))
	assert.Equal(t, NoRemap, jPolicy.Kind)

	untouched := gotLayer.Policy.Get(buttons.ButtonKey(buttons.KeyA))
	assert.Equal(t, Defer, untouched.Kind)

	x1Policy := got.Base.Policy.Get(buttons.ButtonMouse(buttons.MouseX1))
	assert.Equal(t, BaseRemap, x1Policy.Kind)
	require.Len(t, x1Policy.Output, 1)
	assert.Equal(t, buttons.ButtonKey(buttons.KeyEscape), x1Policy.Output[0])
}

func TestValidateRejectsUnnamedProfile(t *testing.T) {
	r := Ruleset{Profiles: []Profile{{Name: ""}}}
	assert.Error(t, r.Validate())
}

func TestValidateAcceptsWellFormedRuleset(t *testing.T) {
	r := Ruleset{Profiles: []Profile{NewProfile("Game")}}.Normalize()
	assert.NoError(t, r.Validate())
}
