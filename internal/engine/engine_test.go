package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reemap/internal/buttons"
	"reemap/internal/hookstate"
	"reemap/internal/ruleset"
)

type fakeSink struct {
	batches [][]buttons.Input
}

func (f *fakeSink) Send(batch []buttons.Input) {
	cp := make([]buttons.Input, len(batch))
	copy(cp, batch)
	f.batches = append(f.batches, cp)
}

func (f *fakeSink) last() []buttons.Input {
	if len(f.batches) == 0 {
		return nil
	}
	return f.batches[len(f.batches)-1]
}

func singleProfileRuleset(base ruleset.BaseLayer, layers ...ruleset.Layer) ruleset.Ruleset {
	p := ruleset.NewProfile("Test")
	p.Condition = ruleset.ProfileCondition{Kind: ruleset.Always}
	p.Base = base
	p.Layers = layers
	return ruleset.Ruleset{Profiles: []ruleset.Profile{p}}
}

func TestSimpleKeyToMouseRemapNoRepeat(t *testing.T) {
	base := ruleset.NewBaseLayer()
	base.Policy.Set(buttons.ButtonKey(buttons.KeyA), ruleset.BaseRemapPolicy{
		Kind: ruleset.BaseRemap, Output: buttons.Output{buttons.ButtonMouse(buttons.MouseLeft)},
	})
	r := singleProfileRuleset(base)
	state := hookstate.New(r)
	sink := &fakeSink{}
	e := New(state, sink)

	a := buttons.HoldKey(buttons.KeyA)
	require.True(t, e.OnHoldDown(a))
	assert.Equal(t, []buttons.Input{buttons.FromMouseInput(buttons.MouseDown(buttons.MouseLeft))}, sink.last())

	require.True(t, e.OnHoldUp(a))
	assert.Equal(t, []buttons.Input{buttons.FromMouseInput(buttons.MouseUp(buttons.MouseLeft))}, sink.last())
}

func TestKeyRepeatOnlyRepeatsKeyTargets(t *testing.T) {
	base := ruleset.NewBaseLayer()
	base.Policy.Set(buttons.ButtonKey(buttons.KeyA), ruleset.BaseRemapPolicy{
		Kind: ruleset.BaseRemap,
		Output: buttons.Output{
			buttons.ButtonKey(buttons.KeyB),
			buttons.ButtonMouse(buttons.MouseLeft),
		},
	})
	r := singleProfileRuleset(base)
	state := hookstate.New(r)
	sink := &fakeSink{}
	e := New(state, sink)

	a := buttons.HoldKey(buttons.KeyA)
	require.True(t, e.OnHoldDown(a))
	first := sink.last()
	require.Len(t, first, 2)

	require.True(t, e.OnHoldDown(a))
	repeat := sink.last()
	assert.Equal(t, []buttons.Input{buttons.FromKeyInput(buttons.KeyDown(buttons.KeyB))}, repeat, "repeat must only resend key-class targets")

	require.True(t, e.OnHoldDown(a))
	assert.Len(t, sink.last(), 1)

	require.True(t, e.OnHoldUp(a))
	up := sink.last()
	assert.Len(t, up, 2)
}

func TestModifierLayerSelectsRemap(t *testing.T) {
	layer := ruleset.NewLayer("Shifted")
	layer.Type = ruleset.Modifier
	layer.Condition = []buttons.HoldButton{buttons.HoldKey(buttons.KeyLeftShift)}
	layer.Policy.Set(buttons.ButtonKey(buttons.KeyA), ruleset.RemapPolicy{
		Kind: ruleset.Remap, Output: buttons.Output{buttons.ButtonKey(buttons.KeyB)},
	})
	base := ruleset.NewBaseLayer()
	base.Policy.Set(buttons.ButtonKey(buttons.KeyA), ruleset.BaseRemapPolicy{Kind: ruleset.BaseNoRemap})

	r := singleProfileRuleset(base, layer)
	state := hookstate.New(r)
	sink := &fakeSink{}
	e := New(state, sink)

	shift := buttons.HoldKey(buttons.KeyLeftShift)
	a := buttons.HoldKey(buttons.KeyA)

	assert.False(t, e.OnHoldDown(shift), "shift itself isn't remapped, forwarded")
	require.True(t, e.OnHoldDown(a))
	assert.Equal(t, []buttons.Input{buttons.FromKeyInput(buttons.KeyDown(buttons.KeyB))}, sink.last())

	require.True(t, e.OnHoldUp(a))
	assert.Equal(t, []buttons.Input{buttons.FromKeyInput(buttons.KeyUp(buttons.KeyB))}, sink.last())

	assert.False(t, e.OnHoldUp(shift))
}

func TestToggleLayerPersistsAcrossPresses(t *testing.T) {
	layer := ruleset.NewLayer("Toggled")
	layer.Type = ruleset.Toggle
	layer.Condition = []buttons.HoldButton{buttons.HoldKey(buttons.KeyF1)}
	layer.Policy.Set(buttons.ButtonKey(buttons.KeyW), ruleset.RemapPolicy{
		Kind: ruleset.Remap, Output: buttons.Output{buttons.ButtonKey(buttons.KeyEnter)},
	})
	base := ruleset.NewBaseLayer()
	r := singleProfileRuleset(base, layer)
	state := hookstate.New(r)
	sink := &fakeSink{}
	e := New(state, sink)

	f1 := buttons.HoldKey(buttons.KeyF1)
	w := buttons.HoldKey(buttons.KeyW)

	assert.False(t, e.OnHoldDown(f1))
	assert.False(t, e.OnHoldUp(f1))

	require.True(t, e.OnHoldDown(w))
	assert.Equal(t, []buttons.Input{buttons.FromKeyInput(buttons.KeyDown(buttons.KeyEnter))}, sink.last())
	require.True(t, e.OnHoldUp(w))
	assert.Equal(t, []buttons.Input{buttons.FromKeyInput(buttons.KeyUp(buttons.KeyEnter))}, sink.last())

	// toggle off
	assert.False(t, e.OnHoldDown(f1))
	assert.False(t, e.OnHoldUp(f1))

	assert.False(t, e.OnHoldDown(w), "layer disarmed, W forwarded unchanged")
	assert.False(t, e.OnHoldUp(w))
}

func TestWheelRemapEmitsDownUpPairAsSingleBatch(t *testing.T) {
	base := ruleset.NewBaseLayer()
	base.Policy.Set(buttons.ButtonWheel(buttons.WheelUp), ruleset.BaseRemapPolicy{
		Kind: ruleset.BaseRemap, Output: buttons.Output{buttons.ButtonKey(buttons.KeyEnter)},
	})
	r := singleProfileRuleset(base)
	state := hookstate.New(r)
	sink := &fakeSink{}
	e := New(state, sink)

	require.True(t, e.OnTap(buttons.Tap(buttons.WheelUp)))
	assert.Equal(t, []buttons.Input{
		buttons.FromKeyInput(buttons.KeyDown(buttons.KeyEnter)),
		buttons.FromKeyInput(buttons.KeyUp(buttons.KeyEnter)),
	}, sink.last())
}

func TestRulesetSwapMidPressEmitsClosingUp(t *testing.T) {
	base := ruleset.NewBaseLayer()
	base.Policy.Set(buttons.ButtonKey(buttons.KeyA), ruleset.BaseRemapPolicy{
		Kind: ruleset.BaseRemap, Output: buttons.Output{buttons.ButtonKey(buttons.KeyB)},
	})
	r := singleProfileRuleset(base)
	state := hookstate.New(r)
	sink := &fakeSink{}
	e := New(state, sink)

	a := buttons.HoldKey(buttons.KeyA)
	require.True(t, e.OnHoldDown(a))

	newBase := ruleset.NewBaseLayer()
	newBase.Policy.Set(buttons.ButtonKey(buttons.KeyA), ruleset.BaseRemapPolicy{Kind: ruleset.BaseNoRemap})
	newR := singleProfileRuleset(newBase)

	e.ApplyRuleset(newR, 0) // index 0: the only profile; it is Always-active, so Normalize appends nothing
	assert.Equal(t, []buttons.Input{buttons.FromKeyInput(buttons.KeyUp(buttons.KeyB))}, sink.last())

	assert.Equal(t, hookstate.NotHeld, state.ButtonState(a).Kind)
	assert.False(t, e.OnHoldUp(a), "post-swap up is observed as NotHeld, forwarded unchanged")
}

func TestEmptyRemapBlocksInput(t *testing.T) {
	base := ruleset.NewBaseLayer()
	base.Policy.Set(buttons.ButtonKey(buttons.KeyA), ruleset.BaseRemapPolicy{Kind: ruleset.BaseRemap, Output: nil})
	r := singleProfileRuleset(base)
	state := hookstate.New(r)
	sink := &fakeSink{}
	e := New(state, sink)

	a := buttons.HoldKey(buttons.KeyA)
	assert.True(t, e.OnHoldDown(a))
	assert.Empty(t, sink.batches)
	assert.True(t, e.OnHoldUp(a))
	assert.Empty(t, sink.batches)
}

func TestTapNeverTouchesLayerActiveBits(t *testing.T) {
	layer := ruleset.NewLayer("Unrelated")
	layer.Condition = []buttons.HoldButton{buttons.HoldKey(buttons.KeyLeftShift)}
	r := singleProfileRuleset(ruleset.NewBaseLayer(), layer)
	state := hookstate.New(r)
	sink := &fakeSink{}
	e := New(state, sink)

	before := append([]bool(nil), state.ActiveLayerBits()...)
	e.OnTap(buttons.Tap(buttons.WheelDown))
	after := state.ActiveLayerBits()
	assert.Equal(t, before, after)
}
