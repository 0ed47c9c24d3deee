// Package ruleset holds the data model for a user's remap configuration:
// profiles, their activation conditions, and the layered policies each one
// applies to hold-class buttons. It knows nothing about live hook state or
// the currently focused window; that belongs to hookstate and foreground.
package ruleset

import (
	"fmt"
	"strings"

	"reemap/internal/buttons"
)

// PolicyKind discriminates a layer-level remap decision.
type PolicyKind uint8

const (
	// Defer is the zero value: the layer has no opinion, fall through to
	// the next layer (or the profile's base layer).
	Defer PolicyKind = iota
	NoRemap
	Remap
)

// RemapPolicy is a single button's policy within a non-base layer.
type RemapPolicy struct {
	Kind   PolicyKind
	Output buttons.Output
}

func (p RemapPolicy) String() string {
	switch p.Kind {
	case Defer:
		return "(defer to next layer)"
	case NoRemap:
		return "(do not remap)"
	case Remap:
		if len(p.Output) == 0 {
			return "(block input)"
		}
		return joinButtons(p.Output)
	default:
		return "(unknown policy)"
	}
}

// BasePolicyKind discriminates a base-layer remap decision. A base layer
// cannot defer: there is nothing left to fall through to.
type BasePolicyKind uint8

const (
	BaseNoRemap BasePolicyKind = iota
	BaseRemap
)

// BaseRemapPolicy is a single button's policy within a profile's base layer.
type BaseRemapPolicy struct {
	Kind   BasePolicyKind
	Output buttons.Output
}

func (p BaseRemapPolicy) String() string {
	switch p.Kind {
	case BaseNoRemap:
		return "(do not remap)"
	case BaseRemap:
		if len(p.Output) == 0 {
			return "(block input)"
		}
		return joinButtons(p.Output)
	default:
		return "(unknown policy)"
	}
}

func joinButtons(out buttons.Output) string {
	s := ""
	for i, b := range out {
		if i > 0 {
			s += ", "
		}
		s += b.String()
	}
	return s
}

// PolicyTable is a dense, EnumMap-style lookup from buttons.Button to its
// RemapPolicy within one layer. The zero value of PolicyTable has every
// entry Defer, matching RemapPolicy's zero value.
type PolicyTable []RemapPolicy

// NewPolicyTable allocates a table sized for every recognized button, with
// every entry defaulting to Defer.
func NewPolicyTable() PolicyTable {
	return make(PolicyTable, buttons.NumButtons())
}

func (t PolicyTable) Get(b buttons.Button) RemapPolicy {
	if int(b.Index()) >= len(t) {
		return RemapPolicy{}
	}
	return t[b.Index()]
}

func (t PolicyTable) Set(b buttons.Button, p RemapPolicy) {
	t[b.Index()] = p
}

// BasePolicyTable is PolicyTable's base-layer counterpart. Its zero value
// defaults every entry to BaseNoRemap, matching BaseRemapPolicy's zero
// value and the original implementation's base layer default.
type BasePolicyTable []BaseRemapPolicy

func NewBasePolicyTable() BasePolicyTable {
	return make(BasePolicyTable, buttons.NumButtons())
}

func (t BasePolicyTable) Get(b buttons.Button) BaseRemapPolicy {
	if int(b.Index()) >= len(t) {
		return BaseRemapPolicy{}
	}
	return t[b.Index()]
}

func (t BasePolicyTable) Set(b buttons.Button, p BaseRemapPolicy) {
	t[b.Index()] = p
}

// LayerType distinguishes a layer that is active only while its condition
// buttons are held (Modifier) from one that toggles on and stays active
// until toggled again (Toggle).
type LayerType uint8

const (
	Modifier LayerType = iota
	Toggle
)

func (t LayerType) String() string {
	if t == Toggle {
		return "Toggle"
	}
	return "Modifier"
}

// Layer is one named remap layer within a profile. Layers are evaluated in
// reverse order (last layer has highest priority) when a profile resolves
// a button's effective policy.
type Layer struct {
	Name      string
	Enabled   bool
	Type      LayerType
	Condition []buttons.HoldButton
	Policy    PolicyTable
}

// NewLayer returns a Layer with sane defaults: enabled, Modifier type, an
// empty condition, and a fully-Defer policy table.
func NewLayer(name string) Layer {
	return Layer{
		Name:    name,
		Enabled: true,
		Type:    Modifier,
		Policy:  NewPolicyTable(),
	}
}

func (l Layer) String() string { return l.Name }

// ConditionContains reports whether hb is one of this layer's arming
// buttons.
func (l Layer) ConditionContains(hb buttons.HoldButton) bool {
	for _, c := range l.Condition {
		if c.Equal(hb) {
			return true
		}
	}
	return false
}

// BaseLayer is the always-active fallback layer every profile has. It has
// no condition and cannot defer.
type BaseLayer struct {
	Policy BasePolicyTable
}

func NewBaseLayer() BaseLayer {
	return BaseLayer{Policy: NewBasePolicyTable()}
}

// ProfileConditionKind discriminates how a profile decides whether it is
// active for the current foreground window.
type ProfileConditionKind uint8

const (
	Always ProfileConditionKind = iota
	Title
	Process
	TitleAndProcess
)

// ProfileCondition is a profile's activation predicate. Title/Process are
// matched as case-insensitive substrings of the foreground window's title
// and owning process name, mirroring the original implementation's
// matching.
type ProfileCondition struct {
	Kind    ProfileConditionKind
	Title   string
	Process string
}

func (c ProfileCondition) HelperText() string {
	switch c.Kind {
	case Always:
		return "Always active"
	case Title:
		return fmt.Sprintf("Active when %q is in focus", c.Title)
	case Process:
		return fmt.Sprintf("Active when the process %s is in focus", c.Process)
	case TitleAndProcess:
		return fmt.Sprintf("Active when %q (%s) is in focus", c.Title, c.Process)
	default:
		return "Unknown condition"
	}
}

// Matches reports whether this condition is satisfied by the given
// foreground window title and process name.
func (c ProfileCondition) Matches(title, process string) bool {
	switch c.Kind {
	case Always:
		return true
	case Title:
		return containsFold(title, c.Title)
	case Process:
		return containsFold(process, c.Process)
	case TitleAndProcess:
		return containsFold(title, c.Title) && containsFold(process, c.Process)
	default:
		return false
	}
}

// Preset looks up a named preset condition, for profiles that ship with the
// editor's condition picker (e.g. games with known window titles). Presets
// supplement, rather than replace, the four generic condition kinds above.
func Preset(name string) (ProfileCondition, bool) {
	c, ok := presets[name]
	return c, ok
}

// PresetNames lists every registered preset, in a stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presetOrder))
	names = append(names, presetOrder...)
	return names
}

var presetOrder = []string{"OriBF", "OriBFDE", "OriWotW"}

var presets = map[string]ProfileCondition{
	"OriBF":   {Kind: TitleAndProcess, Title: "Ori and the Blind Forest", Process: "oriDE.exe"},
	"OriBFDE": {Kind: TitleAndProcess, Title: "Ori and the Blind Forest: Definitive Edition", Process: "oriDE.exe"},
	"OriWotW": {Kind: TitleAndProcess, Title: "Ori and the Will of the Wisps", Process: "oriAndTheWillOfTheWisps.exe"},
}

// Profile bundles one activation condition with the base layer and ordered
// modifier/toggle layers it applies while active.
type Profile struct {
	Name      string
	Enabled   bool
	Condition ProfileCondition
	Base      BaseLayer
	Layers    []Layer
}

func NewProfile(name string) Profile {
	return Profile{
		Name:    name,
		Enabled: true,
		Base:    NewBaseLayer(),
	}
}

func (p Profile) String() string { return p.Name }

// Ruleset is the full remap configuration: an ordered list of profiles
// (Normalize appends the synthetic default profile when the list does not
// already end in an Always-active one; hookstate normalizes every ruleset it
// installs), and one display preference that has no bearing on remap
// semantics.
type Ruleset struct {
	Profiles []Profile

	// ShowRareKeys controls whether the configuration editor surfaces
	// infrequently used keys (numpad, media keys, etc). It supplements the
	// original implementation's show_rare_keys flag and is read only by
	// whatever presents the ruleset for editing; the engine ignores it.
	ShowRareKeys bool
}

// DefaultProfileName names the synthetic profile Normalize appends when a
// ruleset does not already end in an Always-active profile: an
// always-active, no-op profile so that focusing an unrecognized window
// always selects some profile (invariant I3, the active profile is always a
// valid reference).
const DefaultProfileName = "Default"

// Normalize returns a copy of r with exactly one trailing Always-active
// profile, appending DefaultProfileName if the caller's profile list does
// not already end in one. It does not mutate r.
func (r Ruleset) Normalize() Ruleset {
	out := Ruleset{Profiles: append([]Profile(nil), r.Profiles...), ShowRareKeys: r.ShowRareKeys}
	if n := len(out.Profiles); n == 0 || out.Profiles[n-1].Condition.Kind != Always {
		d := NewProfile(DefaultProfileName)
		d.Condition = ProfileCondition{Kind: Always}
		out.Profiles = append(out.Profiles, d)
	}
	return out
}

// Validate reports the first structural problem found in r, or nil. It does
// not catch every possible misconfiguration (e.g. an empty condition on a
// Modifier layer is legal, just inert), only ones that would make the
// engine misbehave.
func (r Ruleset) Validate() error {
	for pi, p := range r.Profiles {
		if p.Name == "" {
			return fmt.Errorf("ruleset: profile %d has no name", pi)
		}
		if len(p.Base.Policy) != 0 && len(p.Base.Policy) != buttons.NumButtons() {
			return fmt.Errorf("ruleset: profile %q base layer policy table has wrong size", p.Name)
		}
		for li, l := range p.Layers {
			if len(l.Policy) != 0 && len(l.Policy) != buttons.NumButtons() {
				return fmt.Errorf("ruleset: profile %q layer %d (%q) policy table has wrong size", p.Name, li, l.Name)
			}
		}
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
