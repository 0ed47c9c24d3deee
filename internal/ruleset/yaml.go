package ruleset

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"reemap/internal/buttons"
)

// On disk, profiles/layers keep their policy tables as maps from a stable
// button ID (buttons.Button.ID) to the policy, rather than as a dense
// slice indexed by Button.Index(): the dense index is an implementation
// detail that must stay free to change across builds without invalidating
// every saved config file on disk.

type yamlRemapPolicy struct {
	Kind   string   `yaml:"kind"`
	Output []string `yaml:"output,omitempty"`
}

type yamlBaseRemapPolicy struct {
	Kind   string   `yaml:"kind"`
	Output []string `yaml:"output,omitempty"`
}

type yamlLayer struct {
	Name      string              `yaml:"name"`
	Enabled   bool                `yaml:"enabled"`
	Type      string              `yaml:"type"`
	Condition []string            `yaml:"condition,omitempty"`
	Policy    map[string]yamlRemapPolicy `yaml:"policy,omitempty"`
}

type yamlBaseLayer struct {
	Policy map[string]yamlBaseRemapPolicy `yaml:"policy,omitempty"`
}

type yamlProfileCondition struct {
	Kind    string `yaml:"kind"`
	Title   string `yaml:"title,omitempty"`
	Process string `yaml:"process,omitempty"`
	Preset  string `yaml:"preset,omitempty"`
}

type yamlProfile struct {
	Name      string               `yaml:"name"`
	Enabled   bool                 `yaml:"enabled"`
	Condition yamlProfileCondition `yaml:"condition"`
	Base      yamlBaseLayer        `yaml:"base"`
	Layers    []yamlLayer          `yaml:"layers,omitempty"`
}

type yamlRuleset struct {
	Profiles     []yamlProfile `yaml:"profiles"`
	ShowRareKeys bool          `yaml:"show_rare_keys"`
}

// VersionedRuleset is the top-level document stored on disk, tagged with a
// version field so that a future on-disk format change can migrate forward
// from old files instead of failing to parse them.
type VersionedRuleset struct {
	Version string
	Ruleset Ruleset
}

type yamlVersioned struct {
	Version string      `yaml:"version"`
	V1      yamlRuleset `yaml:"v1,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (v VersionedRuleset) MarshalYAML() (interface{}, error) {
	if v.Version == "" {
		v.Version = "v1"
	}
	if v.Version != "v1" {
		return nil, fmt.Errorf("ruleset: unknown version %q", v.Version)
	}
	return yamlVersioned{Version: v.Version, V1: toYAML(v.Ruleset)}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *VersionedRuleset) UnmarshalYAML(node *yaml.Node) error {
	var raw yamlVersioned
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Version != "v1" {
		return fmt.Errorf("ruleset: unsupported config version %q", raw.Version)
	}
	r, err := fromYAML(raw.V1)
	if err != nil {
		return err
	}
	v.Version = raw.Version
	v.Ruleset = r
	return nil
}

func toYAML(r Ruleset) yamlRuleset {
	out := yamlRuleset{ShowRareKeys: r.ShowRareKeys}
	for _, p := range r.Profiles {
		out.Profiles = append(out.Profiles, profileToYAML(p))
	}
	return out
}

func profileToYAML(p Profile) yamlProfile {
	return yamlProfile{
		Name:      p.Name,
		Enabled:   p.Enabled,
		Condition: conditionToYAML(p.Condition),
		Base:      baseLayerToYAML(p.Base),
		Layers:    layersToYAML(p.Layers),
	}
}

func conditionToYAML(c ProfileCondition) yamlProfileCondition {
	switch c.Kind {
	case Always:
		return yamlProfileCondition{Kind: "always"}
	case Title:
		return yamlProfileCondition{Kind: "title", Title: c.Title}
	case Process:
		return yamlProfileCondition{Kind: "process", Process: c.Process}
	case TitleAndProcess:
		return yamlProfileCondition{Kind: "title_and_process", Title: c.Title, Process: c.Process}
	default:
		return yamlProfileCondition{Kind: "always"}
	}
}

func baseLayerToYAML(b BaseLayer) yamlBaseLayer {
	policy := make(map[string]yamlBaseRemapPolicy)
	for i, p := range b.Policy {
		if p.Kind == BaseNoRemap {
			continue
		}
		btn := buttons.Button{}
		btn = indexToButton(uint16(i))
		policy[btn.ID()] = yamlBaseRemapPolicy{Kind: "remap", Output: outputToYAML(p.Output)}
	}
	return yamlBaseLayer{Policy: policy}
}

func layersToYAML(layers []Layer) []yamlLayer {
	out := make([]yamlLayer, 0, len(layers))
	for _, l := range layers {
		cond := make([]string, 0, len(l.Condition))
		for _, hb := range l.Condition {
			cond = append(cond, hb.ID())
		}
		policy := make(map[string]yamlRemapPolicy)
		for i, p := range l.Policy {
			if p.Kind == Defer {
				continue
			}
			btn := indexToButton(uint16(i))
			kind := "no_remap"
			var outs []string
			if p.Kind == Remap {
				kind = "remap"
				outs = outputToYAML(p.Output)
			}
			policy[btn.ID()] = yamlRemapPolicy{Kind: kind, Output: outs}
		}
		typ := "modifier"
		if l.Type == Toggle {
			typ = "toggle"
		}
		out = append(out, yamlLayer{
			Name:      l.Name,
			Enabled:   l.Enabled,
			Type:      typ,
			Condition: cond,
			Policy:    policy,
		})
	}
	return out
}

func outputToYAML(out buttons.Output) []string {
	ids := make([]string, 0, len(out))
	for _, b := range out {
		ids = append(ids, b.ID())
	}
	return ids
}

func fromYAML(y yamlRuleset) (Ruleset, error) {
	r := Ruleset{ShowRareKeys: y.ShowRareKeys}
	for _, yp := range y.Profiles {
		p, err := profileFromYAML(yp)
		if err != nil {
			return Ruleset{}, err
		}
		r.Profiles = append(r.Profiles, p)
	}
	return r, nil
}

func profileFromYAML(y yamlProfile) (Profile, error) {
	cond, err := conditionFromYAML(y.Condition)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", y.Name, err)
	}
	base, err := baseLayerFromYAML(y.Base)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", y.Name, err)
	}
	layers, err := layersFromYAML(y.Layers)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", y.Name, err)
	}
	return Profile{
		Name:      y.Name,
		Enabled:   y.Enabled,
		Condition: cond,
		Base:      base,
		Layers:    layers,
	}, nil
}

func conditionFromYAML(y yamlProfileCondition) (ProfileCondition, error) {
	if y.Preset != "" {
		c, ok := Preset(y.Preset)
		if !ok {
			return ProfileCondition{}, fmt.Errorf("unknown condition preset %q", y.Preset)
		}
		return c, nil
	}
	switch y.Kind {
	case "always", "":
		return ProfileCondition{Kind: Always}, nil
	case "title":
		return ProfileCondition{Kind: Title, Title: y.Title}, nil
	case "process":
		return ProfileCondition{Kind: Process, Process: y.Process}, nil
	case "title_and_process":
		return ProfileCondition{Kind: TitleAndProcess, Title: y.Title, Process: y.Process}, nil
	default:
		return ProfileCondition{}, fmt.Errorf("unknown condition kind %q", y.Kind)
	}
}

func baseLayerFromYAML(y yamlBaseLayer) (BaseLayer, error) {
	b := NewBaseLayer()
	for id, p := range y.Policy {
		btn, ok := buttons.ParseButtonID(id)
		if !ok {
			return BaseLayer{}, fmt.Errorf("unrecognized button id %q", id)
		}
		out, err := outputFromYAML(p.Output)
		if err != nil {
			return BaseLayer{}, err
		}
		b.Policy.Set(btn, BaseRemapPolicy{Kind: BaseRemap, Output: out})
	}
	return b, nil
}

func layersFromYAML(ys []yamlLayer) ([]Layer, error) {
	out := make([]Layer, 0, len(ys))
	for _, y := range ys {
		l := NewLayer(y.Name)
		l.Enabled = y.Enabled
		if y.Type == "toggle" {
			l.Type = Toggle
		}
		for _, id := range y.Condition {
			hb, ok := buttons.ParseHoldButtonID(id)
			if !ok {
				return nil, fmt.Errorf("layer %q: unrecognized condition button id %q", y.Name, id)
			}
			l.Condition = append(l.Condition, hb)
		}
		for id, p := range y.Policy {
			btn, ok := buttons.ParseButtonID(id)
			if !ok {
				return nil, fmt.Errorf("layer %q: unrecognized button id %q", y.Name, id)
			}
			var kind PolicyKind
			var rout buttons.Output
			switch p.Kind {
			case "no_remap":
				kind = NoRemap
			case "remap":
				kind = Remap
				o, err := outputFromYAML(p.Output)
				if err != nil {
					return nil, fmt.Errorf("layer %q: %w", y.Name, err)
				}
				rout = o
			default:
				return nil, fmt.Errorf("layer %q: unknown policy kind %q", y.Name, p.Kind)
			}
			l.Policy.Set(btn, RemapPolicy{Kind: kind, Output: rout})
		}
		out = append(out, l)
	}
	return out, nil
}

func outputFromYAML(ids []string) (buttons.Output, error) {
	out := make(buttons.Output, 0, len(ids))
	for _, id := range ids {
		b, ok := buttons.ParseButtonID(id)
		if !ok {
			return nil, fmt.Errorf("unrecognized output button id %q", id)
		}
		out = append(out, b)
	}
	return out, nil
}

// indexToButton inverts Button.Index() by scanning every recognized button.
// It is only used at config load/save time, never on the interception hot
// path, so the linear scan is not worth optimizing away.
func indexToButton(idx uint16) buttons.Button {
	for _, k := range buttons.AllKeys() {
		b := buttons.ButtonKey(k)
		if b.Index() == idx {
			return b
		}
	}
	for _, m := range buttons.AllMouseButtons() {
		b := buttons.ButtonMouse(m)
		if b.Index() == idx {
			return b
		}
	}
	for _, w := range buttons.AllWheelButtons() {
		b := buttons.ButtonWheel(w)
		if b.Index() == idx {
			return b
		}
	}
	return buttons.Button{}
}
