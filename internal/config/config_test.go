package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"reemap/internal/buttons"
	"reemap/internal/ruleset"
)

func TestLoadCreatesDefaultRulesetWhenMissing(t *testing.T) {
	dir := t.TempDir()
	m := newManagerAtPath(filepath.Join(dir, fileName))

	require.NoError(t, m.Load())
	assert.Len(t, m.Get().Profiles, 1)
	assert.Equal(t, ruleset.DefaultProfileName, m.Get().Profiles[0].Name)

	_, err := os.Stat(m.Path())
	require.NoError(t, err, "Load must write the default ruleset to disk on first run")
}

func TestSetPersistsAndLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	m := newManagerAtPath(filepath.Join(dir, fileName))

	p := ruleset.NewProfile("Game")
	p.Base.Policy.Set(buttons.ButtonKey(buttons.KeyA), ruleset.BaseRemapPolicy{
		Kind: ruleset.BaseRemap, Output: buttons.Output{buttons.ButtonKey(buttons.KeyB)},
	})
	require.NoError(t, m.Set(ruleset.Ruleset{Profiles: []ruleset.Profile{p}}))

	m2 := newManagerAtPath(m.Path())
	require.NoError(t, m2.Load())
	require.Len(t, m2.Get().Profiles, 1, "Load returns the saved profiles unchanged")
	assert.Equal(t, "Game", m2.Get().Profiles[0].Name)
}

func TestLoadRejectsInvalidRuleset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, fileName)

	bad := struct {
		Version string `yaml:"version"`
		V1       struct {
			Profiles []struct {
				Name string `yaml:"name"`
			} `yaml:"profiles"`
		} `yaml:"v1"`
	}{Version: "v1"}
	bad.V1.Profiles = []struct {
		Name string `yaml:"name"`
	}{{Name: ""}}
	data, err := yaml.Marshal(bad)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	m := newManagerAtPath(path)
	assert.Error(t, m.Load())
}

func TestWatchReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	m := newManagerAtPath(filepath.Join(dir, fileName))
	require.NoError(t, m.Load())

	changed := make(chan ruleset.Ruleset, 1)
	stop, err := m.Watch(func(r ruleset.Ruleset) { changed <- r })
	require.NoError(t, err)
	defer stop()

	edited := ruleset.Ruleset{Profiles: []ruleset.Profile{ruleset.NewProfile("Edited")}}
	data, err := yaml.Marshal(ruleset.VersionedRuleset{Ruleset: edited})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(m.Path(), data, 0644))

	select {
	case r := <-changed:
		assert.Equal(t, "Edited", r.Profiles[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never observed the external edit")
	}
}
