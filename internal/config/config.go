// Package config resolves the per-user config directory, loads and saves
// the ruleset as config.yaml, and watches it for external edits. Directory
// resolution is grounded directly on the teacher's getConfigPath, same
// switch-on-runtime.GOOS shape and create-on-first-run behavior; the file
// format and contents are reemap's (YAML-encoded ruleset.VersionedRuleset)
// rather than the teacher's JSON switcher config.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"reemap/internal/ruleset"
)

const fileName = "config.yaml"

// Dir returns the per-user configuration directory, creating it if it does
// not yet exist.
func Dir() (string, error) {
	var dir string
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support", "reemap")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		dir = filepath.Join(appData, "reemap")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config", "reemap")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Manager owns the on-disk ruleset: loading, saving, and (via Watch)
// reacting to external edits. It holds no opinion on what a valid ruleset
// looks like beyond ruleset.Validate.
type Manager struct {
	mu   sync.Mutex
	path string
	r    ruleset.Ruleset
}

// NewManager resolves the config path, creating the config directory if
// needed, but does not read or write the config file; call Load to populate
// it (creating a default ruleset file if none exists).
func NewManager() (*Manager, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return newManagerAtPath(filepath.Join(dir, fileName)), nil
}

func newManagerAtPath(path string) *Manager {
	return &Manager{path: path}
}

// DefaultRuleset is what a brand new install starts with: just the
// synthetic Always-matching default profile, empty of remaps.
func DefaultRuleset() ruleset.Ruleset {
	return ruleset.Ruleset{Profiles: []ruleset.Profile{ruleset.NewProfile(ruleset.DefaultProfileName)}}
}

// Load reads the ruleset from disk, writing out DefaultRuleset first if no
// file exists yet (spec.md §6, "missing directory/file is created with a
// default ruleset on first run").
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.r = DefaultRuleset()
		return m.saveLocked()
	}
	if err != nil {
		return err
	}

	var versioned ruleset.VersionedRuleset
	if err := yaml.Unmarshal(data, &versioned); err != nil {
		return fmt.Errorf("config: parsing %s: %w", m.path, err)
	}
	if err := versioned.Ruleset.Validate(); err != nil {
		return fmt.Errorf("config: %s failed validation: %w", m.path, err)
	}
	m.r = versioned.Ruleset
	return nil
}

// Save writes the current in-memory ruleset to disk.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	data, err := yaml.Marshal(ruleset.VersionedRuleset{Ruleset: m.r})
	if err != nil {
		return err
	}
	log.Printf("config: writing %s (%d bytes)", m.path, len(data))
	return os.WriteFile(m.path, data, 0644)
}

// Get returns the in-memory ruleset.
func (m *Manager) Get() ruleset.Ruleset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.r
}

// Set replaces the in-memory ruleset and persists it.
func (m *Manager) Set(r ruleset.Ruleset) error {
	m.mu.Lock()
	m.r = r
	m.mu.Unlock()
	return m.Save()
}

// Path is the on-disk location Load/Save operate on.
func (m *Manager) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// Watch starts an fsnotify watcher on the config file's directory and calls
// onChange with the freshly loaded ruleset whenever the file is written.
// It returns a stop function. Malformed edits are logged and skipped rather
// than propagated, matching spec §7's "config-persistence errors are
// warnings that do not block applying the new ruleset at runtime" (the
// previously loaded ruleset remains in effect until a valid edit lands).
func (m *Manager) Watch(onChange func(ruleset.Ruleset)) (stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(m.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != m.path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := m.Load(); err != nil {
					log.Printf("config: ignoring invalid edit to %s: %v", m.path, err)
					continue
				}
				onChange(m.Get())
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("config: watcher error: %v", werr)
			}
		}
	}()

	return watcher.Close, nil
}
