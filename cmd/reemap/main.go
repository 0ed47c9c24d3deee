// Reemap is a userspace input-remapping service: it installs low-level
// keyboard/mouse hooks, intercepts events before they reach the focused
// application, and replays them through profile- and layer-aware remap
// rules (see internal/engine).
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"reemap/internal/config"
	"reemap/internal/control"
	"reemap/internal/engine"
	"reemap/internal/foreground"
	"reemap/internal/hookstate"
	"reemap/internal/platform"
	"reemap/internal/ruleset"
	"reemap/internal/singleton"
	"reemap/internal/statusws"
	"reemap/internal/trayui"
)

var (
	background    bool
	uninstall     bool
	listProfiles  bool
	applyFile     string
	statusAddr    string
)

func main() {
	root := &cobra.Command{
		Use:   "reemap",
		Short: "Low-level keyboard/mouse remapping service",
		RunE:  run,
	}
	root.Flags().BoolVar(&background, "background", false, "start without showing the editor")
	root.Flags().BoolVar(&uninstall, "uninstall", false, "remove autostart registration and exit")
	root.Flags().BoolVar(&listProfiles, "list-profiles", false, "print the loaded ruleset's profile names and exit")
	root.Flags().StringVar(&applyFile, "apply", "", "validate a ruleset file offline, without starting hooks")
	root.Flags().StringVar(&statusAddr, "status-addr", "127.0.0.1:18090", "address for the read-only status websocket")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if uninstall {
		return runUninstall()
	}
	if applyFile != "" {
		return runApply(applyFile)
	}

	cfgMgr, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("resolving config directory: %w", err)
	}
	if err := cfgMgr.Load(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if listProfiles {
		for _, p := range cfgMgr.Get().Profiles {
			fmt.Println(p.Name)
		}
		return nil
	}

	guard, err := singleton.Acquire()
	if err != nil {
		log.Printf("reemap: %v", err)
		os.Exit(1)
	}
	defer guard.Close()

	state := hookstate.New(cfgMgr.Get())
	adapter := platform.NewAdapter()
	eng := engine.New(state, adapter)
	tracker := foreground.New(state)

	hub := control.NewHub()
	go hub.Run()
	defer hub.Stop()

	tracker.OnProfileChanged = func(name string) {
		hub.Publish(control.ProfileChanged{
			Profile: control.ProfileRef{Index: state.ActiveProfileIndex(), Name: name},
		})
	}

	statusBroadcaster := statusws.New()
	go statusBroadcaster.Run()
	defer statusBroadcaster.Stop()
	hub.Register(statusBroadcaster)

	mux := http.NewServeMux()
	mux.Handle("/status", statusBroadcaster)
	statusServer := &http.Server{Addr: statusAddr, Handler: mux}
	go func() {
		if err := statusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("reemap: status server error: %v", err)
		}
	}()
	defer statusServer.Close()

	stopWatch, err := cfgMgr.Watch(func(r ruleset.Ruleset) {
		hub.RequestUpdate(r)
	})
	if err != nil {
		log.Printf("reemap: config hot-reload disabled: %v", err)
	} else {
		defer stopWatch()
	}

	if err := adapter.Start(eng, tracker); err != nil {
		log.Printf("reemap: failed to install input hooks: %v", err)
		return err
	}
	defer adapter.Stop()

	if !background {
		tray := trayui.New(hub)
		go tray.Run()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case u := <-hub.Updates:
			win, err := adapter.CurrentWindow()
			if err != nil {
				log.Printf("reemap: failed to read the focused window, falling back to the default profile: %v", err)
			}
			norm := u.Ruleset.Normalize()
			idx := foreground.MatchProfile(norm, win)
			eng.ApplyRuleset(u.Ruleset, idx)
			hub.Publish(control.ProfileChanged{
				Profile: control.ProfileRef{Index: idx, Name: norm.Profiles[idx].Name},
			})
			if err := cfgMgr.Set(u.Ruleset); err != nil {
				log.Printf("reemap: failed to persist updated ruleset: %v", err)
			}
		case <-hub.CheckForegrounds:
			win, err := adapter.CurrentWindow()
			if err != nil {
				log.Printf("reemap: failed to read the focused window: %v", err)
				continue
			}
			tracker.Check(win)
		case <-hub.Quits:
			return nil
		case <-sigCh:
			return nil
		}
	}
}

func runApply(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var versioned ruleset.VersionedRuleset
	if err := yaml.Unmarshal(data, &versioned); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := versioned.Ruleset.Validate(); err != nil {
		return fmt.Errorf("%s failed validation: %w", path, err)
	}
	fmt.Printf("%s is a valid ruleset with %d profile(s)\n", path, len(versioned.Ruleset.Profiles))
	return nil
}

func runUninstall() error {
	// Autostart registration is a thin, platform-specific registry/plist/
	// .desktop entry; reemap's core does not manage it directly (spec.md
	// §1, "run-on-login registration" is out of scope for the core).
	fmt.Println("reemap: no autostart registration to remove")
	return nil
}
