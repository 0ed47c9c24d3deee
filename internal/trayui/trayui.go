// Package trayui is a thin systray-based renderer of the engine's status
// messages (spec.md §2: tray icon is out of scope, "only their contract
// with the core is specified"). It renders control.ProfileChanged and
// control.LayersChanged as a tooltip and a disabled label, and its one live
// menu item posts control.Quit. It is not a profile/layer editor.
//
// Grounded on the teacher's internal/tray package: same systray.Run/
// setupMenu/AddMenuItem shape, generalized from a fixed "VKVM" tooltip to
// one driven by live control events.
package trayui

import (
	"fmt"

	"github.com/getlantern/systray"

	"reemap/internal/control"
)

// Tray implements control.Subscriber, updating its tooltip and status menu
// item as ProfileChanged/LayersChanged events arrive.
type Tray struct {
	hub *control.Hub

	statusItem *systray.MenuItem
	quitItem   *systray.MenuItem

	lastProfile string
	lastLayers  []bool
}

func New(hub *control.Hub) *Tray {
	return &Tray{hub: hub}
}

// Run blocks running the systray event loop. Call it from the main
// goroutine (systray requires this on most platforms).
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("Reemap")
	systray.SetTooltip("Reemap: no profile active")
	systray.SetIcon(icon())

	t.statusItem = systray.AddMenuItem("No profile active", "")
	t.statusItem.Disable()
	systray.AddSeparator()
	t.quitItem = systray.AddMenuItem("Quit", "Stop Reemap")

	t.hub.Register(t)

	go func() {
		<-t.quitItem.ClickedCh
		t.hub.RequestQuit()
	}()
}

func (t *Tray) onExit() {
	t.hub.Unregister(t)
}

// Notify implements control.Subscriber.
func (t *Tray) Notify(event interface{}) {
	switch e := event.(type) {
	case control.ProfileChanged:
		t.lastProfile = e.Profile.Name
		t.refresh()
	case control.LayersChanged:
		t.lastLayers = e.Active
		t.refresh()
	}
}

func (t *Tray) refresh() {
	if t.statusItem == nil {
		return
	}
	label := fmt.Sprintf("Profile: %s", t.lastProfile)
	if n := activeCount(t.lastLayers); n > 0 {
		label += fmt.Sprintf(" (%d layer%s active)", n, plural(n))
	}
	t.statusItem.SetTitle(label)
	systray.SetTooltip("Reemap — " + label)
}

func activeCount(bits []bool) int {
	n := 0
	for _, b := range bits {
		if b {
			n++
		}
	}
	return n
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// icon returns a minimal valid 16x16 32-bit ICO, adapted from the teacher's
// placeholder tray icon.
func icon() []byte {
	data := make([]byte, 1118)
	copy(data[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	copy(data[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x48, 0x04, 0x00, 0x00,
		0x16, 0x00, 0x00, 0x00,
	})
	copy(data[22:62], []byte{
		0x28, 0x00, 0x00, 0x00,
		0x10, 0x00, 0x00, 0x00,
		0x20, 0x00, 0x00, 0x00,
		0x01, 0x00,
		0x20, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x04, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})
	return data
}
