// Package control is the message-passing seam between the GUI/config
// collaborator and the interception engine (spec §6 "Control channel"),
// generalizing the teacher's WSManager register/unregister/broadcast trio
// (internal/api/websocket.go) from websocket clients to any Subscriber.
package control

import (
	"sync"

	"reemap/internal/ruleset"
)

// ProfileRef names the active profile the way engine->GUI status messages
// report it.
type ProfileRef struct {
	Index int
	Name  string
}

// Update is a GUI->engine request to replace the running ruleset.
type Update struct {
	Ruleset ruleset.Ruleset
}

// CheckForeground is a GUI->engine request to re-evaluate the active
// profile against the current foreground window, independent of any
// WinEvent hook firing (e.g. after the GUI edits the current profile's
// condition).
type CheckForeground struct{}

// Quit is a GUI->engine request for clean shutdown.
type Quit struct{}

// ProfileChanged is an engine->GUI status event, sent whenever the active
// profile changes.
type ProfileChanged struct {
	Profile ProfileRef
}

// LayersChanged is an engine->GUI status event carrying a profile's
// layer-active bits. Subscribers render it when it is published; the engine
// does not publish it when a layer's active bit flips.
type LayersChanged struct {
	Profile ProfileRef
	Active  []bool
}

// Subscriber receives engine->GUI status events (ProfileChanged,
// LayersChanged). Implementations must not block Notify for long; the hub
// calls it synchronously from its own goroutine.
type Subscriber interface {
	Notify(event interface{})
}

// Hub is the single owner of the GUI<->engine control channels. It fans
// engine-side status events out to every registered Subscriber (tray,
// status websocket, ...) and carries GUI-side requests (Update,
// CheckForeground, Quit) to whatever orchestration loop is reading them.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]bool

	register   chan Subscriber
	unregister chan Subscriber
	events     chan interface{}
	done       chan struct{}

	// updateMu/updateQueue/updateWake back Updates with an unbounded
	// queue: spec.md §4.5 requires the GUI collaborator be able to submit
	// a new Ruleset over an unbounded channel, so RequestUpdate must never
	// block the caller or drop a submission under backpressure.
	updateMu    sync.Mutex
	updateQueue []Update
	updateWake  chan struct{}

	Updates          chan Update
	CheckForegrounds chan CheckForeground
	Quits            chan Quit
}

// NewHub constructs a Hub. Run must be called (typically in its own
// goroutine) before Publish/Register have any effect.
func NewHub() *Hub {
	return &Hub{
		subscribers:      make(map[Subscriber]bool),
		register:         make(chan Subscriber),
		unregister:       make(chan Subscriber),
		events:           make(chan interface{}),
		done:             make(chan struct{}),
		updateWake:       make(chan struct{}, 1),
		Updates:          make(chan Update),
		CheckForegrounds: make(chan CheckForeground, 16),
		Quits:            make(chan Quit, 1),
	}
}

// Run owns the subscriber set and the fan-out loop; it returns when Stop is
// called.
func (h *Hub) Run() {
	go h.pumpUpdates()
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			h.subscribers[s] = true
			h.mu.Unlock()
		case s := <-h.unregister:
			h.mu.Lock()
			delete(h.subscribers, s)
			h.mu.Unlock()
		case e := <-h.events:
			h.mu.RLock()
			for s := range h.subscribers {
				s.Notify(e)
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// pumpUpdates drains updateQueue onto the exported Updates channel,
// blocking on delivery rather than ever discarding a queued entry. It is
// the only reader of updateQueue and the only writer of Updates.
func (h *Hub) pumpUpdates() {
	for {
		select {
		case <-h.updateWake:
		case <-h.done:
			return
		}
		for {
			h.updateMu.Lock()
			if len(h.updateQueue) == 0 {
				h.updateMu.Unlock()
				break
			}
			next := h.updateQueue[0]
			h.updateQueue = h.updateQueue[1:]
			h.updateMu.Unlock()

			select {
			case h.Updates <- next:
			case <-h.done:
				return
			}
		}
	}
}

// Stop ends Run's loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Register subscribes s to every future engine->GUI event.
func (h *Hub) Register(s Subscriber) { h.register <- s }

// Unregister removes s.
func (h *Hub) Unregister(s Subscriber) { h.unregister <- s }

// Publish fans event out to all current subscribers.
func (h *Hub) Publish(event interface{}) {
	select {
	case h.events <- event:
	case <-h.done:
	}
}

// RequestUpdate is the GUI-side call to submit a new ruleset. It enqueues
// onto an unbounded queue and returns immediately: unlike
// RequestCheckForeground/RequestQuit, a submitted ruleset is never dropped.
func (h *Hub) RequestUpdate(r ruleset.Ruleset) {
	h.updateMu.Lock()
	h.updateQueue = append(h.updateQueue, Update{Ruleset: r})
	h.updateMu.Unlock()

	select {
	case h.updateWake <- struct{}{}:
	default:
	}
}

// RequestCheckForeground is the GUI-side call to force a re-match.
func (h *Hub) RequestCheckForeground() {
	select {
	case h.CheckForegrounds <- CheckForeground{}:
	default:
	}
}

// RequestQuit is the GUI-side call to request shutdown.
func (h *Hub) RequestQuit() {
	select {
	case h.Quits <- Quit{}:
	default:
	}
}
