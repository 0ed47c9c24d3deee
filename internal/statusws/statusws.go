// Package statusws mirrors the engine's control.ProfileChanged and
// control.LayersChanged events to any connected local websocket client, for
// a status page. It accepts no input: remap editing over the wire stays out
// of scope along with the GUI editor (spec.md §1). Grounded directly on the
// teacher's internal/api/websocket.go WSManager: the same
// register/unregister/broadcast channel trio and read/write pump pair, with
// the client-originated message handling removed since this hub is
// broadcast-only.
package statusws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"reemap/internal/control"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// frame is the JSON envelope sent to every connected client.
type frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Broadcaster implements control.Subscriber and serves a websocket endpoint
// that mirrors every event it receives to all connected clients.
type Broadcaster struct {
	clientsMu sync.RWMutex
	clients   map[*client]bool

	register   chan *client
	unregister chan *client
	broadcast  chan frame
	done       chan struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func New() *Broadcaster {
	return &Broadcaster{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan frame, 16),
		done:       make(chan struct{}),
	}
}

// Run owns the client set and the fan-out loop; call it in its own
// goroutine before serving HTTP.
func (b *Broadcaster) Run() {
	for {
		select {
		case c := <-b.register:
			b.clientsMu.Lock()
			b.clients[c] = true
			b.clientsMu.Unlock()
		case c := <-b.unregister:
			b.clientsMu.Lock()
			if _, ok := b.clients[c]; ok {
				delete(b.clients, c)
				close(c.send)
			}
			b.clientsMu.Unlock()
		case f := <-b.broadcast:
			b.send(f)
		case <-b.done:
			return
		}
	}
}

func (b *Broadcaster) Stop() { close(b.done) }

func (b *Broadcaster) send(f frame) {
	data, err := json.Marshal(f)
	if err != nil {
		log.Printf("statusws: failed to marshal %s frame: %v", f.Type, err)
		return
	}
	b.clientsMu.RLock()
	defer b.clientsMu.RUnlock()
	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(b.clients, c)
		}
	}
}

// Notify implements control.Subscriber.
func (b *Broadcaster) Notify(event interface{}) {
	switch e := event.(type) {
	case control.ProfileChanged:
		b.broadcast <- frame{Type: "profile_changed", Data: e}
	case control.LayersChanged:
		b.broadcast <- frame{Type: "layers_changed", Data: e}
	}
}

// ServeHTTP upgrades the connection and registers a client.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("statusws: upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 32)}
	b.register <- c
	go b.writePump(c)
	go b.readPump(c)
}

// readPump only exists to notice the client going away; status clients
// never send anything meaningful.
func (b *Broadcaster) readPump(c *client) {
	defer func() {
		b.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Broadcaster) writePump(c *client) {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
