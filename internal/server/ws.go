package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/airmouse/internal/pipeline"
)

// writeWait bounds a single WebSocket write to an overlay client.
const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// overlayClient is one connected overlay page.
type overlayClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *overlayClient) send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// PointerHub broadcasts pointer, activation and service status messages to
// overlay pages connected over WebSocket. New clients first receive the
// latest known status, activation and pointer messages.
type PointerHub struct {
	mu      sync.RWMutex
	clients map[*overlayClient]struct{}

	status     []byte
	activation []byte
	pointer    []byte

	sent atomic.Uint64
}

// NewPointerHub creates an empty PointerHub.
func NewPointerHub() *PointerHub {
	return &PointerHub{
		clients: make(map[*overlayClient]struct{}),
	}
}

// Publish forwards a pipeline event to every client.
func (h *PointerHub) Publish(e pipeline.Event) {
	var msg map[string]any
	switch e.Kind {
	case pipeline.EventPointer:
		msg = map[string]any{"type": "pointer", "x": e.X, "y": e.Y}
	case pipeline.EventActivation:
		msg = map[string]any{"type": "activation", "active": e.Activated, "opacity": e.Opacity()}
	case pipeline.EventAction:
		msg = map[string]any{"type": "action", "action": e.Action}
	default:
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", e.Kind, err)
		return
	}

	h.mu.Lock()
	switch e.Kind {
	case pipeline.EventPointer:
		h.pointer = data
	case pipeline.EventActivation:
		h.activation = data
	}
	h.mu.Unlock()

	h.broadcast(data)
}

// SetRunning publishes whether the tracking service is running.
func (h *PointerHub) SetRunning(running bool) {
	data, _ := json.Marshal(map[string]any{"type": "status", "running": running})

	h.mu.Lock()
	h.status = data
	h.mu.Unlock()

	h.broadcast(data)
}

// broadcast sends msg to all clients. Clients whose write fails are closed
// and dropped.
func (h *PointerHub) broadcast(msg []byte) {
	h.mu.RLock()
	clients := make([]*overlayClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			log.Printf("Overlay client write failed: %v", err)
			h.remove(c)
			c.conn.Close()
			continue
		}
		h.sent.Add(1)
	}
}

func (h *PointerHub) remove(c *overlayClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// ClientCount returns the number of connected clients.
func (h *PointerHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Sent returns how many messages were delivered.
func (h *PointerHub) Sent() uint64 {
	return h.sent.Load()
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PointerHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &overlayClient{conn: conn}

	// Register and replay the cached state under the client lock so that
	// no broadcast can overtake the replay.
	c.mu.Lock()
	h.mu.Lock()
	h.clients[c] = struct{}{}
	initial := [][]byte{h.status, h.activation, h.pointer}
	h.mu.Unlock()

	for _, msg := range initial {
		if msg == nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.mu.Unlock()
			h.remove(c)
			return
		}
	}
	c.mu.Unlock()

	defer h.remove(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
