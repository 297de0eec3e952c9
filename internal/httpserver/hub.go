package httpserver

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/controller"
)

const (
	// sendBuffer is the per-client event backlog. A client that falls this
	// far behind is dropped rather than allowed to stall the call loop.
	sendBuffer = 32

	writeWait = 5 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Local tool; restrict when exposed beyond localhost
		return true
	},
}

// wsConn is the slice of *websocket.Conn the writer needs.
type wsConn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type hubClient struct {
	conn wsConn
	send chan controller.Event
}

// Hub fans controller events out to every connected WebSocket client. Each
// client gets a buffered send channel drained by its own writer goroutine,
// so Broadcast never blocks on a slow socket; a client whose buffer fills is
// dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*hubClient]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*hubClient]bool)}
}

// Broadcast queues one event for every client. Non-blocking: a client with a
// full backlog is disconnected instead of stalling the caller.
func (h *Hub) Broadcast(e controller.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			log.Printf("ws client too slow, dropping")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) register(conn wsConn) *hubClient {
	c := &hubClient{conn: conn, send: make(chan controller.Event, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

// drop unregisters the client and closes its send channel exactly once; the
// map membership check keeps a Broadcast-side drop and a reader/writer-side
// drop from double-closing.
func (h *Hub) drop(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// writeLoop drains the client's send channel onto the socket. Every write
// carries a deadline so a wedged peer cannot hold the goroutine forever.
func (h *Hub) writeLoop(c *hubClient) {
	defer func() { _ = c.conn.Close() }()
	for e := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(e); err != nil {
			log.Printf("ws write error, dropping client: %v", err)
			h.drop(c)
			for range c.send {
				// drain until the close lands
			}
			return
		}
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away. Inbound frames are read and discarded; the feed is
// one-way.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	c := h.register(conn)
	go h.writeLoop(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(c)
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
