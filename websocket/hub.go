package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub keeps the open notification sockets of each user.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[Conn]struct{})}
}

func (h *Hub) Register(userID uuid.UUID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[Conn]struct{})
	}
	h.clients[userID][conn] = struct{}{}
	log.Printf("Client registered: %s", userID)
}

func (h *Hub) Unregister(userID uuid.UUID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.clients[userID]
	if conns == nil {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
	log.Printf("Client unregistered: %s", userID)
}

// Push writes payload to every socket of the user and drops the ones that
// fail. It reports whether at least one socket received it.
func (h *Hub) Push(userID uuid.UUID, payload interface{}) bool {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	delivered := false
	for _, c := range conns {
		if err := c.WriteJSON(payload); err != nil {
			log.Printf("Error sending notification to client %s: %v", userID, err)
			c.Close()
			h.Unregister(userID, c)
			continue
		}
		delivered = true
	}
	return delivered
}

func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Serve holds a socket open until the client goes away. Incoming frames are
// read and discarded.
func (h *Hub) Serve(userID uuid.UUID, c *websocket.Conn) {
	h.Register(userID, c)
	defer func() {
		h.Unregister(userID, c)
		c.Close()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
