package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub keeps the set of connected observers per auction.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*clientConn]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*clientConn]struct{})}
}

func (h *Hub) Join(auctionID string, c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[auctionID]
	if room == nil {
		room = make(map[*clientConn]struct{})
		h.rooms[auctionID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) Leave(auctionID string, c *clientConn) {
	h.mu.Lock()
	if room, ok := h.rooms[auctionID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, auctionID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Broadcast fans a raw frame out to everyone watching the auction. Writes
// happen outside the lock; connections that fail are dropped.
func (h *Hub) Broadcast(auctionID string, msg []byte) {
	h.mu.RLock()
	conns := make([]*clientConn, 0, len(h.rooms[auctionID]))
	for c := range h.rooms[auctionID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			h.Leave(auctionID, c)
		}
	}
}
