package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client send queue length and write deadline.
const (
	sendBuffer   = 32
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Hub fans messages out to connected websocket clients. Slow clients drop
// messages rather than stall the frame loop.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan []byte)}
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, send := range h.clients {
		select {
		case send <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(conn *websocket.Conn) chan []byte {
	send := make(chan []byte, sendBuffer)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()
	return send
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	h.mu.Unlock()
}

// PointerHandler upgrades /api/pointer requests and attaches them to a Hub.
type PointerHandler struct {
	hub *Hub
}

// NewPointerHandler creates a new PointerHandler for hub.
func NewPointerHandler(hub *Hub) *PointerHandler {
	return &PointerHandler{hub: hub}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PointerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	send := h.hub.add(conn)
	defer h.hub.remove(conn)

	go writeLoop(conn, send)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writeLoop is the only writer on conn. It ends when send is closed.
func writeLoop(conn *websocket.Conn, send <-chan []byte) {
	for msg := range send {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
