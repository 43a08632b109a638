// Package websocket pushes queue change events to connected browser
// clients so the UI refreshes without polling.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub fans queue events out to every connected client. Broadcasts never
// block the sender; events are dropped when the hub cannot keep up, the
// UI reconciles from the queue endpoint anyway.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// ProgressUpdate is the per-item progress event pushed to clients
type ProgressUpdate struct {
	Type     string  `json:"type"`
	ItemID   string  `json:"itemId"`
	Progress float64 `json:"progress"`
}

// NewHub creates a hub; Run must be started for broadcasts to reach
// clients
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 64),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: slog.Default(),
	}
}

// Run delivers broadcasts until the context is canceled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// QueueUpdated tells clients to re-fetch the queue
func (h *Hub) QueueUpdated() {
	h.send([]byte(`{"type":"queueUpdated"}`))
}

// Progress pushes a per-item progress percentage
func (h *Hub) Progress(itemID string, progress float64) {
	msg, err := json.Marshal(&ProgressUpdate{Type: "progress", ItemID: itemID, Progress: progress})
	if err != nil {
		h.logger.Error("Failed to marshal progress update", "error", err)
		return
	}
	h.send(msg)
}

func (h *Hub) send(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// ClientCount reports the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// Handler upgrades the request and holds the connection open until the
// client goes away
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	h.logger.Info("WebSocket client connected", "remote_addr", r.RemoteAddr)
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
		h.logger.Info("WebSocket client disconnected", "remote_addr", r.RemoteAddr)
	}()

	const readTimeout = 60 * time.Second
	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("WebSocket read error", "error", err)
			}
			return
		}
	}
}
