package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/tictactoe-go/internal/dependencies/ids"
	"github.com/mcoot/tictactoe-go/internal/model"
)

// Handler receives inbound traffic from the hub. Both methods are called
// from connection goroutines and must not block for long.
type Handler interface {
	Dispatch(conn model.ConnectionID, env model.Envelope)
	Disconnected(conn model.ConnectionID)
}

// Hub manages websocket clients and their room groups
type Hub struct {
	ids      ids.Generator
	logger   *slog.Logger
	upgrader websocket.Upgrader
	handler  Handler

	mu      sync.RWMutex
	clients map[model.ConnectionID]*Client
	groups  map[model.RoomID]map[model.ConnectionID]*Client

	// Channels for managing clients
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a Hub. Call SetHandler before serving and Run to start it.
func NewHub(gen ids.Generator, logger *slog.Logger) *Hub {
	return &Hub{
		ids:    gen,
		logger: logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:    make(map[model.ConnectionID]*Client),
		groups:     make(map[model.RoomID]map[model.ConnectionID]*Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetHandler sets the receiver of inbound messages
func (h *Hub) SetHandler(handler Handler) {
	h.handler = handler
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("ws hub started")
	for {
		select {
		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.id]; ok && current == client {
				delete(h.clients, client.id)
				for room, members := range h.groups {
					delete(members, client.id)
					if len(members) == 0 {
						delete(h.groups, room)
					}
				}
				client.closeSend()
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("ws client unregistered",
					slog.String("conn_id", string(client.id)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
				if h.handler != nil {
					h.handler.Disconnected(client.id)
				}
			} else {
				h.mu.Unlock()
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for id, client := range h.clients {
				client.closeSend()
				delete(h.clients, id)
			}
			h.groups = make(map[model.RoomID]map[model.ConnectionID]*Client)
			h.mu.Unlock()
			h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// ServeHTTP upgrades the request and starts the client's pumps
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(h, h.ids.ConnectionID(), conn)

	// Register before the read pump starts so replies to the first message
	// always find the client
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		_ = conn.Close()
		return
	default:
	}
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("ws client registered",
		slog.String("conn_id", string(client.id)),
		slog.Int("total_clients", clientCount))

	go client.writePump()
	go client.readPump()
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Close shuts down the hub and every client
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send delivers event to one connection
func (h *Hub) Send(conn model.ConnectionID, event model.Event) {
	message, ok := h.encode(event)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[conn]
	if !ok {
		h.logger.Debug("ws message for unknown client dropped",
			slog.String("conn_id", string(conn)),
			slog.String("event", string(event.Type)))
		return
	}
	h.deliver(client, message)
}

// SendRoom delivers event to every connection in the room group
func (h *Hub) SendRoom(room model.RoomID, event model.Event) {
	message, ok := h.encode(event)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.groups[room] {
		h.deliver(client, message)
	}
}

// Broadcast delivers event to every connection
func (h *Hub) Broadcast(event model.Event) {
	message, ok := h.encode(event)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sentCount, droppedCount := 0, 0
	for _, client := range h.clients {
		if h.deliver(client, message) {
			sentCount++
		} else {
			droppedCount++
		}
	}
	if droppedCount > 0 {
		h.logger.Warn("ws broadcast partial failure",
			slog.Int("sent", sentCount),
			slog.Int("dropped", droppedCount))
	}
}

// JoinGroup adds a connection to a room group
func (h *Hub) JoinGroup(conn model.ConnectionID, room model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[conn]
	if !ok {
		return
	}
	if h.groups[room] == nil {
		h.groups[room] = make(map[model.ConnectionID]*Client)
	}
	h.groups[room][conn] = client
}

// LeaveGroup removes a connection from a room group
func (h *Hub) LeaveGroup(conn model.ConnectionID, room model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[room]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.groups, room)
	}
}

// GroupSize returns the number of connections in a room group
func (h *Hub) GroupSize(room model.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[room])
}

func (h *Hub) encode(event model.Event) ([]byte, bool) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("ws event encoding failed",
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()))
		return nil, false
	}
	return message, true
}

// deliver queues message without blocking. A client whose queue is full
// is dropped. Caller holds h.mu.
func (h *Hub) deliver(client *Client, message []byte) bool {
	select {
	case client.send <- message:
		return true
	default:
		client.drop()
		return false
	}
}
