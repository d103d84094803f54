package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/tictactoe-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one websocket connection
type Client struct {
	hub         *Hub
	id          model.ConnectionID
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
	sendOnce    sync.Once
	dropOnce    sync.Once
}

func newClient(hub *Hub, id model.ConnectionID, conn *websocket.Conn) *Client {
	return &Client{
		hub:         hub,
		id:          id,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// closeSend closes the outbound queue. Caller holds hub.mu.
func (c *Client) closeSend() {
	c.sendOnce.Do(func() { close(c.send) })
}

// drop closes a connection that cannot keep up. The read pump then fails
// and unregisters the client, which reports the disconnect.
func (c *Client) drop() {
	c.dropOnce.Do(func() {
		c.hub.logger.Warn("ws client buffer full, disconnecting",
			slog.String("conn_id", string(c.id)))
		_ = c.conn.Close()
	})
}

// readPump decodes inbound envelopes and hands them to the hub's handler
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws read error",
					slog.String("conn_id", string(c.id)),
					slog.String("error", err.Error()))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var env model.Envelope
		if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
			c.hub.Send(c.id, model.ErrorEvent(model.ErrMalformedMessage.Message))
			continue
		}
		if c.hub.handler != nil {
			c.hub.handler.Dispatch(c.id, env)
		}
	}
}

// writePump drains the send queue and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
