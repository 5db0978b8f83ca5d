package mockd

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/worldads/adwatch/internal/domain"
)

const (
	writeWait       = 10 * time.Second
	defaultPongWait = 60 * time.Second
	maxMessageSize  = 4096
)

// Client represents a single WebSocket connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	open     bool
	pongWait time.Duration
}

// NewClient wraps an upgraded connection. pongWait bounds how long the
// server keeps a silent connection before cutting it loose.
func NewClient(hub *Hub, conn *websocket.Conn, pongWait time.Duration) *Client {
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		pongWait: pongWait,
	}
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

// ReadPump reads inbound frames. Only room membership frames are
// meaningful; everything else is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait)) //nolint:errcheck
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		switch frame.Type {
		case domain.EventJoinRoom:
			var p roomPayload
			if json.Unmarshal(frame.Payload, &p) == nil && p.RoomID != "" {
				c.hub.membership <- &roomChange{client: c, roomID: p.RoomID, join: true}
			}
		case domain.EventLeaveRoom:
			var p roomPayload
			if json.Unmarshal(frame.Payload, &p) == nil && p.RoomID != "" {
				c.hub.membership <- &roomChange{client: c, roomID: p.RoomID, join: false}
			}
		}
	}
}

// WritePump sends queued frames and keepalive pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message) //nolint:errcheck
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
