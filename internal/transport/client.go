package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/worldads/adwatch/internal/config"
	"github.com/worldads/adwatch/internal/domain"
	"github.com/worldads/adwatch/pkg/logger"
)

// Handler receives the payload of an inbound frame.
type Handler func(payload json.RawMessage)

// Frame is the wire format: JSON text frames {type, payload}.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type subscription struct {
	id int
	fn Handler
}

// Client is the single persistent WebSocket connection shared by all
// consumers. It is constructed once at application start and injected
// by reference; there is no package-level instance.
type Client struct {
	url           string
	reconnectBase time.Duration
	reconnectCap  time.Duration
	maxReconnects int
	writeWait     time.Duration

	dial func(ctx context.Context, url string) (*websocket.Conn, error)

	mu        sync.Mutex
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closed    bool
	attempts  int
	reconnect *time.Timer

	subMu     sync.RWMutex
	subs      map[string][]subscription
	nextSubID int

	log zerolog.Logger
}

// New creates a transport client. The connection is not dialed until
// Connect or the first Send.
func New(cfg config.WSConfig) *Client {
	return &Client{
		url:           cfg.URL,
		reconnectBase: cfg.ReconnectBase,
		reconnectCap:  cfg.ReconnectCap,
		maxReconnects: cfg.MaxReconnects,
		writeWait:     cfg.WriteWait,
		dial: func(ctx context.Context, url string) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			return conn, err
		},
		subs: make(map[string][]subscription),
		log:  logger.WithComponent("transport"),
	}
}

// Connect dials the server if not already connected. Idempotent: a
// live connection returns immediately, and concurrent callers share
// one dial.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	conn, err := c.dial(ctx, c.url)
	if err != nil {
		c.log.Warn().Err(err).Str("url", c.url).Msg("websocket dial failed")
		return err
	}

	c.conn = conn
	c.attempts = 0
	c.log.Info().Str("url", c.url).Msg("websocket connected")

	go c.readPump(conn)
	return nil
}

// Connected reports whether a live connection exists.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// readPump reads frames until the connection drops, then schedules a
// reconnect with exponential backoff.
func (c *Client) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDisconnect(conn, err)
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			// Malformed frames are dropped; the dispatch loop must not die.
			c.log.Debug().Err(err).Msg("dropping malformed frame")
			continue
		}
		c.dispatch(frame)
	}
}

// dispatch fans a frame out to every subscriber for its type, in
// registration order. Each callback runs behind a recover so one
// failing subscriber cannot starve the rest of the dispatch.
func (c *Client) dispatch(frame Frame) {
	c.subMu.RLock()
	subs := make([]subscription, len(c.subs[frame.Type]))
	copy(subs, c.subs[frame.Type])
	c.subMu.RUnlock()

	for _, sub := range subs {
		c.invoke(frame.Type, sub, frame.Payload)
	}
}

func (c *Client) invoke(eventType string, sub subscription, payload json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("type", eventType).Interface("panic", r).Msg("subscriber panicked")
		}
	}()
	sub.fn(payload)
}

func (c *Client) handleDisconnect(conn *websocket.Conn, err error) {
	_ = conn.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		// A newer connection already replaced this one.
		return
	}
	c.conn = nil

	if c.closed {
		return
	}
	c.log.Warn().Err(err).Msg("websocket disconnected")
	c.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the backoff timer. After the Kth
// consecutive failure the delay is min(base*2^K, cap); exhausting
// maxReconnects leaves the client disconnected until the next explicit
// Connect.
func (c *Client) scheduleReconnectLocked() {
	if c.attempts >= c.maxReconnects {
		c.log.Warn().Int("attempts", c.attempts).Msg("reconnect attempts exhausted")
		return
	}
	c.attempts++
	delay := c.backoffDelay(c.attempts)
	c.log.Info().Dur("delay", delay).Int("attempt", c.attempts).Msg("scheduling reconnect")

	c.reconnect = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.conn != nil {
			return
		}
		if err := c.connectLocked(context.Background()); err != nil {
			c.scheduleReconnectLocked()
		}
	})
}

// backoffDelay returns min(base * 2^attempt, cap).
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.reconnectBase
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= c.reconnectCap {
			return c.reconnectCap
		}
	}
	return delay
}

// Send serializes {type, payload} as a text frame. If disconnected it
// attempts to connect first. Failures are logged, not returned: live
// updates are best-effort and callers must not fail a user action on a
// dropped broadcast.
func (c *Client) Send(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(outFrame{Type: eventType, Payload: payload})
	if err != nil {
		c.log.Error().Err(err).Str("type", eventType).Msg("marshal frame failed")
		return
	}

	c.mu.Lock()
	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			c.mu.Unlock()
			c.log.Warn().Err(err).Str("type", eventType).Msg("send dropped: not connected")
			return
		}
	}
	conn := c.conn
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.log.Warn().Err(err).Str("type", eventType).Msg("websocket write failed")
	}
}

// Subscribe registers a callback for a message type and returns its
// unsubscribe closure. Callbacks for a type run in registration order.
// Calling the closure more than once is harmless.
func (c *Client) Subscribe(eventType string, fn Handler) func() {
	c.subMu.Lock()
	c.nextSubID++
	id := c.nextSubID
	c.subs[eventType] = append(c.subs[eventType], subscription{id: id, fn: fn})
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		subs := c.subs[eventType]
		for i, sub := range subs {
			if sub.id == id {
				c.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(c.subs[eventType]) == 0 {
			delete(c.subs, eventType)
		}
	}
}

// JoinRoom asks the server to add this connection to a fan-out room.
func (c *Client) JoinRoom(ctx context.Context, roomID string) {
	c.Send(ctx, domain.EventJoinRoom, domain.RoomPayload{RoomID: roomID})
}

// LeaveRoom asks the server to drop this connection from a room.
func (c *Client) LeaveRoom(ctx context.Context, roomID string) {
	c.Send(ctx, domain.EventLeaveRoom, domain.RoomPayload{RoomID: roomID})
}

// Close shuts the connection down and cancels any pending reconnect.
// A closed client stays closed.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.writeWait))
		_ = c.conn.Close()
		c.conn = nil
	}
}
