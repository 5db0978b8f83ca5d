package mockd

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/worldads/adwatch/internal/domain"
	"github.com/worldads/adwatch/pkg/logger"
)

const redisPubSubChannel = "adwatch:events"

// Event is a real-time frame fanned out over WebSocket.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub manages WebSocket clients grouped by room. Rooms are keyed per
// advertisement; a client joins and leaves rooms with control frames.
type Hub struct {
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	membership chan *roomChange
	broadcast  chan *roomEvent

	mu          sync.RWMutex
	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
}

type roomChange struct {
	client *Client
	roomID string
	join   bool
}

type roomEvent struct {
	RoomID string `json:"roomId"`
	Event  *Event `json:"event"`
}

// NewHub creates a hub. A nil redis client disables the cross-instance
// bridge; the hub then fans out locally only.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		rooms:       make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		membership:  make(chan *roomChange, 64),
		broadcast:   make(chan *roomEvent, 256),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			client.open = true
			h.mu.Unlock()
			wsConnectionsActive.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			h.dropClientLocked(client)
			h.mu.Unlock()

		case change := <-h.membership:
			h.mu.Lock()
			if change.join {
				if h.rooms[change.roomID] == nil {
					h.rooms[change.roomID] = make(map[*Client]bool)
				}
				h.rooms[change.roomID][change.client] = true
			} else if members, ok := h.rooms[change.roomID]; ok {
				delete(members, change.client)
				if len(members) == 0 {
					delete(h.rooms, change.roomID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			members, ok := h.rooms[msg.RoomID]
			if ok {
				data, err := json.Marshal(msg.Event)
				if err == nil {
					for client := range members {
						if !client.open {
							delete(members, client)
							continue
						}
						select {
						case client.send <- data:
						default:
							// A full buffer means the reader is gone or
							// stalled; cut the client loose everywhere so
							// later broadcasts never hit its closed channel.
							h.dropClientLocked(client)
						}
					}
					if len(members) == 0 {
						delete(h.rooms, msg.RoomID)
					}
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// dropClientLocked closes the client's send channel once and removes it
// from every room it joined. Callers hold h.mu.
func (h *Hub) dropClientLocked(client *Client) {
	if client.open {
		client.open = false
		close(client.send)
		wsConnectionsActive.Dec()
	}
	for roomID, members := range h.rooms {
		if members[client] {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

// BroadcastToRoom fans an event out to every member of a room, on this
// instance and, when Redis is configured, on every other one.
func (h *Hub) BroadcastToRoom(roomID string, event *Event) {
	wsEventsTotal.WithLabelValues(event.Type).Inc()
	h.broadcast <- &roomEvent{RoomID: roomID, Event: event}

	if h.redisClient != nil {
		data, err := json.Marshal(&roomEvent{RoomID: roomID, Event: event})
		if err == nil {
			h.redisClient.Publish(h.ctx, redisPubSubChannel, data) //nolint:errcheck
		}
	}
}

// BroadcastComment pushes a new_comment event to the ad's room.
func (h *Hub) BroadcastComment(comment *domain.Comment) {
	h.BroadcastToRoom(domain.RoomID(comment.AdvertisementID), &Event{
		Type:    domain.EventNewComment,
		Payload: comment,
	})
}

// BroadcastReply pushes a new_reply event to the ad's room.
func (h *Hub) BroadcastReply(advertisementID string, reply *domain.Reply) {
	h.BroadcastToRoom(domain.RoomID(advertisementID), &Event{
		Type:    domain.EventNewReply,
		Payload: reply,
	})
}

// subscribeRedis mirrors events published by other instances into the
// local rooms.
func (h *Hub) subscribeRedis() {
	log := logger.WithComponent("hub")
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var re roomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &re); err != nil {
				log.Debug().Err(err).Msg("dropping malformed redis event")
				continue
			}
			// Local fan-out only, never re-published.
			h.broadcast <- &re
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop shuts the hub down.
func (h *Hub) Stop() {
	h.cancel()
}
