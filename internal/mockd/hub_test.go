package mockd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldads/adwatch/internal/domain"
)

func waitForHub(t *testing.T, hub *Hub, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		ok := cond()
		hub.mu.RUnlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("hub did not reach expected state")
}

func TestEvictedClientIsRemovedFromAllRooms(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)

	// An unbuffered send channel with no reader stalls on the first
	// fan-out, so the hub evicts this client immediately.
	slow := &Client{hub: hub, send: make(chan []byte)}
	healthy := &Client{hub: hub, send: make(chan []byte, 8)}

	hub.Register(slow)
	hub.Register(healthy)
	waitForHub(t, hub, func() bool { return slow.open && healthy.open })
	hub.membership <- &roomChange{client: slow, roomID: "ad:a", join: true}
	hub.membership <- &roomChange{client: slow, roomID: "ad:b", join: true}
	hub.membership <- &roomChange{client: healthy, roomID: "ad:b", join: true}
	waitForHub(t, hub, func() bool {
		return len(hub.rooms["ad:a"]) == 1 && len(hub.rooms["ad:b"]) == 2
	})

	hub.BroadcastToRoom("ad:a", &Event{Type: domain.EventNewComment})
	waitForHub(t, hub, func() bool { return len(hub.rooms["ad:a"]) == 0 })

	// The evicted client was still a member of ad:b when its channel
	// closed. This broadcast must skip it and keep the loop alive.
	hub.BroadcastToRoom("ad:b", &Event{Type: domain.EventNewReply})

	select {
	case data := <-healthy.send:
		assert.Contains(t, string(data), domain.EventNewReply)
	case <-time.After(time.Second):
		t.Fatal("hub stopped fanning out after eviction")
	}

	select {
	case _, open := <-slow.send:
		require.False(t, open, "evicted client's send channel should be closed")
	default:
		t.Fatal("evicted client's send channel was not closed")
	}

	waitForHub(t, hub, func() bool {
		members := hub.rooms["ad:b"]
		return len(members) == 1 && !members[slow]
	})
}

func TestClientKeepaliveConfigurable(t *testing.T) {
	hub := NewHub(nil)

	c := NewClient(hub, nil, 0)
	assert.Equal(t, defaultPongWait, c.pongWait)

	c = NewClient(hub, nil, 5*time.Second)
	assert.Equal(t, 5*time.Second, c.pongWait)
}

func TestUnregisterTwiceClosesSendOnce(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(client)
	waitForHub(t, hub, func() bool { return client.open })
	hub.membership <- &roomChange{client: client, roomID: "ad:a", join: true}
	waitForHub(t, hub, func() bool { return len(hub.rooms["ad:a"]) == 1 })

	hub.unregister <- client
	hub.unregister <- client
	waitForHub(t, hub, func() bool { return len(hub.rooms) == 0 && !client.open })
}
