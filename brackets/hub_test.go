package brackets

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func readMessage(t *testing.T, c *Client) WebSocketMessage {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	default:
		t.Fatal("expected a queued message")
		return WebSocketMessage{}
	}
}

func TestHubRooms(t *testing.T) {
	h := newTestHub()
	c1 := h.NewClient(nil, "u1")
	c2 := h.NewClient(nil, "u2")

	h.JoinRoom(c1, "b1")
	h.JoinRoom(c1, "b1")
	h.JoinRoom(c2, "b1")
	h.JoinRoom(c2, "b2")
	assert.Equal(t, 2, h.RoomSize("b1"))
	assert.Equal(t, 1, h.RoomSize("b2"))

	assert.Equal(t, 2, h.BroadcastToRoom("b1", WebSocketMessage{Type: "ping"}))
	msg := readMessage(t, c1)
	assert.Equal(t, "ping", msg.Type)
	assert.Equal(t, "b1", msg.RoomID)
	readMessage(t, c2)
	assert.Len(t, c1.Send, 0)

	h.LeaveRoom(c1, "b1")
	h.LeaveRoom(c1, "b1")
	assert.Equal(t, 1, h.RoomSize("b1"))

	h.Unregister(c2)
	h.Unregister(c2)
	assert.Equal(t, 0, h.RoomSize("b1"))
	assert.Equal(t, 0, h.RoomSize("b2"))
	_, open := <-c2.Send
	assert.False(t, open)

	h.JoinRoom(c2, "b1")
	assert.Equal(t, 0, h.RoomSize("b1"))
}

func TestHubDropsForSlowClients(t *testing.T) {
	h := newTestHub()
	slow := h.NewClient(nil, "slow")
	fast := h.NewClient(nil, "fast")
	h.JoinRoom(slow, "b1")
	h.JoinRoom(fast, "b1")

	for i := 0; i < sendBufferSize; i++ {
		h.BroadcastToRoom("b1", WebSocketMessage{Type: "fill"})
		<-fast.Send
	}

	assert.Equal(t, 1, h.BroadcastToRoom("b1", WebSocketMessage{Type: "overflow"}))
	assert.Equal(t, "overflow", readMessage(t, fast).Type)
	assert.Len(t, slow.Send, sendBufferSize)
}

func TestHubPublish(t *testing.T) {
	h := newTestHub()
	c := h.NewClient(nil, "u1")
	h.JoinRoom(c, "b1")

	b := mustStart(t, newBracket("A", "B"))
	_, events, err := StartMatch(b)
	require.NoError(t, err)

	h.Publish("b1", events)
	h.Publish("other", events)

	msg := readMessage(t, c)
	assert.Equal(t, string(EventMatchStarted), msg.Type)
	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "b1", payload["bracket_id"])
	assert.Len(t, c.Send, 0)
}

func TestClientHandle(t *testing.T) {
	h := newTestHub()
	c := h.NewClient(nil, "u1")

	c.Handle([]byte(`{"action":"subscribe","bracket_id":"b9"}`))
	assert.Equal(t, 1, h.RoomSize("b9"))
	assert.Equal(t, messageTypeSubscribed, readMessage(t, c).Type)

	c.Handle([]byte(`{"action":"unsubscribe","bracket_id":"b9"}`))
	assert.Equal(t, 0, h.RoomSize("b9"))
	assert.Equal(t, messageTypeLeft, readMessage(t, c).Type)

	c.Handle([]byte(`{"action":"dance","bracket_id":"b9"}`))
	assert.Equal(t, messageTypeError, readMessage(t, c).Type)

	c.Handle([]byte(`not json`))
	assert.Equal(t, messageTypeError, readMessage(t, c).Type)
}

func TestHubConcurrentMembership(t *testing.T) {
	h := newTestHub()
	clients := make([]*Client, 20)
	for i := range clients {
		clients[i] = h.NewClient(nil, "u")
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			h.JoinRoom(c, "b1")
			h.BroadcastToRoom("b1", WebSocketMessage{Type: "x"})
			h.Unregister(c)
		}(c)
	}
	wg.Wait()

	assert.Equal(t, 0, h.RoomSize("b1"))
}

func TestHubClose(t *testing.T) {
	h := newTestHub()
	c := h.NewClient(nil, "u1")
	h.JoinRoom(c, "b1")

	h.Close()

	assert.Equal(t, 0, h.RoomSize("b1"))
	_, open := <-c.Send
	assert.False(t, open)
}
