package brackets

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Nikman800/GambaGame/metrics"
	"github.com/gorilla/websocket"
)

// Client is one websocket subscriber. It may sit in several bracket rooms.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string

	// guarded by Hub.mu
	rooms  map[string]struct{}
	closed bool
}

// WebSocketMessage is the envelope of every frame pushed to subscribers.
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// InboundMessage is what a subscriber may send on an open socket.
type InboundMessage struct {
	Action    string `json:"action"`
	BracketID string `json:"bracket_id"`
}

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"

	messageTypeError      = "error"
	messageTypeSubscribed = "subscribed"
	messageTypeLeft       = "unsubscribed"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

// Hub fans events out to the clients subscribed to a bracket room.
// Delivery is best effort: a client whose buffer is full misses the frame.
type Hub struct {
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	mu      sync.RWMutex
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// NewClient registers a client for conn. Conn may be nil in tests.
func (h *Hub) NewClient(conn *websocket.Conn, userID string) *Client {
	c := &Client{
		Hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
		UserID: userID,
		rooms:  make(map[string]struct{}),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.WebsocketConnections.Inc()
	return c
}

// JoinRoom subscribes c to roomID. Joining twice is a no-op.
func (h *Hub) JoinRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
	c.rooms[roomID] = struct{}{}
	h.logger.Debug("client joined room", slog.String("room", roomID), slog.Int("size", len(h.rooms[roomID])))
}

// LeaveRoom unsubscribes c from roomID. Leaving a room c is not in is a no-op.
func (h *Hub) LeaveRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, roomID)
}

func (h *Hub) leaveLocked(c *Client, roomID string) {
	delete(c.rooms, roomID)
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, roomID)
		h.logger.Debug("room closed as it's empty", slog.String("room", roomID))
	}
}

// Unregister drops c from every room and closes its send channel once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(c)
}

func (h *Hub) unregisterLocked(c *Client) {
	if c.closed {
		return
	}
	for roomID := range c.rooms {
		h.leaveLocked(c, roomID)
	}
	delete(h.clients, c)
	c.closed = true
	close(c.Send)
	metrics.WebsocketConnections.Dec()
}

// RoomSize returns the number of clients subscribed to roomID.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastToRoom sends message to every client in roomID without blocking
// and returns how many clients received it.
func (h *Hub) BroadcastToRoom(roomID string, message WebSocketMessage) int {
	message.RoomID = roomID
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal room message", slog.String("room", roomID), slog.Any("error", err))
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.rooms[roomID] {
		select {
		case client.Send <- messageBytes:
			delivered++
		default:
			metrics.BroadcastDrops.Inc()
			h.logger.Warn("client send buffer full, dropping message",
				slog.String("room", roomID), slog.String("type", message.Type))
		}
	}
	return delivered
}

// Publish fans the events of one committed transition out to the bracket's room.
func (h *Hub) Publish(bracketID string, events []Event) {
	for _, ev := range events {
		metrics.BroadcastsTotal.WithLabelValues(string(ev.Name)).Inc()
		h.BroadcastToRoom(bracketID, WebSocketMessage{Type: string(ev.Name), Payload: ev.Payload})
	}
}

// Close unregisters every client. Their write pumps then send a close frame and exit.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.unregisterLocked(c)
	}
}

// Handle applies one inbound frame from c.
func (c *Client) Handle(raw []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.BracketID == "" {
		c.reply(WebSocketMessage{Type: messageTypeError, Payload: map[string]string{"message": "expected {\"action\",\"bracket_id\"}"}})
		return
	}

	switch msg.Action {
	case ActionSubscribe:
		c.Hub.JoinRoom(c, msg.BracketID)
		c.reply(WebSocketMessage{Type: messageTypeSubscribed, RoomID: msg.BracketID})
	case ActionUnsubscribe:
		c.Hub.LeaveRoom(c, msg.BracketID)
		c.reply(WebSocketMessage{Type: messageTypeLeft, RoomID: msg.BracketID})
	default:
		c.reply(WebSocketMessage{Type: messageTypeError, Payload: map[string]string{"message": "unknown action " + msg.Action}})
	}
}

func (c *Client) reply(message WebSocketMessage) {
	b, err := json.Marshal(message)
	if err != nil {
		return
	}
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- b:
	default:
		metrics.BroadcastDrops.Inc()
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read failed", slog.String("user_id", c.UserID), slog.Any("error", err))
			}
			return
		}
		c.Handle(message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Debug("websocket write failed", slog.String("user_id", c.UserID), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
