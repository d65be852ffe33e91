package bridge

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Satellite topics.
const (
	TopicFilterInput      = "filter-input"
	TopicFilterInputEnter = "filter-input-enter"
	// TopicTrayChanged is published by the host after every redraw.
	TopicTrayChanged      = "tray-changed"
	// TopicTrayClick carries a right-click on the tray handle as {x, y}.
	TopicTrayClick        = "tray-click"
)

// Message actions.
const (
	ActionPublish     = "publish"
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// Message is one frame on the satellite bus.
type Message struct {
	Action string          `json:"action,omitempty"`
	Topic  string          `json:"topic"`
	Data   json.RawMessage `json:"data,omitempty"`
	// Sender is filled in by the hub.
	Sender string `json:"sender,omitempty"`
}

// Text decodes Data as a JSON string, returning "" when it is not one.
func (m Message) Text() string {
	var s string
	if err := json.Unmarshal(m.Data, &s); err != nil {
		return ""
	}
	return s
}

// Hub is a topic bus. Satellites connect over websocket and publish or
// subscribe; in-process handlers subscribe with Subscribe.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.RWMutex
	clients  map[uuid.UUID]*hubClient
	handlers map[string][]func(Message)
	closed   bool
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Satellites are local pages and apps with arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:   logger.With("component", "hub"),
		clients:  make(map[uuid.UUID]*hubClient),
		handlers: make(map[string][]func(Message)),
	}
}

// Subscribe registers an in-process handler for topic. Handlers run on the
// publishing goroutine.
func (h *Hub) Subscribe(topic string, fn func(Message)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[topic] = append(h.handlers[topic], fn)
}

// Publish delivers msg to every handler and every satellite subscribed to
// its topic, except the satellite that sent it.
func (h *Hub) Publish(msg Message) {
	msg.Action = ActionPublish
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", "topic", msg.Topic, "error", err)
		return
	}

	h.mu.RLock()
	handlers := slices.Clone(h.handlers[msg.Topic])
	var targets []*hubClient
	for _, c := range h.clients {
		if c.id.String() != msg.Sender && c.subscribed(msg.Topic) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping slow satellite", "client", c.id)
			h.drop(c)
		}
	}
	for _, fn := range handlers {
		fn(msg)
	}
}

// Clients returns the number of connected satellites.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every satellite.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*hubClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.drop(c)
	}
}

// ServeHTTP upgrades the request and serves one satellite.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Websocket upgrade failed", "error", err)
		return
	}
	c := &hubClient{
		id:     uuid.New(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		topics: make(map[string]struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c.id] = c
	h.mu.Unlock()
	h.logger.Info("Satellite connected", "client", c.id, "remote", r.RemoteAddr)

	go c.writePump()
	h.readPump(c)
}

func (h *Hub) readPump(c *hubClient) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Satellite read failed", "client", c.id, "error", err)
			}
			return
		}
		switch msg.Action {
		case ActionSubscribe:
			c.setTopic(msg.Topic, true)
		case ActionUnsubscribe:
			c.setTopic(msg.Topic, false)
		case ActionPublish, "":
			msg.Sender = c.id.String()
			h.Publish(msg)
		default:
			h.logger.Warn("Unknown satellite action", "client", c.id, "action", msg.Action)
		}
	}
}

func (h *Hub) drop(c *hubClient) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()
	if ok {
		c.close()
		h.logger.Info("Satellite disconnected", "client", c.id)
	}
}

type hubClient struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	topics map[string]struct{}
}

func (c *hubClient) subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.topics[topic]
	return ok
}

func (c *hubClient) setTopic(topic string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.topics[topic] = struct{}{}
	} else {
		delete(c.topics, topic)
	}
}

func (c *hubClient) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}
