package query

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EventType for live feed messages
type EventType string

const (
	EventQueryRecorded  EventType = "query_recorded"
	EventQueryCompleted EventType = "query_completed"
)

const feedChannel = "console:query_events"

// Event is one live feed message
type Event struct {
	Type  EventType `json:"type"`
	Query *Query    `json:"query"`

	// SenderInstanceID prevents echoing events this instance published
	SenderInstanceID string `json:"sender_instance_id,omitempty"`
}

type connection struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans query events out to connected admin consoles. With Redis
// configured, events are relayed across instances via Pub/Sub; without it
// the hub serves local connections only.
type Hub struct {
	instanceID string
	redis      *redis.Client

	mu          sync.RWMutex
	connections map[*connection]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a live feed hub. redisClient may be nil.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		instanceID:  uuid.New().String(),
		redis:       redisClient,
		connections: make(map[*connection]bool),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run subscribes to the Redis feed channel and relays events until Stop.
// Must be started in its own goroutine.
func (h *Hub) Run() {
	if h.redis == nil {
		<-h.ctx.Done()
		return
	}

	pubsub := h.redis.Subscribe(h.ctx, feedChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Msg("malformed feed event")
				continue
			}
			if event.SenderInstanceID == h.instanceID {
				continue // already delivered locally
			}
			h.deliverLocal([]byte(msg.Payload))
		}
	}
}

// Stop shuts the hub down and closes all connections
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections {
		close(c.send)
		delete(h.connections, c)
	}
}

// Broadcast delivers an event to local connections and publishes it for
// other instances.
func (h *Hub) Broadcast(eventType EventType, q *Query) {
	event := Event{Type: eventType, Query: q, SenderInstanceID: h.instanceID}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal feed event")
		return
	}

	h.deliverLocal(payload)

	if h.redis != nil {
		if err := h.redis.Publish(context.Background(), feedChannel, payload).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to publish feed event")
		}
	}
}

func (h *Hub) deliverLocal(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop the event rather than block the feed
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the router middleware
	},
}

// ServeWS upgrades an admin console connection and streams feed events
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &connection{conn: ws, send: make(chan []byte, 64)}

	h.mu.Lock()
	h.connections[c] = true
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *connection) {
	defer c.conn.Close()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readPump discards inbound frames; the feed is one-way. It exists to
// notice closed connections.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.mu.Lock()
		if _, ok := h.connections[c]; ok {
			close(c.send)
			delete(h.connections, c)
		}
		h.mu.Unlock()
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
