// Package realtime streams announcement snapshots to feed subscribers over
// WebSocket, with Redis pub/sub fan-out across instances. Delivery is
// last-write-wins per announcement; no global ordering is promised.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait (seconds) drive the heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Publisher publishes feed events to Redis for cross-instance broadcast.
type Publisher interface {
	PublishFeedEvent(eventID uuid.UUID, event string, payload []byte) error
}

// Subscriber subscribes to an event's feed channel and invokes handler for
// incoming messages.
type Subscriber interface {
	SubscribeFeed(eventID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains event_id -> set of connections and broadcasts feed messages.
// The Redis subscription for an event lives exactly as long as its local
// subscriber set: started by the first client, canceled by the last to leave.
type Hub struct {
	// eventID -> map[clientID]*Client
	events map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func() // cancel Redis subscription per event
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// NewHub creates a new feed hub.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		events: make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to an event feed. Starts the Redis subscription for
// this event if it is the first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.events[c.EventID] == nil {
		h.events[c.EventID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeFeed(c.EventID, func(event string, payload []byte) {
				h.Broadcast(c.EventID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.EventID] = cancel
			}
		}
	}
	h.events[c.EventID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("feed client joined", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// Unregister removes a client from an event feed. Cancels the Redis
// subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.events[c.EventID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.events, c.EventID)
			if cancel, ok := h.subs[c.EventID]; ok {
				cancel()
				delete(h.subs, c.EventID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("feed client left", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// Broadcast sends a message to all local clients on an event feed.
func (h *Hub) Broadcast(eventID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	// Snapshot under the lock; the map must not be ranged while Register and
	// Unregister mutate it from connection goroutines.
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.events[eventID]))
	for _, c := range h.events[eventID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish publishes to Redis only, so the subscriber callback performs the
// broadcast exactly once for every instance, including this one. Falls back to
// a local broadcast when no publisher is wired.
func (h *Hub) Publish(eventID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		_ = h.pub.PublishFeedEvent(eventID, event, data)
		return
	}
	h.Broadcast(eventID, event, payload)
}

// SubscriberCount returns the number of connected feed clients for an event.
func (h *Hub) SubscriberCount(eventID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events[eventID])
}
