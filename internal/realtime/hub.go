// Package realtime fans change events out to websocket subscribers.
package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Client represents a single subscriber connection.
// Send must not block; the network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// AllTopics subscribes a client to every topic.
const AllTopics = ""

// Hub maintains active subscriptions per topic and broadcasts events to them.
type Hub struct {
	mu             sync.RWMutex
	topicToClients map[string]map[Client]struct{}
	log            *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		topicToClients: make(map[string]map[Client]struct{}),
		log:            log.Named("realtime"),
	}
}

// Subscribe adds a client under a topic.
func (h *Hub) Subscribe(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topicToClients[topic]; !ok {
		h.topicToClients[topic] = make(map[Client]struct{})
	}
	h.topicToClients[topic][client] = struct{}{}
}

// Unsubscribe removes a client; if a topic has no more clients, cleans up map.
func (h *Hub) Unsubscribe(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.topicToClients[topic]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.topicToClients, topic)
		}
	}
}

// Subscribers reports how many clients listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topicToClients[topic])
}

// Broadcast sends a message to the clients of topic and to those subscribed to all topics.
func (h *Hub) Broadcast(topic string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	dropped := 0
	for c := range h.topicToClients[topic] {
		if !c.Send(message) {
			dropped++
		}
	}
	if topic != AllTopics {
		for c := range h.topicToClients[AllTopics] {
			if !c.Send(message) {
				dropped++
			}
		}
	}
	if dropped > 0 {
		// the ws handler unsubscribes slow or closed clients on its side
		h.log.Debug("broadcast dropped", zap.String("topic", topic), zap.Int("clients", dropped))
	}
}
