package services

import (
	"sync"

	"go.uber.org/zap"
)

// clientBuffer is the number of events queued per stream before drops
const clientBuffer = 50

// StreamEvent is one server-sent event
type StreamEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// StreamClient is a connected event stream of one browser profile
type StreamClient struct {
	ID        string
	ProfileID string
	Channel   chan StreamEvent
}

// EventHub fans data and session events out to connected streams.
// Data events go to everyone; session events only to their profile.
type EventHub struct {
	log *zap.Logger

	mu      sync.RWMutex
	clients map[string]*StreamClient

	unsubscribe []func()
}

// NewEventHub creates a hub fed by the data store and session service
func NewEventHub(store *DataStore, sessions *SessionService, log *zap.Logger) *EventHub {
	h := &EventHub{
		log:     log,
		clients: make(map[string]*StreamClient),
	}

	h.unsubscribe = append(h.unsubscribe,
		store.Subscribe(func(e DataEvent) {
			h.Broadcast(StreamEvent{Event: "data", Data: e})
		}),
		sessions.Subscribe(func(e SessionEvent) {
			h.SendToProfile(e.ProfileID, StreamEvent{Event: "session", Data: e})
		}),
	)
	return h
}

// Register adds a stream and returns it
func (h *EventHub) Register(id, profileID string) *StreamClient {
	client := &StreamClient{
		ID:        id,
		ProfileID: profileID,
		Channel:   make(chan StreamEvent, clientBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = client
	h.log.Debug("stream registered", zap.String("client_id", id), zap.Int("total", len(h.clients)))
	return client
}

// Unregister removes a stream and closes its channel
func (h *EventHub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[id]; ok {
		close(client.Channel)
		delete(h.clients, id)
		h.log.Debug("stream unregistered", zap.String("client_id", id), zap.Int("total", len(h.clients)))
	}
}

// Broadcast sends an event to every stream
func (h *EventHub) Broadcast(event StreamEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		h.send(client, event)
	}
}

// SendToProfile sends an event to the streams of one profile
func (h *EventHub) SendToProfile(profileID string, event StreamEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.ProfileID == profileID {
			h.send(client, event)
		}
	}
}

// ClientCount returns the number of connected streams
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches the hub from its sources and ends every stream
func (h *EventHub) Close() {
	for _, unsubscribe := range h.unsubscribe {
		unsubscribe()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.Channel)
		delete(h.clients, id)
	}
}

// send must be called with h.mu held
func (h *EventHub) send(client *StreamClient, event StreamEvent) {
	select {
	case client.Channel <- event:
	default:
		h.log.Warn("stream buffer full, dropping event",
			zap.String("client_id", client.ID), zap.String("event", event.Event))
	}
}
