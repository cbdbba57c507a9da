package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"tradenexus/internal/adapters/http/middleware"
	"tradenexus/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const heartbeatInterval = 30 * time.Second

// EventsHandler streams data and session changes to browsers
type EventsHandler struct {
	hub *services.EventHub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *services.EventHub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream opens a server-sent event stream
// @Summary Event stream
// @Description Server-sent events for data store changes and this browser's session changes
// @Tags Events
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /data/events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	clientID := uuid.NewString()
	profileID := middleware.ProfileID(c)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	client := h.hub.Register(clientID, profileID)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unregister(clientID)

		fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q}\n\n", clientID)
		if err := w.Flush(); err != nil {
			return
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case event, ok := <-client.Channel:
				if !ok {
					return
				}
				if err := writeStreamEvent(w, event); err != nil {
					return
				}

			case <-heartbeat.C:
				fmt.Fprintf(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}

// writeStreamEvent writes one event in text/event-stream framing and flushes
func writeStreamEvent(w *bufio.Writer, event services.StreamEvent) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
	return w.Flush()
}
