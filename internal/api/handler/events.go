package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kpane/banktally/internal/api/middleware"
	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/realtime"
)

// Time between keepalive comments on the event stream
const keepalivePeriod = 30 * time.Second

// EventsHandler streams a room's realtime traffic to the caller as
// server-sent events: "change" events for participant record changes and
// "control" events for directed messages addressed to the caller.
type EventsHandler struct {
	bus    realtime.Bus
	logger *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(bus realtime.Bus, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		bus:    bus,
		logger: logger.With(slog.String("component", "events")),
	}
}

// Stream handles GET /api/v1/rooms/{code}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	id := middleware.MustGetIdentity(r.Context())
	code := model.RoomCode(mux.Vars(r)["code"])

	changes, cancelChanges, err := h.bus.SubscribeChanges(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer cancelChanges()

	control, cancelControl, err := h.bus.SubscribeControl(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer cancelControl()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Initial event so clients know the stream is live
	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(keepalivePeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-changes:
			if !ok {
				return
			}
			if err := writeSSE(w, flusher, "change", event); err != nil {
				return
			}

		case msg, ok := <-control:
			if !ok {
				return
			}
			// Directed messages go only to the addressed identity
			if msg.TargetIdentity != id {
				continue
			}
			if err := writeSSE(w, flusher, "control", msg); err != nil {
				return
			}

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// writeSSE writes one JSON-payload SSE event
func writeSSE(w http.ResponseWriter, flusher http.Flusher, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
