package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"internboard/internal/app/notify"
	"internboard/internal/common"
)

type EventsHandler struct {
	bus notify.Bus
}

func NewEventsHandler(bus notify.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// Stream joins a room and relays its events as server-sent events. Joining
// takes no credentials: the channel carries display notifications only.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		common.RespondWithError(w, http.StatusBadRequest, "room query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		common.RespondWithError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := h.bus.Subscribe(r.Context(), room)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}
}
