package www

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"maintdeck/store"
)

func (h *Handlers) notificationHistory(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Notify().History())
}

func (h *Handlers) notificationLog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.engine.DB().ListNotifications(limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*store.NotificationRecord{}
	}
	h.jsonOK(w, records)
}

// notificationStream pushes live notifications over SSE.
func (h *Handlers) notificationStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, unsubscribe := h.engine.Notify().Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case n := <-ch:
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
