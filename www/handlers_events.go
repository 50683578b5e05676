package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"maintdeck/syncer"
)

func eventFiltersFromQuery(r *http.Request) syncer.EventFilters {
	q := r.URL.Query()
	return syncer.EventFilters{
		Status:    q.Get("status"),
		EventType: q.Get("eventType"),
		FromDate:  q.Get("fromDate"),
		ToDate:    q.Get("toDate"),
		Search:    q.Get("search"),
	}
}

func (h *Handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	f := eventFiltersFromQuery(r)
	if r.URL.Query().Get("refresh") == "true" {
		writeQuery(h, w, h.engine.Syncer().RefetchEvents(r.Context(), f))
		return
	}
	writeQuery(h, w, h.engine.Syncer().Events(r.Context(), f))
}

func (h *Handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	writeQuery(h, w, h.engine.Syncer().Event(r.Context(), id))
}

func (h *Handlers) createEvent(w http.ResponseWriter, r *http.Request) {
	var in syncer.CreateEventInput
	if err := decodeBody(r, &in); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	event, err := h.engine.Syncer().CreateEvent(r.Context(), in)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, event)
}

func (h *Handlers) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var in syncer.UpdateEventInput
	if err := decodeBody(r, &in); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	event, err := h.engine.Syncer().UpdateEvent(r.Context(), id, in)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, event)
}

func (h *Handlers) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.engine.Syncer().DeleteEvent(r.Context(), id); err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "deleted"})
}

func (h *Handlers) transitionEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	action := syncer.EventAction(chi.URLParam(r, "action"))
	event, err := h.engine.Syncer().TransitionEvent(r.Context(), id, action)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, event)
}

func (h *Handlers) listSubEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	writeQuery(h, w, h.engine.Syncer().SubEvents(r.Context(), id))
}

func (h *Handlers) getSubEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	writeQuery(h, w, h.engine.Syncer().SubEvent(r.Context(), id))
}

func (h *Handlers) createSubEvent(w http.ResponseWriter, r *http.Request) {
	var in syncer.CreateSubEventInput
	if err := decodeBody(r, &in); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sub, err := h.engine.Syncer().CreateSubEvent(r.Context(), in)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, sub)
}

func (h *Handlers) updateSubEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var in syncer.UpdateSubEventInput
	if err := decodeBody(r, &in); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sub, err := h.engine.Syncer().UpdateSubEvent(r.Context(), id, in)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, sub)
}

func (h *Handlers) deleteSubEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.engine.Syncer().DeleteSubEvent(r.Context(), id); err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "deleted"})
}

func (h *Handlers) transitionSubEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	action := syncer.EventAction(chi.URLParam(r, "action"))
	sub, err := h.engine.Syncer().TransitionSubEvent(r.Context(), id, action)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, sub)
}
