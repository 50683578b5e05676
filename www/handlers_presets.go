package www

import (
	"encoding/json"
	"errors"
	"net/http"

	"maintdeck/store"
)

func (h *Handlers) listPresets(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		h.jsonError(w, "page is required", http.StatusBadRequest)
		return
	}
	presets, err := h.engine.DB().ListPresets(currentUser(r).ID, page)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if presets == nil {
		presets = []*store.FilterPreset{}
	}
	h.jsonOK(w, presets)
}

type savePresetRequest struct {
	Page    string          `json:"page"`
	Name    string          `json:"name"`
	Filters json.RawMessage `json:"filters"`
}

func (h *Handlers) savePreset(w http.ResponseWriter, r *http.Request) {
	var req savePresetRequest
	if err := decodeBody(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Page == "" || req.Name == "" {
		h.jsonError(w, "page and name are required", http.StatusBadRequest)
		return
	}
	preset := &store.FilterPreset{
		UserID:  currentUser(r).ID,
		Page:    req.Page,
		Name:    req.Name,
		Filters: req.Filters,
	}
	if err := h.engine.DB().SavePreset(preset); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.jsonOK(w, preset)
}

func (h *Handlers) deletePreset(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, name := q.Get("page"), q.Get("name")
	if page == "" || name == "" {
		h.jsonError(w, "page and name are required", http.StatusBadRequest)
		return
	}
	err := h.engine.DB().DeletePreset(currentUser(r).ID, page, name)
	if errors.Is(err, store.ErrPresetNotFound) {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]string{"status": "deleted"})
}
