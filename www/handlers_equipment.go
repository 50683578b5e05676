package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) searchEquipment(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("search")
	writeQuery(h, w, h.engine.Syncer().SearchEquipment(r.Context(), keyword))
}

func (h *Handlers) getEquipment(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		h.jsonError(w, "invalid tag", http.StatusBadRequest)
		return
	}
	writeQuery(h, w, h.engine.Syncer().Equipment(r.Context(), tag))
}
