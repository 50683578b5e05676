package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"maintdeck/syncer"
)

func (h *Handlers) listInspections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := syncer.InspectionFilters{
		All:        q.Get("all") == "true",
		EventID:    queryInt64(r, "eventId"),
		SubEventID: queryInt64(r, "subEventId"),
		Status:     q.Get("status"),
		IsPlanned:  queryBoolPtr(r, "isPlanned"),
	}
	writeQuery(h, w, h.engine.Syncer().Inspections(r.Context(), f))
}

func (h *Handlers) getInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	writeQuery(h, w, h.engine.Syncer().Inspection(r.Context(), id))
}

func (h *Handlers) createInspection(w http.ResponseWriter, r *http.Request) {
	var in syncer.CreateInspectionInput
	if err := decodeBody(r, &in); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	insp, err := h.engine.Syncer().CreateInspection(r.Context(), in)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, insp)
}

func (h *Handlers) updateInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var in syncer.UpdateInspectionInput
	if err := decodeBody(r, &in); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	insp, err := h.engine.Syncer().UpdateInspection(r.Context(), id, in)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, insp)
}

func (h *Handlers) deleteInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.engine.Syncer().DeleteInspection(r.Context(), id); err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "deleted"})
}

func (h *Handlers) transitionInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	action := syncer.InspectionAction(chi.URLParam(r, "action"))
	insp, err := h.engine.Syncer().TransitionInspection(r.Context(), id, action)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, insp)
}

func (h *Handlers) listReports(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	writeQuery(h, w, h.engine.Syncer().Reports(r.Context(), id))
}

func (h *Handlers) getReport(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	writeQuery(h, w, h.engine.Syncer().Report(r.Context(), id))
}

func (h *Handlers) createReport(w http.ResponseWriter, r *http.Request) {
	var in syncer.CreateReportInput
	if err := decodeBody(r, &in); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	report, err := h.engine.Syncer().CreateReport(r.Context(), in)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, report)
}

func (h *Handlers) updateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var in syncer.UpdateReportInput
	if err := decodeBody(r, &in); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	report, err := h.engine.Syncer().UpdateReport(r.Context(), id, in)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, report)
}

func (h *Handlers) deleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	// The delete response carries nothing, so the owning inspection must
	// come from the caller; without it the reports list cannot be refreshed.
	inspectionID := queryInt64(r, "inspectionId")
	if inspectionID <= 0 {
		h.jsonError(w, "inspectionId is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.Syncer().DeleteReport(r.Context(), id, inspectionID); err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "deleted"})
}
