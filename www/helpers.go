package www

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"maintdeck/syncer"
	"maintdeck/upstream"
)

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// queryEnvelope is the read response shape. Stale data is still served when
// the background refresh failed; the error rides along for the client to show.
type queryEnvelope struct {
	Data      any        `json:"data"`
	Loading   bool       `json:"loading,omitempty"`
	Stale     bool       `json:"stale,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func writeQuery[T any](h *Handlers, w http.ResponseWriter, res syncer.QueryResult[T]) {
	env := queryEnvelope{
		Data:    res.Data,
		Loading: res.Loading,
		Stale:   res.Stale,
	}
	if !res.UpdatedAt.IsZero() {
		t := res.UpdatedAt
		env.UpdatedAt = &t
	}
	if res.Err != nil {
		env.Error = res.Err.Error()
		if env.UpdatedAt == nil {
			// Nothing cached to serve: the error is the response.
			h.jsonError(w, res.Err.Error(), errorStatus(res.Err))
			return
		}
	}
	h.jsonOK(w, env)
}

// writeMutationError maps a failed write to a response status.
func (h *Handlers) writeMutationError(w http.ResponseWriter, err error) {
	h.jsonError(w, err.Error(), errorStatus(err))
}

func errorStatus(err error) int {
	if apiErr, ok := upstream.AsAPIError(err); ok && apiErr.Status > 0 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func queryInt64(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return n
}

func queryBoolPtr(r *http.Request, name string) *bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
