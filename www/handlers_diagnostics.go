package www

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"maintdeck/cache"
)

func (h *Handlers) cacheStats(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Status())
}

type invalidateRequest struct {
	// Key is a prefix path like "events" or "inspections/detail/42".
	Key string `json:"key"`
}

func (h *Handlers) cacheInvalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := decodeBody(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Key = strings.Trim(req.Key, "/")
	if req.Key == "" {
		h.jsonError(w, "key is required", http.StatusBadRequest)
		return
	}
	key := cache.NewKey(strings.Split(req.Key, "/")[0], strings.Split(req.Key, "/")[1:]...)
	h.engine.Cache().Invalidate(key)
	if err := h.engine.FlushSnapshots(r.Context(), key.String()); err != nil {
		h.log.WithField("key", key.String()).WithError(err).Warn("snapshot flush failed")
	}
	h.log.WithField("key", key.String()).Info("manual cache invalidation")
	h.jsonOK(w, map[string]string{"status": "invalidated", "key": key.String()})
}

type upstreamSettingsRequest struct {
	BaseURL string `json:"baseUrl"`
	Timeout string `json:"timeout"` // Go duration string, e.g. "15s"
}

// updateUpstreamSettings repoints the gateway at a different backend without
// a restart, e.g. when the maintenance API moves during a failover.
func (h *Handlers) updateUpstreamSettings(w http.ResponseWriter, r *http.Request) {
	var req upstreamSettingsRequest
	if err := decodeBody(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.BaseURL == "" && req.Timeout == "" {
		h.jsonError(w, "baseUrl or timeout is required", http.StatusBadRequest)
		return
	}

	cfg := h.engine.AppConfig()
	if req.BaseURL != "" {
		u, err := url.Parse(req.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			h.jsonError(w, "baseUrl must be an absolute http(s) URL", http.StatusBadRequest)
			return
		}
		cfg.Upstream.BaseURL = req.BaseURL
	}
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d <= 0 {
			h.jsonError(w, "timeout must be a positive duration", http.StatusBadRequest)
			return
		}
		cfg.Upstream.Timeout = d
	}

	h.engine.ReconfigureUpstream()
	h.jsonOK(w, map[string]string{
		"status":   "reconfigured",
		"base_url": cfg.Upstream.BaseURL,
		"timeout":  cfg.Upstream.Timeout.String(),
	})
}
