// Package www serves the dashboard API. Entity reads flow through the query
// cache via the syncer; the gateway's own state (users, presets, notification
// log) is served from the store.
package www

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"maintdeck/engine"
)

type Handlers struct {
	engine    *engine.Engine
	sessions  *sessions.CookieStore
	jwtSecret []byte
	log       *logrus.Entry
	done      chan struct{}
}

// NewRouter builds the API router. The returned stop func terminates open
// notification streams before server shutdown.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	webCfg := eng.AppConfig().Web
	store := sessions.NewCookieStore([]byte(webCfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   eng.AppConfig().Production(),
	}

	h := &Handlers{
		engine:    eng,
		sessions:  store,
		jwtSecret: []byte(webCfg.JWTSecret),
		log:       logrus.WithField("component", "www"),
		done:      make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Post("/auth/login", h.login)
		r.Post("/auth/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)

			r.Get("/auth/me", h.me)

			r.Route("/events", func(r chi.Router) {
				r.Get("/", h.listEvents)
				r.With(h.requireWriter).Post("/", h.createEvent)
				r.Get("/{id}", h.getEvent)
				r.With(h.requireWriter).Put("/{id}", h.updateEvent)
				r.With(h.requireWriter).Delete("/{id}", h.deleteEvent)
				r.With(h.requireWriter).Post("/{id}/{action}", h.transitionEvent)
				r.Get("/{id}/sub-events", h.listSubEvents)
			})

			r.Route("/sub-events", func(r chi.Router) {
				r.With(h.requireWriter).Post("/", h.createSubEvent)
				r.Get("/{id}", h.getSubEvent)
				r.With(h.requireWriter).Put("/{id}", h.updateSubEvent)
				r.With(h.requireWriter).Delete("/{id}", h.deleteSubEvent)
				r.With(h.requireWriter).Post("/{id}/{action}", h.transitionSubEvent)
			})

			r.Route("/inspections", func(r chi.Router) {
				r.Get("/", h.listInspections)
				r.With(h.requireWriter).Post("/", h.createInspection)
				r.Get("/{id}", h.getInspection)
				r.With(h.requireWriter).Put("/{id}", h.updateInspection)
				r.With(h.requireWriter).Delete("/{id}", h.deleteInspection)
				r.With(h.requireWriter).Post("/{id}/{action}", h.transitionInspection)
				r.Get("/{id}/reports", h.listReports)
			})

			r.Route("/reports", func(r chi.Router) {
				r.With(h.requireWriter).Post("/", h.createReport)
				r.Get("/{id}", h.getReport)
				r.With(h.requireWriter).Put("/{id}", h.updateReport)
				r.With(h.requireWriter).Delete("/{id}", h.deleteReport)
			})

			r.Get("/equipment", h.searchEquipment)
			r.Get("/equipment/{tag}", h.getEquipment)

			r.Route("/presets", func(r chi.Router) {
				r.Get("/", h.listPresets)
				r.Post("/", h.savePreset)
				r.Delete("/", h.deletePreset)
			})

			r.Get("/notifications", h.notificationHistory)
			r.Get("/notifications/stream", h.notificationStream)
			r.Get("/notifications/log", h.notificationLog)

			r.Route("/cache", func(r chi.Router) {
				r.Get("/stats", h.cacheStats)
				r.With(h.requireWriter).Post("/invalidate", h.cacheInvalidate)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Get("/", h.listUsers)
				r.Post("/", h.createUser)
				r.Put("/{id}/active", h.setUserActive)
			})

			r.With(h.requireAdmin).Put("/settings/upstream", h.updateUpstreamSettings)
		})
	})

	return r, func() { close(h.done) }
}

func (h *Handlers) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	status := h.engine.Status()
	h.jsonOK(w, map[string]any{
		"status":    "ok",
		"upstream":  status.UpstreamConnected,
		"messaging": status.MessagingConnected,
	})
}
