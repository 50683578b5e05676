// Package engine wires the gateway together: the upstream client, the query
// cache, the entity bindings, the change-notice consumer and the notification
// center. The web layer talks to the engine, never to the parts directly.
package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"maintdeck/cache"
	"maintdeck/config"
	"maintdeck/messaging"
	"maintdeck/notify"
	"maintdeck/store"
	"maintdeck/syncer"
	"maintdeck/upstream"
)

type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	Upstream   *upstream.Client
	Cache      *cache.Cache
	Syncer     *syncer.Syncer
	Notify     *notify.Center
	Snapshots  cache.SnapshotStore
}

type Engine struct {
	cfg        *config.Config
	configPath string
	db         *store.DB
	upstream   *upstream.Client
	cache      *cache.Cache
	syncer     *syncer.Syncer
	notify     *notify.Center
	snapshots  cache.SnapshotStore
	consumer   messaging.Consumer
	log        *logrus.Entry

	stopChan          chan struct{}
	upstreamConnected bool
	msgConnected      bool
}

func New(c Config) *Engine {
	return &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		db:         c.DB,
		upstream:   c.Upstream,
		cache:      c.Cache,
		syncer:     c.Syncer,
		notify:     c.Notify,
		snapshots:  c.Snapshots,
		log:        logrus.WithField("component", "engine"),
		stopChan:   make(chan struct{}),
	}
}

func (e *Engine) Start() error {
	// Serve last-known data immediately; staleness forces revalidation.
	e.syncer.WarmFromSnapshots(context.Background())

	consumer, err := messaging.New(&e.cfg.Messaging, e.handleChange)
	if err != nil {
		return err
	}
	if consumer != nil {
		if err := consumer.Start(); err != nil {
			return err
		}
		e.consumer = consumer
		e.log.WithField("backend", e.cfg.Messaging.Backend).Info("change-notice consumer started")
	} else {
		e.log.Info("push invalidation disabled, relying on staleness timers")
	}

	e.cache.StartGC(time.Minute)
	e.pruneNotificationLog()

	e.checkConnectionStatus()
	go e.connectionHealthLoop()

	e.log.Info("started")
	return nil
}

func (e *Engine) Stop() {
	close(e.stopChan)
	if e.consumer != nil {
		e.consumer.Close()
	}
	e.cache.Stop()
	e.log.Info("stopped")
}

// Accessors for the web layer.
func (e *Engine) DB() *store.DB              { return e.db }
func (e *Engine) Cache() *cache.Cache        { return e.cache }
func (e *Engine) Syncer() *syncer.Syncer     { return e.syncer }
func (e *Engine) Notify() *notify.Center     { return e.notify }
func (e *Engine) Upstream() *upstream.Client { return e.upstream }
func (e *Engine) AppConfig() *config.Config  { return e.cfg }
func (e *Engine) ConfigPath() string         { return e.configPath }

// handleChange applies one backend change notice to the cache.
func (e *Engine) handleChange(env messaging.Envelope) {
	e.log.WithFields(logrus.Fields{
		"entity": env.Entity,
		"id":     env.ID,
		"action": env.Action,
	}).Debug("change notice")
	e.syncer.InvalidateEntity(env.Entity, env.ID, env.ParentID)
}

// ReconfigureUpstream applies upstream config changes live.
func (e *Engine) ReconfigureUpstream() {
	e.upstream.Reconfigure(e.cfg.Upstream.BaseURL, e.cfg.Upstream.Timeout)
	e.log.WithField("base_url", e.cfg.Upstream.BaseURL).Info("upstream reconfigured")
	e.checkConnectionStatus()
}

// SnapshotFlusher is implemented by snapshot stores that can drop persisted
// entries under a key prefix.
type SnapshotFlusher interface {
	Flush(ctx context.Context, prefix string) error
}

// FlushSnapshots drops persisted snapshots under prefix, when the configured
// store supports it. Invalidating the in-memory cache alone would leave a
// restart free to warm from data an operator just threw away.
func (e *Engine) FlushSnapshots(ctx context.Context, prefix string) error {
	f, ok := e.snapshots.(SnapshotFlusher)
	if !ok {
		return nil
	}
	return f.Flush(ctx, prefix)
}

func (e *Engine) checkConnectionStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := e.upstream.Ping(ctx); err == nil {
		if !e.upstreamConnected {
			e.upstreamConnected = true
			e.notify.Info("Backend connected", "maintenance API reachable")
		}
		// A reachable backend with an expired token still breaks every
		// fetch; surface that as an auth error (deduped by the center).
		if e.upstream.HasToken() {
			if _, err := e.upstream.Me(ctx); upstream.IsAuth(err) {
				e.notify.Error("Backend authentication failed", err)
			}
		}
	} else {
		if e.upstreamConnected {
			e.upstreamConnected = false
			e.notify.Warning("Backend unreachable", err.Error())
		}
	}

	if e.consumer == nil {
		return
	}
	if e.consumer.Connected() {
		if !e.msgConnected {
			e.msgConnected = true
			e.notify.Info("Live updates connected", "push invalidation active")
		}
	} else {
		if e.msgConnected {
			e.msgConnected = false
			e.notify.Warning("Live updates lost", "falling back to staleness timers")
		}
	}
}

// notificationRetention bounds the persisted notification log.
const notificationRetention = 30 * 24 * time.Hour

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	prune := time.NewTicker(6 * time.Hour)
	defer prune.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		case <-prune.C:
			e.pruneNotificationLog()
		}
	}
}

func (e *Engine) pruneNotificationLog() {
	if err := e.db.PruneNotifications(notificationRetention); err != nil {
		e.log.WithError(err).Warn("notification log prune failed")
	}
}

// Status is the connection snapshot served by the diagnostics API.
type Status struct {
	UpstreamConnected  bool              `json:"upstream_connected"`
	MessagingBackend   string            `json:"messaging_backend,omitempty"`
	MessagingConnected bool              `json:"messaging_connected"`
	CacheEntries       []cache.EntryStat `json:"cache_entries"`
}

func (e *Engine) Status() Status {
	s := Status{
		UpstreamConnected: e.upstreamConnected,
		MessagingBackend:  e.cfg.Messaging.Backend,
		CacheEntries:      e.cache.Stats(),
	}
	if e.consumer != nil {
		s.MessagingConnected = e.consumer.Connected()
	}
	return s
}
