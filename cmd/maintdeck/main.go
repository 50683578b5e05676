package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"maintdeck/cache"
	"maintdeck/config"
	"maintdeck/engine"
	"maintdeck/notify"
	"maintdeck/snapshot"
	"maintdeck/store"
	"maintdeck/syncer"
	"maintdeck/upstream"
	"maintdeck/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "maintdeck.yaml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *showVersion {
		fmt.Println("maintdeck", Version)
		return
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log := logrus.WithField("component", "main")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Infof("database open (%s)", cfg.Database.Driver)

	ensureAdmin(db, log)

	// Redis snapshot layer, optional: the gateway runs fine without it,
	// cold starts just begin with an empty cache.
	var snapshots cache.SnapshotStore
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warnf("redis not available (%v), running without snapshots", err)
		} else {
			snapshots = snapshot.NewRedisStore(redisClient, snapshot.DefaultTTL)
			log.Infof("redis connected (%s)", cfg.Redis.Address)
		}
		cancel()
		defer redisClient.Close()
	}

	// Upstream client
	client := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Token, cfg.Upstream.Timeout)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if ping, err := client.Ping(ctx); err == nil {
		log.Infof("maintenance backend connected (%s %s)", ping.Product, ping.Version)
	} else {
		log.Warnf("maintenance backend not available (%v)", err)
	}
	if !client.HasToken() && cfg.Upstream.Username != "" {
		if _, err := client.Login(ctx, cfg.Upstream.Username, cfg.Upstream.Password); err != nil {
			log.Warnf("upstream login failed (%v)", err)
		} else {
			log.Infof("upstream service account authenticated (%s)", cfg.Upstream.Username)
		}
	}
	cancel()

	// Query cache and entity bindings
	queryCache := cache.New(cache.Options{
		StaleAfter:    cfg.Cache.StaleAfter,
		InactiveAfter: cfg.Cache.InactiveAfter,
		Retry:         cfg.Cache.Retry,
		Snapshots:     snapshots,
	})
	center := notify.NewCenter(cfg.Production(), db)
	sync := syncer.New(client, queryCache, center)

	// Engine
	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		DB:         db,
		Upstream:   client,
		Cache:      queryCache,
		Syncer:     sync,
		Notify:     center,
		Snapshots:  snapshots,
	})
	if err := eng.Start(); err != nil {
		log.Fatalf("engine start: %v", err)
	}
	defer eng.Stop()

	// Web server
	handler, stopWeb := www.NewRouter(eng)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Infof("web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Info("ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Info("stopped")
}

// ensureAdmin seeds a first-run admin account so the dashboard is reachable.
func ensureAdmin(db *store.DB, log *logrus.Entry) {
	n, err := db.CountUsers()
	if err != nil || n > 0 {
		return
	}

	password := os.Getenv("MAINTDECK_ADMIN_PASSWORD")
	if password == "" {
		log.Warn("no users and MAINTDECK_ADMIN_PASSWORD unset, skipping admin seed")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorf("seed admin: %v", err)
		return
	}
	if err := db.CreateUser(&store.User{
		Username:     "admin",
		PasswordHash: string(hash),
		FullName:     "Administrator",
		Role:         store.RoleAdmin,
		Active:       true,
	}); err != nil {
		log.Errorf("seed admin: %v", err)
		return
	}
	log.Info("seeded admin user from MAINTDECK_ADMIN_PASSWORD")
}
