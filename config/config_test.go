package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "maintdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
upstream:
  base_url: http://backend:8000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.StaleAfter)
	assert.Equal(t, 5*time.Minute, cfg.Cache.InactiveAfter)
	assert.Equal(t, 3, cfg.Cache.Retry)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 8084, cfg.Web.Port)
	assert.False(t, cfg.Production())
}

func TestLoadRequiresUpstreamBaseURL(t *testing.T) {
	path := writeConfig(t, `
web:
  port: 9000
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
upstream:
  base_url: http://backend:8000
messaging:
  backend: rabbitmq
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesWin(t *testing.T) {
	path := writeConfig(t, `
environment: development
upstream:
  base_url: http://backend:8000
  token: from-file
`)
	t.Setenv("MAINTDECK_UPSTREAM_TOKEN", "from-env")
	t.Setenv("MAINTDECK_ENV", "production")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Upstream.Token)
	assert.True(t, cfg.Production())
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
environment: production
upstream:
  base_url: http://backend:8000
  timeout: 15s
cache:
  stale_after: 1m
database:
  driver: postgres
  postgres:
    host: db.internal
    database: maintdeck
    user: maintdeck
redis:
  address: redis:6379
messaging:
  backend: kafka
  brokers: [kafka-1:9092, kafka-2:9092]
  topic: maint.changes
web:
  port: 8090
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, time.Minute, cfg.Cache.StaleAfter)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Messaging.Brokers)
	assert.Equal(t, "maint.changes", cfg.Messaging.Topic)
	assert.Equal(t, 8090, cfg.Web.Port)
}
