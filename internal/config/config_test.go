package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
# storefront config
database:
  host: db.local
  port: 5433
  user: storefront
  password: "s3cret"
  database: storefront
  max_conns: 4

rabbitmq:
  host: mq.local
  user: guest
  password: guest

cooldown:
  dir: /var/lib/storefront/cooldown

server:
  drain_seconds: 12
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, 4, cfg.Database.MaxConns)
	assert.Equal(t, "disable", cfg.Database.SSLMode) // default kept

	assert.Equal(t, "mq.local", cfg.Rabbit.Host)
	assert.Equal(t, 5672, cfg.Rabbit.Port) // default
	assert.Equal(t, "/", cfg.Rabbit.VHost) // default

	assert.Equal(t, "/var/lib/storefront/cooldown", cfg.Cooldown.Dir)
	assert.Equal(t, 12, cfg.Server.DrainSeconds)
}

func TestLoad_Incomplete(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.local
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.local
  port: not-a-number
  user: u
  database: d

rabbitmq:
  host: mq.local
  user: guest
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5, cfg.Server.DrainSeconds) // default kept
}
