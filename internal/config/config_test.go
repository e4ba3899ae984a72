package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_NAME", "APP_PORT", "POSTGRES_DSN", "REDIS_ADDR", "USER_SERVICE_URL", "PEER_TIMEOUT_SECONDS", "HTTP_REQUEST_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(TicketServiceDefaults)
	require.NoError(t, err)

	assert.Equal(t, "ticket-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8082", cfg.App.Addr())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "http://localhost:8081", cfg.Peers.UserServiceURL)
	assert.Zero(t, cfg.Peers.Timeout())
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("USER_SERVICE_URL", "http://users.internal:8081/")
	t.Setenv("PEER_TIMEOUT_SECONDS", "3")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load(UserServiceDefaults)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "http://users.internal:8081", cfg.Peers.UserServiceURL)
	assert.Equal(t, 3*time.Second, cfg.Peers.Timeout())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load(UserServiceDefaults)
	assert.Error(t, err)
}
