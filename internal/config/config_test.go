package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "notifications", cfg.RabbitMQ.Queue)
	assert.Equal(t, "", cfg.RedisAddr())
	assert.False(t, cfg.IsProduction())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "3")
	t.Setenv("JWT_ACCESS_TTL", "1h")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout())
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
	assert.True(t, cfg.IsProduction())
}

func TestParse_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParse_InvalidTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ATTENDANCE_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Parse()
	assert.Error(t, err)
}
