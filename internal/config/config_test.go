package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the test and restores it on
// cleanup. testing.T.Chdir exists only in Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8766, cfg.Port)
	assert.Equal(t, "rtdb", cfg.StoreBackend)
	assert.Equal(t, 2*time.Second, cfg.PublishInterval)
	assert.Equal(t, 3*time.Second, cfg.HostPollInterval)
	assert.Equal(t, 3*time.Second, cfg.DriftTolerance)
	assert.Equal(t, 60*time.Second, cfg.InviteTTL)
	assert.Equal(t, 5, cfg.MaxMembers)
	assert.Equal(t, 15, cfg.MaxNameLength)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(`
mode: debug
port: 9000
store_backend: redis
redis_addr: 127.0.0.1:6380
guest_poll_interval: 500ms
`), 0o644))
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, "127.0.0.1:6380", cfg.RedisAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.GuestPollInterval)
	// Unset keys keep their defaults.
	assert.Equal(t, 5, cfg.MaxMembers)
}
