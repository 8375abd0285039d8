package config_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/statekit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv(config.EnvEncryptionKey, "")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 300*time.Millisecond, cfg.PersistForm.Debounce())
	assert.Equal(t, "akitaForm", cfg.PersistForm.FormKey)
	assert.Equal(t, config.BackendFile, cfg.Persistence.Backend)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := write(t, "statekit.yaml", `
log_level: debug
persistence:
  backend: redis
  redis_addr: cache:6379
  ttl: 1h
persist_form:
  debounce_ms: 50
  emit_event: true
dirty_check:
  watch_property: [entities, ui.filter]
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.BackendRedis, cfg.Persistence.Backend)
	assert.Equal(t, "cache:6379", cfg.Persistence.RedisAddr)
	assert.Equal(t, time.Hour, cfg.Persistence.TTL)
	assert.Equal(t, "statekit:snapshot:", cfg.Persistence.Prefix, "unset keys keep the default")
	assert.Equal(t, 50*time.Millisecond, cfg.PersistForm.Debounce())
	assert.Equal(t, "akitaForm", cfg.PersistForm.FormKey)
	assert.True(t, cfg.PersistForm.EmitEvent)
	assert.Equal(t, []string{"entities", "ui.filter"}, cfg.DirtyCheck.WatchProperty)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "statekit.json", `{"persistence": {"backend": "memory"}, "log_json": true}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Persistence.Backend)
	assert.True(t, cfg.LogJSON)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := config.Load(write(t, "bad.yaml", "persistence:\n  backend: etcd\n"))
	assert.ErrorIs(t, err, config.ErrUnknownBackend)

	_, err = config.Load(write(t, "neg.yaml", "persist_form:\n  debounce_ms: -1\n"))
	assert.Error(t, err)

	_, err = config.Load(write(t, "broken.yaml", "persistence: [\n"))
	assert.Error(t, err)
}

func TestLoad_EncryptionKeys(t *testing.T) {
	t.Setenv(config.EnvEncryptionKey, "")
	active := base64.StdEncoding.EncodeToString(make([]byte, 32))
	old := base64.StdEncoding.EncodeToString([]byte("old-key"))

	cfg, err := config.Load(write(t, "keys.yaml", "persistence:\n  encryption_key: "+active+"\n  fallback_keys: ["+old+"]\n  mask: [password]\n"))
	require.NoError(t, err)
	key, fallback, err := cfg.Persistence.Keys()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Equal(t, [][]byte{[]byte("old-key")}, fallback)
	assert.Equal(t, []string{"password"}, cfg.Persistence.Mask)

	_, err = config.Load(write(t, "bad-key.yaml", "persistence:\n  encryption_key: '%%%'\n"))
	assert.Error(t, err)
}

func TestLoad_EncryptionKeyFromEnv(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	t.Setenv(config.EnvEncryptionKey, key)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, key, cfg.Persistence.EncryptionKey)

	cfg, err = config.Load(write(t, "keys.yaml", "persistence:\n  encryption_key: ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, key, cfg.Persistence.EncryptionKey)
}

func TestKeys_Disabled(t *testing.T) {
	key, fallback, err := config.Default().Persistence.Keys()
	require.NoError(t, err)
	assert.Nil(t, key)
	assert.Nil(t, fallback)
}
