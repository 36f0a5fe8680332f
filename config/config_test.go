package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromEnvOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.Feed.PollInterval)
	assert.True(t, cfg.Feed.SampleFallback)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, 64, cfg.Map.StreamBuffer)
	assert.Equal(t, 128, cfg.Stats.CacheSize)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: "127.0.0.1:9090"
feed:
  base_url: "http://feed.internal:3000"
  poll_interval: 45s
  sample_fallback: false
nats:
  enabled: true
  subject: "threats.prod"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr)
	assert.Equal(t, "http://feed.internal:3000", cfg.Feed.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Feed.PollInterval)
	assert.False(t, cfg.Feed.SampleFallback)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "threats.prod", cfg.NATS.Subject)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \"127.0.0.1:9090\"\n"), 0o600))
	t.Setenv("CYBERMAP_LISTEN_ADDR", "127.0.0.1:7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7070", cfg.ListenAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestEffectivePollInterval(t *testing.T) {
	cfg := &AppConfig{}
	assert.Equal(t, 30*time.Second, cfg.EffectivePollInterval(), "zero value falls back to the default")

	cfg.Feed.PollInterval = time.Second
	assert.Equal(t, 5*time.Second, cfg.EffectivePollInterval(), "sub-minimum intervals are clamped")

	cfg.Feed.PollInterval = 2 * time.Minute
	assert.Equal(t, 2*time.Minute, cfg.EffectivePollInterval())
}
