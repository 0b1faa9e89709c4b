package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, "ws://localhost:8090", cfg.SocketURL)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url = "https://bank.example.com"
theme = "dark"
timeout_seconds = 10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://bank.example.com", cfg.BaseURL)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	// Untouched keys keep their defaults.
	assert.Equal(t, "ws://localhost:8090", cfg.SocketURL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`base_url = "https://file.example.com"`), 0o644))

	t.Setenv("BOPCHAT_BASE_URL", "https://env.example.com")
	t.Setenv("BOPCHAT_THEME", "dark")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, "dark", cfg.Theme)
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`theme = `), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, false},
		{"empty socket url", func(c *Config) { c.SocketURL = "" }, false},
		{"unknown theme", func(c *Config) { c.Theme = "solarized" }, false},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, false},
		{"dark theme", func(c *Config) { c.Theme = "dark" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Config{DataDir: "/tmp/bop"}
	assert.Equal(t, filepath.Join("/tmp/bop", "token"), cfg.TokenPath())
	assert.Equal(t, filepath.Join("/tmp/bop", "bopchat.db"), cfg.CachePath())
}
