package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	BaseURL        string        `toml:"base_url"`
	SocketURL      string        `toml:"socket_url"`
	DataDir        string        `toml:"data_dir"`
	Theme          string        `toml:"theme"` // "light" or "dark"
	TimeoutSeconds int           `toml:"timeout_seconds"`
	Debug          bool          `toml:"debug"`
	RequestTimeout time.Duration `toml:"-"`
}

// Defaults returns the baseline configuration before file, env and
// flag overrides are applied.
func Defaults() Config {
	return Config{
		BaseURL:        "http://localhost:8000",
		SocketURL:      "ws://localhost:8090",
		DataDir:        defaultDataDir(),
		Theme:          "light",
		TimeoutSeconds: 60,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bopchat"
	}
	return filepath.Join(home, ".bopchat")
}

// Load reads configuration in increasing precedence: defaults, the
// TOML config file (if present), then environment variables. A missing
// config file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.toml")
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// .env is optional; a missing file is fine.
	_ = godotenv.Load()

	if v := os.Getenv("BOPCHAT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("BOPCHAT_SOCKET_URL"); v != "" {
		cfg.SocketURL = v
	}
	if v := os.Getenv("BOPCHAT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BOPCHAT_THEME"); v != "" {
		cfg.Theme = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.RequestTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.SocketURL == "" {
		return fmt.Errorf("socket_url must not be empty")
	}
	if c.Theme != "light" && c.Theme != "dark" {
		return fmt.Errorf("theme must be \"light\" or \"dark\", got %q", c.Theme)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

// TokenPath is where the bearer token is persisted between runs.
func (c Config) TokenPath() string {
	return filepath.Join(c.DataDir, "token")
}

// CachePath is the SQLite transcript cache location.
func (c Config) CachePath() string {
	return filepath.Join(c.DataDir, "bopchat.db")
}
