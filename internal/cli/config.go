package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/depscope/depscope/pkg/errors"
)

// Config holds user-level settings loaded from the TOML config file.
// Command-line flags override anything set here.
type Config struct {
	// Registry is the default package registry (npm, pypi, crates).
	Registry string `toml:"registry"`

	// CacheTTL is a Go duration string for registry response caching.
	CacheTTL string `toml:"cache_ttl"`

	Redis  RedisSettings  `toml:"redis"`
	Mongo  MongoSettings  `toml:"mongo"`
	Server ServerSettings `toml:"server"`
}

// RedisSettings configures the optional Redis cache backend. When Addr is
// empty the file cache is used instead.
type RedisSettings struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoSettings configures the optional MongoDB snapshot store. When URI is
// empty the server keeps snapshots in memory.
type MongoSettings struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerSettings configures the HTTP API server.
type ServerSettings struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Registry: "npm",
		CacheTTL: "24h",
		Server:   ServerSettings{Addr: ":8080"},
	}
}

// TTL parses the configured cache TTL, falling back to 24 hours on a bad
// or empty value.
func (c Config) TTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults; a malformed file is an
// error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// defaultConfigPath returns the XDG config location (~/.config/depscope/config.toml).
func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}
