// Package cli implements the depscope command-line interface.
//
// The main commands are:
//   - explore: Interactive dependency exploration in the terminal
//   - resolve: Resolve a package's full dependency graph non-interactively
//   - serve: Run the HTTP API server
//   - cache: Manage the registry response cache
//
// All commands support --verbose (-v) for debug-level logging and --config
// for an explicit config file. Loggers are passed through context.Context.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/buildinfo"
	"github.com/depscope/depscope/pkg/cache"
	"github.com/depscope/depscope/pkg/generate"
)

// appName is the application name used for directories and display.
const appName = "depscope"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Depscope explores package dependency graphs interactively",
		Long:         `Depscope incrementally resolves dependency graphs from package registries (npm, PyPI, crates.io), letting you expand, filter, and inspect the graph node by node instead of fetching everything up front.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file (default ~/.config/depscope/config.toml)")

	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newBackend picks the cache backend: Redis when configured, the XDG file
// cache otherwise, a null cache when caching is disabled or unavailable.
func (c *CLI) newBackend(cmd *cobra.Command, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if c.config.Redis.Addr != "" {
		backend, err := cache.NewRedisCache(cmd.Context(), cache.RedisConfig{
			Addr:     c.config.Redis.Addr,
			Password: c.config.Redis.Password,
			DB:       c.config.Redis.DB,
		})
		if err == nil {
			return backend
		}
		c.Logger.Warn("redis unavailable, falling back to file cache", "addr", c.config.Redis.Addr, "err", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	backend, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return backend
}

// newSource builds a registry source, preferring the flag value over the
// configured default.
func (c *CLI) newSource(registry string, backend cache.Cache, ttl time.Duration) (generate.Source, error) {
	if registry == "" {
		registry = c.config.Registry
	}
	return generate.NewSource(registry, backend, ttl)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/depscope/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
