// Package cache provides pluggable byte caching for depscope services.
//
// The [Cache] interface abstracts the storage backend:
//   - [FileCache]: file-based storage for CLI usage
//   - [RedisCache]: Redis-backed storage for server deployments
//   - [NullCache]: no-op cache for tests or when caching is disabled
//
// The [Keyer] interface generates cache keys for the different cacheable
// artifacts (HTTP responses, resolved graphs, computed layouts). Use
// [NewScopedKeyer] to namespace keys per user or deployment.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented cache with TTL support.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts captures the resolution parameters that affect a cached graph.
type GraphKeyOpts struct {
	MaxDepth int
	MaxNodes int
}

// LayoutKeyOpts captures the layout parameters that affect cached geometry.
type LayoutKeyOpts struct {
	Engine string
	Width  float64
	Height float64
}

// Keyer generates cache keys for the different cacheable artifacts.
type Keyer interface {
	// HTTPKey generates a key for an HTTP response in a namespace.
	HTTPKey(namespace, key string) string

	// GraphKey generates a key for a resolved dependency graph.
	GraphKey(registry, pkg string, opts GraphKeyOpts) string

	// LayoutKey generates a key for a computed layout, keyed by graph hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer generates hash-based keys with type prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// HTTP keys stay human-readable for debugging; graph and layout keys are
// hashed because their option structs would make unwieldy key strings.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// GraphKey generates a key for dependency graph caching.
func (k *DefaultKeyer) GraphKey(registry, pkg string, opts GraphKeyOpts) string {
	return hashKey("graph", registry, pkg, opts.MaxDepth, opts.MaxNodes)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts.Engine, opts.Width, opts.Height)
}
