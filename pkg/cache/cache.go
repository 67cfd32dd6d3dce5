// Package cache stores finished layouts so repeated conversions of the same
// diagram skip the pipeline.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] and
// [MongoCache] for the server, and [NullCache] when caching is disabled.
// Keys come from a [Keyer], which hashes the input tree together with
// everything that influences the result.
package cache

import (
	"context"
	"time"
)

// TTLLayout is how long a layout result stays cached.
const TTLLayout = 7 * 24 * time.Hour

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// LayoutKeyOpts lists the inputs besides the tree that change a layout.
type LayoutKeyOpts struct {
	Engine     string            `json:"engine"`
	Options    map[string]string `json:"options,omitempty"`
	ConfigHash string            `json:"config_hash,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(treeHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>". Option maps are hashed with sorted
// keys, so their iteration order does not matter.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}
