// Package cache stores placement results and rendered artifacts so a
// repeated run on the same netlist and options skips the engine.
//
// # Backends
//
//   - [FileCache]: JSON entries under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// Keys are built by a [Keyer] from content hashes, never from file paths,
// so renaming an input does not invalidate its entry:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.PlacementKey(cache.Hash(src), cache.PlacementKeyOpts{Candidates: 4})
//	data, hit, err := c.Get(ctx, key)
//
// Options that cannot change the result (worker count, overlap index kind)
// are deliberately absent from the key options.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	TTLPlacement = 7 * 24 * time.Hour
	TTLArtifact  = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
