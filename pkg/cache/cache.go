// Package cache provides artifact caching for the diagram pipeline.
//
// The pipeline is deterministic — identical records, preset, and options
// always produce the byte-identical document — so rendered artifacts can be
// cached keyed by a hash of the inputs. Three backends exist: NullCache
// (disabled), FileCache (CLI), and RedisCache (multi-instance serve
// deployments).
package cache

import (
	"context"
	"fmt"
	"time"
)

// TTLs per artifact class.
const (
	// TTLDocument is the lifetime of rendered diagram documents.
	TTLDocument = 24 * time.Hour

	// TTLGraph is the lifetime of flat graph exports.
	TTLGraph = 24 * time.Hour
)

// Cache stores rendered artifacts by key.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key with the given TTL. A zero TTL means no
	// expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for pipeline artifacts.
type Keyer interface {
	// DocumentKey keys a rendered diagram document by input hash and format.
	DocumentKey(inputHash, format string) string

	// GraphKey keys a flat graph export by input hash.
	GraphKey(inputHash string) string
}

// DefaultKeyer generates versioned keys. The version segment invalidates old
// entries when the document format changes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

const keyVersion = "v1"

// DocumentKey implements Keyer.
func (k *DefaultKeyer) DocumentKey(inputHash, format string) string {
	return fmt.Sprintf("doc:%s:%s:%s", keyVersion, format, inputHash)
}

// GraphKey implements Keyer.
func (k *DefaultKeyer) GraphKey(inputHash string) string {
	return fmt.Sprintf("graph:%s:%s", keyVersion, inputHash)
}

// ScopedKeyer wraps a Keyer with a prefix, giving different tenants of the
// serve deployment separate cache namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DocumentKey implements Keyer.
func (k *ScopedKeyer) DocumentKey(inputHash, format string) string {
	return k.prefix + k.inner.DocumentKey(inputHash, format)
}

// GraphKey implements Keyer.
func (k *ScopedKeyer) GraphKey(inputHash string) string {
	return k.prefix + k.inner.GraphKey(inputHash)
}
