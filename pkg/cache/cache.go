// Package cache provides caching for history trees, layouts, and rendered
// artifacts.
//
// The [Cache] interface abstracts the storage backend:
//   - [FileCache]: file-based cache for CLI usage
//   - [RedisCache]: redis-backed cache for multi-instance server deployments
//   - [NullCache]: no-op cache for tests or when caching is disabled
//
// The [Keyer] interface builds cache keys from the inputs of each pipeline
// stage, so a changed tree or different layout options never hit a stale
// entry.
package cache

import (
	"context"
	"time"
)

// TTLs per pipeline stage. Trees are cheap to reload, layouts and artifacts
// are derived purely from tree content so they can live longer.
const (
	TTLTree     = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface all backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; an absent key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TreeKeyOpts are the load options that affect a cached tree.
type TreeKeyOpts struct {
	Consolidate bool `json:"consolidate"`
}

// LayoutKeyOpts are the options that affect a cached layout.
type LayoutKeyOpts struct {
	Consolidate bool `json:"consolidate"`
}

// ArtifactKeyOpts are the options that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// TreeKey identifies a loaded tree by its source and name.
	TreeKey(source, name string, opts TreeKeyOpts) string

	// LayoutKey identifies a computed layout by the tree content hash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact by the layout hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// TreeKey generates a key for tree caching.
func (k *DefaultKeyer) TreeKey(source, name string, opts TreeKeyOpts) string {
	return hashKey("tree", source, name, opts)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g. one
// namespace per dataset when several share a redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TreeKey generates a prefixed key for tree caching.
func (k *ScopedKeyer) TreeKey(source, name string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(source, name, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(treeHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
