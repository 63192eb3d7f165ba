// Package cache provides pluggable byte caches for pipeline results.
//
// The pipeline caches three kinds of values: parsed forests, computed
// layouts, and rendered artifacts. Each backend stores opaque bytes under
// string keys produced by a [Keyer], so backends never need to understand
// the cached payloads.
//
// Backends:
//   - FileCache: per-user cache directory, used by the CLI
//   - RedisCache: shared cache for server deployments
//   - MongoCache: document-store backed cache with TTL expiry
//   - NullCache: disables caching
package cache

import (
	"context"
	"time"
)

// Default expiry per payload kind. Forests are cheap to rebuild but
// layouts and artifacts are not, so they keep longer TTLs.
const (
	TTLForest   = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves the value for key. The second return value reports
	// whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ForestKeyOpts are the inputs that affect forest construction.
type ForestKeyOpts struct {
	Format string // input format: json or csv
}

// LayoutKeyOpts are the inputs that affect layout computation.
type LayoutKeyOpts struct {
	LayoutType        string
	Columns           int
	Padding           float64
	Spacing           float64
	MinNodeWidth      float64
	MinNodeHeight     float64
	TargetAspectRatio float64
	LeafNodeWidth     float64
	FontSize          float64
	FontFamily        string
	Oracle            string
}

// ArtifactKeyOpts are the inputs that affect artifact rendering.
type ArtifactKeyOpts struct {
	Format  string
	VizType string
	Style   string
}

// Keyer derives cache keys for the pipeline stages.
type Keyer interface {
	// ForestKey keys a parsed forest by the hash of its raw input.
	ForestKey(inputHash string, opts ForestKeyOpts) string

	// LayoutKey keys a computed layout by forest hash and layout options.
	LayoutKey(forestHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by layout hash and render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer derives keys by hashing the JSON encoding of its inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ForestKey generates a key for a parsed forest.
func (k *DefaultKeyer) ForestKey(inputHash string, opts ForestKeyOpts) string {
	return Key("forest", inputHash, opts)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(forestHash string, opts LayoutKeyOpts) string {
	return Key("layout", forestHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return Key("artifact", layoutHash, opts)
}
