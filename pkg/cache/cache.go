// Package cache stores built networks and rendered diagrams between runs.
//
// A network depends only on the sanitized table and the build parameters, so
// repeated runs over the same workbook can skip the inversion entirely.
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for shared deployments and [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as ok == false with
	// a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Entry lifetimes.
const (
	// TTLNetwork bounds how long a built network is reused. Input-output
	// tables are revised annually.
	TTLNetwork = 30 * 24 * time.Hour
	// TTLRender bounds how long a rendered diagram is reused.
	TTLRender = 7 * 24 * time.Hour
)

// NetworkKeyOpts holds the build parameters that change a network.
type NetworkKeyOpts struct {
	// SchemaHash is the content hash of the schema the table is sanitized
	// under, so an edited schema never reuses an old network.
	SchemaHash   string  `json:"schema_hash"`
	Threshold    float64 `json:"threshold"`
	TopK         int     `json:"top_k"`
	ConditionCap float64 `json:"condition_cap"`
}

// RenderKeyOpts holds the parameters that change a rendered diagram.
type RenderKeyOpts struct {
	Format    string `json:"format"`
	Direction string `json:"direction,omitempty"`
	Focus     string `json:"focus,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// NetworkKey returns the key for a network built from the table with
	// the given content hash.
	NetworkKey(tableHash string, opts NetworkKeyOpts) string
	// RenderKey returns the key for a diagram of the network with the given
	// content hash.
	RenderKey(networkHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes the key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// NetworkKey implements Keyer.
func (DefaultKeyer) NetworkKey(tableHash string, opts NetworkKeyOpts) string {
	return hashKey("network", tableHash, opts)
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(networkHash string, opts RenderKeyOpts) string {
	return hashKey("render", networkHash, opts)
}

