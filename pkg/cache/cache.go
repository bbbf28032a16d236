// Package cache stores rendered artifacts keyed by content hash.
//
// Rendering is deterministic: the same structure file, rotation and render
// options always produce the same bytes. The pipeline therefore hashes its
// inputs into keys (see [Keyer]) and stores results in a [Cache] backend:
//
//   - [FileCache]: JSON entries under a directory (CLI default)
//   - [RedisCache]: shared cache for `molview serve` replicas
//   - [NullCache]: disables caching
//
// Keys are namespaced by stage ("mol:", "scene:", "artifact:") so entries of
// different kinds never collide, and [ScopedKeyer] adds a tenant prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
//
// Get returns (nil, false, nil) on a miss; an error means the backend failed.
// A zero ttl in Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default entry lifetimes.
const (
	TTLMolecule = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// SceneKeyOpts identifies the inputs of a composed scene.
type SceneKeyOpts struct {
	Rotation     [3]float64 `json:"rotation"`
	ElementsHash string     `json:"elements"`
	BondColour   string     `json:"bond_colour,omitempty"`
}

// ArtifactKeyOpts identifies an output rendering of a scene.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	NoGradients bool    `json:"no_gradients,omitempty"`
	NoMetadata  bool    `json:"no_metadata,omitempty"`
	Background  string  `json:"background,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	Indices     bool    `json:"indices,omitempty"`
}

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	// MoleculeKey addresses a parsed molecule by source hash.
	MoleculeKey(sourceHash string) string
	// SceneKey addresses a rotated, projected and composed scene.
	SceneKey(sourceHash string, opts SceneKeyOpts) string
	// ArtifactKey addresses one output format of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MoleculeKey returns "mol:<sourceHash>".
func (DefaultKeyer) MoleculeKey(sourceHash string) string {
	return "mol:" + sourceHash
}

// SceneKey hashes the source hash together with opts.
func (DefaultKeyer) SceneKey(sourceHash string, opts SceneKeyOpts) string {
	return hashKey("scene", sourceHash, opts)
}

// ArtifactKey hashes the scene hash together with opts.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}
