package cache

// ScopedKeyer wraps a Keyer with a prefix so several molview instances, or
// several element tables, can share one backend without collisions.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "molview:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer falls back to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// MoleculeKey returns the prefixed molecule key.
func (k *ScopedKeyer) MoleculeKey(sourceHash string) string {
	return k.prefix + k.inner.MoleculeKey(sourceHash)
}

// SceneKey returns the prefixed scene key.
func (k *ScopedKeyer) SceneKey(sourceHash string, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(sourceHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}
