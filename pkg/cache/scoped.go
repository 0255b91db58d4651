package cache

// ScopedKeyer wraps a Keyer with a prefix so that networks built under
// different schemas never share entries, even for identical tables.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "bea-summary@2015:")
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// NetworkKey generates a prefixed network key.
func (k *ScopedKeyer) NetworkKey(tableHash string, opts NetworkKeyOpts) string {
	return k.prefix + k.inner.NetworkKey(tableHash, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(networkHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(networkHash, opts)
}
