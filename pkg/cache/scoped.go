package cache

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// backend do not see each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "inspector:eu-1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer is the
// default one.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ReportKey(sceneHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(sceneHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}

func (k *ScopedKeyer) SessionKey(id string) string {
	return k.prefix + k.inner.SessionKey(id)
}
