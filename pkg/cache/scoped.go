package cache

// ScopedKeyer prefixes every key of an inner Keyer. It keeps several
// deployments apart when they share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "greetcard:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TemplateKey returns the prefixed template key.
func (k *ScopedKeyer) TemplateKey(templateID string, version int64) string {
	return k.prefix + k.inner.TemplateKey(templateID, version)
}

// PreviewKey returns the prefixed preview key.
func (k *ScopedKeyer) PreviewKey(templateID, text string, opts PreviewKeyOpts) string {
	return k.prefix + k.inner.PreviewKey(templateID, text, opts)
}
