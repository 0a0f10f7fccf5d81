package tiercache

// Option scopes a single call to a subset of layers or tweaks its
// behavior. Options compose; later options win on conflict.
type Option func(*callOptions)

type callOptions struct {
	layers   []string        // nil => all configured layers, in order
	skip     map[string]bool // nil => skip none
	promote  bool
	category string
}

func applyOptions(opts []Option) callOptions {
	co := callOptions{promote: true}
	for _, o := range opts {
		o(&co)
	}
	return co
}

func (co callOptions) skipped(name string) bool {
	return co.skip != nil && co.skip[name]
}

// WithLayers restricts the call to the named layers, traversed in the
// given order. Names that are not configured are skipped.
func WithLayers(names ...string) Option {
	return func(co *callOptions) { co.layers = names }
}

// SkipLayers excludes the named layers from the call.
func SkipLayers(names ...string) Option {
	return func(co *callOptions) {
		if co.skip == nil {
			co.skip = make(map[string]bool, len(names))
		}
		for _, n := range names {
			co.skip[n] = true
		}
	}
}

// WithoutPromotion disables copying a hit from a slower layer into the
// faster ones in front of it.
func WithoutPromotion() Option {
	return func(co *callOptions) { co.promote = false }
}

// WithCategory resolves an unset TTL through the category table
// ("api", "session", ...) before falling back to the global default.
func WithCategory(name string) Option {
	return func(co *callOptions) { co.category = name }
}
