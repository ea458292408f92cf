package provider

import "github.com/sirupsen/logrus"

// Registry is a closed set of known adapters keyed by provider id. The
// set is fixed at construction; there is no dynamic registration.
type Registry struct {
	adapters  map[string]Adapter
	defaultID string
	logger    *logrus.Logger
}

// NewRegistry builds a registry over the given adapters. defaultID
// names the adapter used when a request does not pin a provider; it
// must be one of the given adapters.
func NewRegistry(defaultID string, logger *logrus.Logger, adapters ...Adapter) *Registry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	if _, ok := m[defaultID]; !ok && len(adapters) > 0 {
		// misconfigured default: fall back to the first adapter so the
		// payment subsystem stays usable, and say so loudly
		logger.WithField("default_provider", defaultID).
			Warn("configured default provider is not registered, using first adapter")
		defaultID = adapters[0].Name()
	}
	return &Registry{adapters: m, defaultID: defaultID, logger: logger}
}

// Lookup returns the adapter registered under id, if any.
func (r *Registry) Lookup(id string) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// Default returns the default adapter.
func (r *Registry) Default() Adapter {
	return r.adapters[r.defaultID]
}

// Resolve picks an adapter: explicit id first, then the configured
// default. An unknown id falls back to the default rather than
// failing, but the fallback is logged so a misrouted charge is
// traceable.
func (r *Registry) Resolve(id string) Adapter {
	if id == "" {
		return r.Default()
	}
	a, ok := r.Lookup(id)
	if !ok {
		r.logger.WithFields(logrus.Fields{
			"provider": id,
			"fallback": r.defaultID,
		}).Warn("unknown payment provider, falling back to default")
		return r.Default()
	}
	return a
}
