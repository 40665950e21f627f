package scraper

import (
	"fmt"
	"sort"

	"IntelBriefing/internal/ports"
)

// Registry keeps a mapping from backend names to their implementations.
type Registry struct {
	backends map[string]ports.Scraper
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: map[string]ports.Scraper{}}
}

// Register adds or replaces a backend. Nil backends are ignored so callers can
// register conditionally-built clients without extra checks.
func (r *Registry) Register(backend ports.Scraper) {
	if backend == nil {
		return
	}
	if r.backends == nil {
		r.backends = map[string]ports.Scraper{}
	}
	r.backends[backend.Name()] = backend
}

// Resolve returns a backend by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.Scraper, error) {
	if backend, ok := r.backends[name]; ok {
		return backend, nil
	}
	return nil, fmt.Errorf("scraper backend %s is not registered", name)
}

// Names lists registered backends in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
