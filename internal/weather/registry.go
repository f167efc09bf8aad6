package weather

import (
	"fmt"
	"sync"
)

// Registered pairs a provider with the name it was registered under.
type Registered struct {
	Name     ProviderName
	Provider Provider
}

// Registry is the catalog of available providers. It is populated once at
// startup, sealed, and only read afterwards.
type Registry struct {
	mu     sync.RWMutex
	order  []ProviderName
	byName map[ProviderName]Provider
	sealed bool
}

// NewRegistry creates an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[ProviderName]Provider),
	}
}

// Register adds p under name. Re-registering a name replaces the provider but
// keeps its original position. Registering into a sealed registry panics.
func (r *Registry) Register(name ProviderName, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		panic(fmt.Sprintf("weather: register %q on sealed registry", name))
	}
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = p
}

// Seal ends the registration phase.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Get returns the provider registered under name.
func (r *Registry) Get(name ProviderName) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name ProviderName) bool {
	_, ok := r.Get(name)
	return ok
}

// All returns every provider in registration order.
func (r *Registry) All() []Registered {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registered, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Registered{Name: name, Provider: r.byName[name]})
	}
	return out
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderName, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
