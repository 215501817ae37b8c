package strategy

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownStrategy is returned by Get for a name nothing is registered under.
var ErrUnknownStrategy = errors.New("strategy: unknown name")

// Registry maps strategy names to their builders and remembers which one an
// empty name selects. It is safe for concurrent reads; Register and SetDefault
// should only be called at startup.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
	fallback string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds a builder. Panics on duplicate name to surface misconfiguration early.
// The first builder registered becomes the default until SetDefault says otherwise.
func (r *Registry) Register(b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[b.Name()]; exists {
		panic(fmt.Sprintf("strategy registry: duplicate name %q", b.Name()))
	}
	r.builders[b.Name()] = b
	if r.fallback == "" {
		r.fallback = b.Name()
	}
}

// SetDefault selects the builder an empty name resolves to. Panics if name
// is not registered.
func (r *Registry) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builders[name]; !ok {
		panic(fmt.Sprintf("strategy registry: default %q is not registered", name))
	}
	r.fallback = name
}

// Default returns the builder an empty name resolves to.
func (r *Registry) Default() (Builder, error) {
	return r.Get("")
}

// Get returns the builder registered under name; "" selects the default.
func (r *Registry) Get(name string) (Builder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.fallback
	}
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownStrategy, name, r.namesLocked())
	}
	return b, nil
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	out := make([]string, 0, len(r.builders))
	for k := range r.builders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
