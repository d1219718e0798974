package dispatcher

import (
	"fmt"
	"sort"
	"sync"
)

const DefaultName = "null"

// Registry maps dispatcher names to implementations. Channels store the
// name; the occurrence processor resolves it at dispatch time. The registry
// is populated once at startup and read-only afterwards.
type Registry struct {
	mu          sync.RWMutex
	dispatchers map[string]Dispatcher
}

func NewRegistry(dispatchers ...Dispatcher) *Registry {
	r := &Registry{dispatchers: make(map[string]Dispatcher, len(dispatchers))}
	for _, d := range dispatchers {
		r.Register(d)
	}
	return r
}

func (r *Registry) Register(d Dispatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatchers[d.Name()] = d
}

func (r *Registry) Get(name string) (Dispatcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dispatchers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDispatcher, name)
	}
	return d, nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.dispatchers[name]
	return ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.dispatchers))
	for name := range r.dispatchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
