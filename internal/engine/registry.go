package engine

import (
	"slices"
	"sync"

	"github.com/Iron-Ham/sheetview/internal/errors"
)

// Factory builds an engine instance.
type Factory func() (Engine, error)

// Registry maps engine names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Names returns the registered engine names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve builds the named engine and wraps it in a Bridge.
func (r *Registry) Resolve(name string) (*Bridge, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("engine", name).WithCause(errors.ErrEngineUnavailable)
	}

	e, err := f()
	if err != nil {
		return nil, errors.NewEngineError("engine failed to start", errors.Join(errors.ErrEngineUnavailable, err)).WithEngine(name)
	}
	if e == nil {
		return nil, errors.NewEngineError("engine factory returned nothing", errors.ErrEngineUnavailable).WithEngine(name)
	}
	return NewBridge(name, e), nil
}

// ResolveOrUnavailable is Resolve that never fails: on error it returns an
// unavailable bridge along with the error for reporting.
func (r *Registry) ResolveOrUnavailable(name string) (*Bridge, error) {
	b, err := r.Resolve(name)
	if err != nil {
		return Unavailable(), err
	}
	return b, nil
}
