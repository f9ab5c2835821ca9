package typeinfo

import (
	"slices"
	"sync"
)

// Provider supplies type descriptors by name.
type Provider interface {
	// Describe returns the descriptor registered under name or an error
	// matching ErrUnknownType.
	Describe(name string) (*Descriptor, error)
}

// Registry is a thread-safe descriptor table. The zero value is not usable;
// create one with NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Descriptor
}

var _ Provider = (*Registry)(nil)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Descriptor),
	}
}

// Register adds descriptors to the table. Either all descriptors are added
// or none are.
func (r *Registry) Register(descs ...*Descriptor) error {
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]bool, len(descs))
	for _, d := range descs {
		if _, exists := r.types[d.Name]; exists || batch[d.Name] {
			return DuplicateTypeError{Name: d.Name}
		}
		batch[d.Name] = true
	}

	for _, d := range descs {
		r.types[d.Name] = d
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(descs ...*Descriptor) *Registry {
	if err := r.Register(descs...); err != nil {
		panic(err)
	}
	return r
}

// Replace adds or overwrites a descriptor.
func (r *Registry) Replace(d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[d.Name] = d
	return nil
}

// Describe implements Provider.
func (r *Registry) Describe(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.types[name]
	if !ok {
		return nil, UnknownTypeError{Name: name}
	}
	return d, nil
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
