package ioc

import (
	"cmp"
	"slices"
	"sync"
)

// methodKey identifies a method-scoped binding.
type methodKey struct {
	abstract string
	method   string
}

// methodBinding is the target of a method-scoped binding plus its stored
// parameter overrides.
type methodBinding struct {
	concrete Concrete
	args     Args
}

// table holds one kind of binding with its resolved-value cache. The epoch
// of a key changes whenever its binding is written or removed, so a value
// built against an older binding is never cached.
//
// An epoch is only kept while the key is bound or a resolution of it is in
// flight; pending counts those resolutions.
type table[K comparable, B any] struct {
	bindings map[K]B
	resolved map[K]any
	epochs   map[K]uint64
	pending  map[K]int
}

func newTable[K comparable, B any]() table[K, B] {
	return table[K, B]{
		bindings: make(map[K]B),
		resolved: make(map[K]any),
		epochs:   make(map[K]uint64),
		pending:  make(map[K]int),
	}
}

func (t *table[K, B]) bind(key K, b B) {
	delete(t.resolved, key)
	t.bindings[key] = b
	t.epochs[key]++
}

func (t *table[K, B]) remove(key K) {
	delete(t.resolved, key)
	delete(t.bindings, key)
	t.epochs[key]++
	t.prune(key)
}

// acquire registers a resolution of key and returns the epoch it started at.
func (t *table[K, B]) acquire(key K) uint64 {
	t.pending[key]++
	return t.epochs[key]
}

// release ends a resolution started by acquire.
func (t *table[K, B]) release(key K) {
	if t.pending[key] <= 1 {
		delete(t.pending, key)
	} else {
		t.pending[key]--
	}
	t.prune(key)
}

// prune drops the epoch of a key nobody can compare against any more.
func (t *table[K, B]) prune(key K) {
	if _, bound := t.bindings[key]; bound {
		return
	}
	if t.pending[key] == 0 {
		delete(t.epochs, key)
	}
}

// store caches v unless the binding changed since epoch, and returns the
// value callers should see.
func (t *table[K, B]) store(key K, epoch uint64, v any) any {
	defer t.release(key)

	if existing, ok := t.resolved[key]; ok {
		return existing
	}
	if t.epochs[key] == epoch {
		t.resolved[key] = v
	}
	return v
}

func (t *table[K, B]) has(key K) bool {
	if _, ok := t.resolved[key]; ok {
		return true
	}
	_, ok := t.bindings[key]
	return ok
}

// registry is the binding table and both resolved caches. The plain and
// method tables are disjoint: nothing written to one touches the other.
//
// The mutex guards map access only. It is never held while user code runs.
type registry struct {
	mu      sync.Mutex
	plain   table[string, Concrete]
	methods table[methodKey, methodBinding]
}

func newRegistry() *registry {
	return &registry{
		plain:   newTable[string, Concrete](),
		methods: newTable[methodKey, methodBinding](),
	}
}

// set binds abstract and drops its cached value. A nil concrete binds
// abstract to itself.
func (r *registry) set(abstract string, concrete Concrete) {
	if concrete == nil {
		concrete = TypeName(abstract)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.plain.bind(abstract, concrete)
}

// setMethod binds (abstract, method) and drops its cached value.
func (r *registry) setMethod(key methodKey, concrete Concrete, args Args) {
	if concrete == nil {
		concrete = TypeName(key.abstract)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods.bind(key, methodBinding{concrete: concrete, args: args.clone()})
}

// lookup returns the cached value for abstract. On a miss it makes sure a
// binding exists, registering the self-binding if needed, and returns the
// epoch to hand back to remember. Every miss must be followed by remember
// or abandon.
func (r *registry) lookup(abstract string) (value any, cached bool, epoch uint64, implicit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.plain.resolved[abstract]; ok {
		return v, true, 0, false
	}
	if _, ok := r.plain.bindings[abstract]; !ok {
		r.plain.bindings[abstract] = TypeName(abstract)
		implicit = true
	}
	return nil, false, r.plain.acquire(abstract), implicit
}

// lookupMethod is lookup for method-scoped keys.
func (r *registry) lookupMethod(key methodKey) (value any, cached bool, epoch uint64, implicit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.methods.resolved[key]; ok {
		return v, true, 0, false
	}
	if _, ok := r.methods.bindings[key]; !ok {
		r.methods.bindings[key] = methodBinding{concrete: TypeName(key.abstract)}
		implicit = true
	}
	return nil, false, r.methods.acquire(key), implicit
}

// binding returns the concrete for abstract, registering the self-binding
// if none exists.
func (r *registry) binding(abstract string) Concrete {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.plain.bindings[abstract]
	if !ok {
		c = TypeName(abstract)
		r.plain.bindings[abstract] = c
	}
	return c
}

// methodBinding returns the binding for key, registering the self-binding
// if none exists.
func (r *registry) methodBinding(key methodKey) methodBinding {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.methods.bindings[key]
	if !ok {
		b = methodBinding{concrete: TypeName(key.abstract)}
		r.methods.bindings[key] = b
	}
	return b
}

// remember caches v unless the binding changed since epoch, and returns
// the value callers should see. When another resolution cached first, its
// value wins so concurrent Gets agree on one instance.
func (r *registry) remember(abstract string, epoch uint64, v any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plain.store(abstract, epoch, v)
}

func (r *registry) rememberMethod(key methodKey, epoch uint64, v any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.methods.store(key, epoch, v)
}

// abandon ends a lookup miss whose resolution failed.
func (r *registry) abandon(abstract string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plain.release(abstract)
}

func (r *registry) abandonMethod(key methodKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods.release(key)
}

func (r *registry) has(abstract string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plain.has(abstract)
}

func (r *registry) hasMethod(key methodKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.methods.has(key)
}

func (r *registry) unset(abstract string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plain.remove(abstract)
}

func (r *registry) unsetMethod(key methodKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods.remove(key)
}

// snapshot lists every binding, plain ones first, each group sorted.
func (r *registry) snapshot() []Binding {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Binding, 0, len(r.plain.bindings)+len(r.methods.bindings))
	for abstract, c := range r.plain.bindings {
		b := Binding{Abstract: abstract}
		b.Concrete, b.Factory = describeConcrete(c)
		_, b.Cached = r.plain.resolved[abstract]
		out = append(out, b)
	}
	for key, mb := range r.methods.bindings {
		b := Binding{Abstract: key.abstract, Method: key.method, Args: mb.args.clone()}
		b.Concrete, b.Factory = describeConcrete(mb.concrete)
		_, b.Cached = r.methods.resolved[key]
		out = append(out, b)
	}

	slices.SortFunc(out, func(a, b Binding) int {
		if a.Method == "" && b.Method != "" {
			return -1
		}
		if a.Method != "" && b.Method == "" {
			return 1
		}
		if c := cmp.Compare(a.Abstract, b.Abstract); c != 0 {
			return c
		}
		return cmp.Compare(a.Method, b.Method)
	})
	return out
}

// peek returns the binding for abstract without registering anything.
func (r *registry) peek(abstract string) (Concrete, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.plain.bindings[abstract]
	return c, ok
}
