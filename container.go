package ioc

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quillwire/ioc/typeinfo"
)

// Container maps abstract identifiers to concrete constructions and
// resolves them into object graphs.
//
// Get caches per abstract (or per abstract and method); Make builds fresh on
// every call. A Container is safe for concurrent use.
type Container struct {
	id       string
	types    typeinfo.Provider
	reg      *registry
	logger   *slog.Logger
	maxDepth int
	strict   bool
}

var _ Resolver = (*Container)(nil)

// New creates a container that describes types through types. A nil
// provider is replaced by an empty typeinfo.Registry.
func New(types typeinfo.Provider, opts ...Option) *Container {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	if types == nil {
		types = typeinfo.NewRegistry()
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Container{
		id:       o.id,
		types:    types,
		reg:      newRegistry(),
		logger:   logger.With("container_id", o.id),
		maxDepth: o.maxDepth,
		strict:   o.strict,
	}
}

// ID returns the container's identifier.
func (c *Container) ID() string {
	return c.id
}

// Types returns the type provider.
func (c *Container) Types() typeinfo.Provider {
	return c.types
}

// Container returns c.
func (c *Container) Container() *Container {
	return c
}

// Set binds abstract to concrete and drops any cached value for abstract.
// A nil concrete binds abstract to itself.
func (c *Container) Set(abstract string, concrete Concrete) *Container {
	c.reg.set(abstract, concrete)
	return c
}

// SetMethod binds (abstract, method) to concrete with stored parameter
// overrides and drops any cached method result for that pair. A nil
// concrete binds to abstract itself.
func (c *Container) SetMethod(abstract, method string, concrete Concrete, params Args) *Container {
	c.reg.setMethod(methodKey{abstract, method}, concrete, params)
	return c
}

// Get resolves abstract, caching the result. Later calls return the cached
// value until abstract is set again or unset.
func (c *Container) Get(abstract string) (any, error) {
	start := time.Now()
	v, cached, err := c.newContext(nil).get(abstract)
	c.logResolved(abstract, "", cached, start, err)
	return v, err
}

// GetMethod resolves abstract and returns the result of invoking method on
// it, caching that result per (abstract, method). Non-empty args replace
// the overrides stored by SetMethod.
func (c *Container) GetMethod(abstract, method string, args Args) (any, error) {
	start := time.Now()
	v, cached, err := c.newContext(nil).getMethod(abstract, method, args)
	c.logResolved(abstract, method, cached, start, err)
	return v, err
}

// Make builds abstract without consulting or filling the cache.
func (c *Container) Make(abstract string) (any, error) {
	start := time.Now()
	v, err := c.newContext(nil).make(abstract)
	c.logResolved(abstract, "", false, start, err)
	return v, err
}

// MakeMethod builds abstract and returns the result of invoking method on
// it, without caching.
func (c *Container) MakeMethod(abstract, method string, args Args) (any, error) {
	start := time.Now()
	v, err := c.newContext(nil).makeMethod(abstract, method, args)
	c.logResolved(abstract, method, false, start, err)
	return v, err
}

// Has reports whether abstract is bound or has a cached value.
func (c *Container) Has(abstract string) bool {
	return c.reg.has(abstract)
}

// HasMethod reports whether (abstract, method) is bound or has a cached value.
func (c *Container) HasMethod(abstract, method string) bool {
	return c.reg.hasMethod(methodKey{abstract, method})
}

// Unset removes the binding and cached value for abstract.
func (c *Container) Unset(abstract string) *Container {
	c.reg.unset(abstract)
	return c
}

// UnsetMethod removes the binding and cached value for (abstract, method).
func (c *Container) UnsetMethod(abstract, method string) *Container {
	c.reg.unsetMethod(methodKey{abstract, method})
	return c
}

// Bindings returns a sorted snapshot of every registration.
func (c *Container) Bindings() []Binding {
	return c.reg.snapshot()
}

// MustGet is like Get but panics on error.
func (c *Container) MustGet(abstract string) any {
	v, err := c.Get(abstract)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks the bindings reachable from abstracts for constructor
// cycles without building anything. With no arguments every plain binding
// is checked.
func (c *Container) Validate(abstracts ...string) error {
	return c.dependencyGraph(abstracts).DetectCycles()
}

// WriteDOT writes the dependency graph reachable from abstracts in DOT format.
func (c *Container) WriteDOT(w io.Writer, abstracts ...string) error {
	return c.dependencyGraph(abstracts).WriteDOT(w)
}

func (c *Container) logResolved(abstract, method string, cached bool, start time.Time, err error) {
	if err != nil {
		return
	}
	c.logger.Debug("resolved",
		"abstract", abstract,
		"method", method,
		"cached", cached,
		"duration", time.Since(start),
	)
}
