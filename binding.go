package ioc

// Concrete is what an abstract resolves to: a TypeName to construct or a
// Factory to call. A nil Concrete binds an abstract to itself.
type Concrete interface {
	concrete()
}

// TypeName identifies a type known to the container's type provider.
type TypeName string

func (TypeName) concrete() {}

// Factory builds a value directly, bypassing constructor introspection.
// Its result is returned as is and never routed back through construction.
type Factory func(r Resolver) (any, error)

func (Factory) concrete() {}

// Instance returns a Factory that always yields v.
func Instance(v any) Factory {
	return func(Resolver) (any, error) {
		return v, nil
	}
}

// Resolver is the view of the container handed to factories. Lookups made
// through it are part of the resolution in progress, so a factory that
// asks for a service already being built fails with a
// CircularDependencyError instead of recursing.
type Resolver interface {
	Get(abstract string) (any, error)
	GetMethod(abstract, method string, args Args) (any, error)
	Make(abstract string) (any, error)
	MakeMethod(abstract, method string, args Args) (any, error)
	Has(abstract string) bool
	HasMethod(abstract, method string) bool

	// Container returns the container the resolver belongs to.
	Container() *Container
}

// Binding is a snapshot of one registration.
type Binding struct {
	Abstract string
	Method   string // empty for plain bindings
	Concrete string // type name, or empty for factories
	Factory  bool
	Cached   bool
	Args     Args
}

func describeConcrete(c Concrete) (string, bool) {
	switch v := c.(type) {
	case TypeName:
		return string(v), false
	case Factory:
		return "", true
	}
	return "", false
}
