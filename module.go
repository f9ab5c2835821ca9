package ioc

import (
	"github.com/quillwire/ioc/typeinfo"
)

// ModuleOption represents a registration action within a module.
type ModuleOption func(*Container) error

// NewModule creates a new module with the given name and builders.
// Modules are a way to group related bindings together.
//
// Example:
//
//	var StorageModule = ioc.NewModule("storage",
//	    ioc.RegisterTypes(
//	        typeinfo.MustFromConstructor("Store", NewStore),
//	    ),
//	    ioc.Bind("store", ioc.TypeName("Store")),
//	)
//
//	var AppModule = ioc.NewModule("app",
//	    StorageModule,
//	    ioc.BindFactory("clock", func(ioc.Resolver) (any, error) {
//	        return time.Now, nil
//	    }),
//	    ioc.BindMethod("report", "Render", nil, ioc.Named(map[string]any{"format": "text"})),
//	)
func NewModule(name string, builders ...ModuleOption) ModuleOption {
	return func(c *Container) error {
		for _, builder := range builders {
			if builder == nil {
				continue
			}

			if err := builder(c); err != nil {
				return ModuleError{Module: name, Cause: err}
			}
		}

		return nil
	}
}

// Bind creates a ModuleOption that binds abstract to concrete.
func Bind(abstract string, concrete Concrete) ModuleOption {
	return func(c *Container) error {
		c.Set(abstract, concrete)
		return nil
	}
}

// BindFactory creates a ModuleOption that binds abstract to a factory.
func BindFactory(abstract string, factory Factory) ModuleOption {
	return func(c *Container) error {
		c.Set(abstract, factory)
		return nil
	}
}

// BindMethod creates a ModuleOption that binds (abstract, method).
func BindMethod(abstract, method string, concrete Concrete, params Args) ModuleOption {
	return func(c *Container) error {
		c.SetMethod(abstract, method, concrete, params)
		return nil
	}
}

// RegisterTypes creates a ModuleOption that adds descriptors to the
// container's type registry. It fails when the container was created with
// a provider other than *typeinfo.Registry.
func RegisterTypes(descs ...*typeinfo.Descriptor) ModuleOption {
	return func(c *Container) error {
		reg, ok := c.types.(*typeinfo.Registry)
		if !ok {
			return ErrNoTypeRegistry
		}
		return reg.Register(descs...)
	}
}

// Install applies modules in order and stops at the first failure.
func (c *Container) Install(modules ...ModuleOption) error {
	for _, m := range modules {
		if m == nil {
			continue
		}
		if err := m(c); err != nil {
			return err
		}
	}
	return nil
}
