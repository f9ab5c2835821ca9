// Package typeinfo describes constructible types for the container: their
// constructor parameters, their methods and how to call both.
//
// A Registry is an explicit table filled at registration time, either from
// hand-written descriptors:
//
//	types := typeinfo.NewRegistry()
//	types.MustRegister(
//	    typeinfo.Class("Mailer", newMailer,
//	        typeinfo.Dependency("transport", "SMTPTransport"),
//	        typeinfo.ValueOr("from", "noreply@example.com"),
//	    ),
//	)
//
// or derived from Go constructor functions by reflection:
//
//	desc, err := typeinfo.FromConstructor("Mailer", NewMailer,
//	    typeinfo.Names("transport", "from"),
//	    typeinfo.Default("from", "noreply@example.com"),
//	)
package typeinfo

import (
	"fmt"
)

// Kind classifies a type or parameter.
type Kind int

const (
	// KindPrimitive parameters are satisfied by overrides or defaults only.
	KindPrimitive Kind = iota

	// KindClass types can be constructed; parameters of this kind are
	// resolved through the container.
	KindClass

	// KindInterface types are contracts that need a binding to a class.
	KindInterface
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Constructor builds an instance from positional arguments.
type Constructor func(args []any) (any, error)

// Invoker calls a method. recv is nil for static methods.
type Invoker func(recv any, args []any) (any, error)

// Parameter describes one constructor or method parameter.
type Parameter struct {
	Name string
	Kind Kind

	// Type is the declared type identifier for class and interface parameters.
	Type string

	// Builtin marks the declared type as engine-provided rather than
	// defined by the application.
	Builtin bool

	HasDefault bool
	Default    any
}

// Method describes a method that can be invoked on a constructed instance.
type Method struct {
	Name   string
	Params []Parameter
	Public bool
	Static bool
	Invoke Invoker
}

// Descriptor describes a type known to the container.
type Descriptor struct {
	Name     string
	Kind     Kind
	Abstract bool
	Builtin  bool
	Params   []Parameter
	New      Constructor
	Methods  map[string]*Method
}

// Instantiable reports whether the type can be constructed directly.
func (d *Descriptor) Instantiable() bool {
	return d != nil && d.Kind == KindClass && !d.Abstract && d.New != nil
}

// Method returns the named method.
func (d *Descriptor) Method(name string) (*Method, bool) {
	if d == nil || d.Methods == nil {
		return nil, false
	}
	m, ok := d.Methods[name]
	return m, ok
}

// Validate checks the descriptor for structural problems.
func (d *Descriptor) Validate() error {
	if d == nil {
		return ErrDescriptorNil
	}
	if d.Name == "" {
		return InvalidDescriptorError{Reason: "name cannot be empty"}
	}
	if d.Kind == KindPrimitive {
		return InvalidDescriptorError{Name: d.Name, Reason: "a type cannot be primitive"}
	}
	if err := validateParams(d.Name, d.Params); err != nil {
		return err
	}
	for name, m := range d.Methods {
		if m == nil {
			return InvalidDescriptorError{Name: d.Name, Reason: fmt.Sprintf("method %q is nil", name)}
		}
		if m.Name != name {
			return InvalidDescriptorError{Name: d.Name, Reason: fmt.Sprintf("method %q registered as %q", m.Name, name)}
		}
		if m.Public && m.Invoke == nil {
			return InvalidDescriptorError{Name: d.Name, Reason: fmt.Sprintf("method %q has no invoker", name)}
		}
		if err := validateParams(d.Name+"::"+name, m.Params); err != nil {
			return err
		}
	}
	return nil
}

func validateParams(owner string, params []Parameter) error {
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		if p.Name == "" {
			return InvalidDescriptorError{Name: owner, Reason: fmt.Sprintf("parameter %d has no name", i)}
		}
		if seen[p.Name] {
			return InvalidDescriptorError{Name: owner, Reason: fmt.Sprintf("duplicate parameter %q", p.Name)}
		}
		seen[p.Name] = true
		if p.Kind != KindPrimitive && p.Type == "" {
			return InvalidDescriptorError{Name: owner, Reason: fmt.Sprintf("parameter %q has no declared type", p.Name)}
		}
	}
	return nil
}
