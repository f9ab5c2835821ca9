package typeinfo

import (
	"fmt"
	"reflect"

	"github.com/quillwire/ioc/internal/reflection"
)

var analyzer = reflection.New()

// Option configures FromConstructor.
type Option func(*reflectOptions)

type reflectOptions struct {
	names    []string
	defaults map[string]any
	methods  []*methodOptions
	builtin  bool
}

type methodOptions struct {
	name     string
	names    []string
	defaults map[string]any
}

func (o *reflectOptions) method(name string) *methodOptions {
	for _, m := range o.methods {
		if m.name == name {
			return m
		}
	}
	m := &methodOptions{name: name, defaults: make(map[string]any)}
	o.methods = append(o.methods, m)
	return m
}

// Names assigns constructor parameter names in order. Unnamed parameters
// are called arg0, arg1 and so on.
func Names(names ...string) Option {
	return func(o *reflectOptions) {
		o.names = names
	}
}

// Default declares a default value for the named constructor parameter.
func Default(param string, value any) Option {
	return func(o *reflectOptions) {
		o.defaults[param] = value
	}
}

// Expose makes an exported method of the constructed type invocable by the
// container, optionally naming its parameters.
func Expose(method string, names ...string) Option {
	return func(o *reflectOptions) {
		o.method(method).names = names
	}
}

// MethodDefault declares a default value for a parameter of an exposed method.
// The method is exposed if it was not already.
func MethodDefault(method, param string, value any) Option {
	return func(o *reflectOptions) {
		o.method(method).defaults[param] = value
	}
}

// AsInternal marks the described type as engine-provided.
func AsInternal() Option {
	return func(o *reflectOptions) {
		o.builtin = true
	}
}

// NameOf returns the type identifier FromConstructor uses for T.
func NameOf[T any]() string {
	return reflection.TypeName(reflect.TypeFor[T]())
}

// InterfaceOf describes the interface type T under its NameOf identifier.
func InterfaceOf[T any]() *Descriptor {
	return Interface(NameOf[T]())
}

// FromConstructor derives a class descriptor from a Go constructor function.
//
// Struct and pointer-to-struct parameters become class dependencies,
// interface parameters become contracts and everything else is a primitive
// value. Dependency types are identified by NameOf, so a registry filled
// with FromConstructor resolves its own graph without extra wiring.
func FromConstructor(name string, ctor any, opts ...Option) (*Descriptor, error) {
	o := &reflectOptions{defaults: make(map[string]any)}
	for _, opt := range opts {
		opt(o)
	}

	info, err := analyzer.Analyze(ctor)
	if err != nil {
		return nil, InvalidDescriptorError{Name: name, Reason: err.Error()}
	}
	if info.Result == nil {
		return nil, InvalidDescriptorError{Name: name, Reason: "constructor returns no value"}
	}

	params, err := reflectParams(name, info.Parameters, o.names, o.defaults)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{
		Name:    name,
		Kind:    KindClass,
		Builtin: o.builtin,
		Params:  params,
		New: func(args []any) (any, error) {
			return reflection.Call(info, nil, args)
		},
	}

	for _, mo := range o.methods {
		m, err := reflectMethod(name, info.Result, mo)
		if err != nil {
			return nil, err
		}
		d.WithMethod(m)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// MustFromConstructor is like FromConstructor but panics on error.
func MustFromConstructor(name string, ctor any, opts ...Option) *Descriptor {
	d, err := FromConstructor(name, ctor, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

func reflectMethod(owner string, recv reflect.Type, mo *methodOptions) (*Method, error) {
	mi, err := analyzer.AnalyzeMethod(recv, mo.name)
	if err != nil {
		return nil, InvalidDescriptorError{Name: owner, Reason: err.Error()}
	}

	params, err := reflectParams(owner+"::"+mo.name, mi.Parameters, mo.names, mo.defaults)
	if err != nil {
		return nil, err
	}

	return PublicMethod(mo.name, func(recv any, args []any) (any, error) {
		return reflection.Call(mi, recv, args)
	}, params...), nil
}

func reflectParams(owner string, infos []reflection.ParameterInfo, names []string, defaults map[string]any) ([]Parameter, error) {
	if len(names) > len(infos) {
		return nil, InvalidDescriptorError{
			Name:   owner,
			Reason: fmt.Sprintf("%d parameter names given for %d parameters", len(names), len(infos)),
		}
	}

	params := make([]Parameter, len(infos))
	known := make(map[string]bool, len(infos))
	for i, pi := range infos {
		p := Parameter{
			Name:    fmt.Sprintf("arg%d", i),
			Builtin: pi.Builtin,
		}
		if i < len(names) && names[i] != "" {
			p.Name = names[i]
		}

		switch pi.Category {
		case reflection.Struct:
			p.Kind = KindClass
			p.Type = pi.TypeName
		case reflection.Interface:
			p.Kind = KindInterface
			p.Type = pi.TypeName
		default:
			p.Kind = KindPrimitive
		}

		if def, ok := defaults[p.Name]; ok {
			p.HasDefault = true
			p.Default = def
		}

		known[p.Name] = true
		params[i] = p
	}

	for name := range defaults {
		if !known[name] {
			return nil, InvalidDescriptorError{Name: owner, Reason: fmt.Sprintf("default for unknown parameter %q", name)}
		}
	}
	return params, nil
}
