package ioc

import (
	"fmt"
	"runtime/debug"
	"slices"

	"github.com/quillwire/ioc/typeinfo"
)

type frameKind uint8

const (
	typeFrame frameKind = iota
	factoryFrame
	methodFrame
)

// frame is one in-flight construction on a resolution chain.
type frame struct {
	kind   frameKind
	name   string
	method string
}

func (f frame) String() string {
	return owner(f.name, f.method)
}

// resolutionContext carries the chain of frames for one top-level call.
// It is not shared between goroutines.
type resolutionContext struct {
	c      *Container
	frames []frame
}

func (c *Container) newContext(frames []frame) *resolutionContext {
	return &resolutionContext{c: c, frames: slices.Clone(frames)}
}

func (rc *resolutionContext) push(f frame) error {
	for i, g := range rc.frames {
		if g == f {
			path := make([]string, 0, len(rc.frames)-i)
			for _, p := range rc.frames[i:] {
				path = append(path, p.String())
			}
			return CircularDependencyError{Node: f.String(), Path: path}
		}
	}

	if len(rc.frames) >= rc.c.maxDepth {
		path := make([]string, 0, len(rc.frames)+1)
		for _, p := range rc.frames {
			path = append(path, p.String())
		}
		return ResolutionDepthError{
			Service: f.String(),
			Limit:   rc.c.maxDepth,
			Path:    append(path, f.String()),
		}
	}

	rc.frames = append(rc.frames, f)
	return nil
}

func (rc *resolutionContext) pop() {
	rc.frames = rc.frames[:len(rc.frames)-1]
}

func (rc *resolutionContext) get(abstract string) (any, bool, error) {
	v, cached, epoch, implicit := rc.c.reg.lookup(abstract)
	if cached {
		return v, true, nil
	}
	if implicit {
		rc.c.logger.Debug("implicit self-binding", "abstract", abstract)
	}

	v, err := rc.make(abstract)
	if err != nil {
		rc.c.reg.abandon(abstract)
		return nil, false, err
	}
	return rc.c.reg.remember(abstract, epoch, v), false, nil
}

func (rc *resolutionContext) getMethod(abstract, method string, args Args) (any, bool, error) {
	key := methodKey{abstract, method}
	v, cached, epoch, implicit := rc.c.reg.lookupMethod(key)
	if cached {
		return v, true, nil
	}
	if implicit {
		rc.c.logger.Debug("implicit self-binding", "abstract", abstract, "method", method)
	}

	v, err := rc.makeMethod(abstract, method, args)
	if err != nil {
		rc.c.reg.abandonMethod(key)
		return nil, false, err
	}
	return rc.c.reg.rememberMethod(key, epoch, v), false, nil
}

func (rc *resolutionContext) make(abstract string) (any, error) {
	return rc.build(abstract, "", rc.c.reg.binding(abstract), Args{})
}

func (rc *resolutionContext) makeMethod(abstract, method string, args Args) (any, error) {
	b := rc.c.reg.methodBinding(methodKey{abstract, method})
	if args.IsEmpty() {
		args = b.args
	}
	return rc.build(abstract, method, b.concrete, args)
}

// build turns a binding target into a value. A factory's result is returned
// directly, even for method bindings.
func (rc *resolutionContext) build(abstract, method string, concrete Concrete, args Args) (any, error) {
	switch c := concrete.(type) {
	case Factory:
		return rc.callFactory(abstract, method, c)
	case TypeName:
		return rc.construct(string(c), method, args)
	default:
		return rc.construct(abstract, method, args)
	}
}

func (rc *resolutionContext) callFactory(abstract, method string, factory Factory) (any, error) {
	if factory == nil {
		return nil, ServiceNotInstantiableError{Type: abstract, Kind: typeinfo.KindClass}
	}
	if err := rc.push(frame{kind: factoryFrame, name: abstract, method: method}); err != nil {
		return nil, err
	}
	defer rc.pop()

	r := chainResolver{c: rc.c, frames: slices.Clone(rc.frames)}
	return rc.invoke(abstract, method, func() (any, error) {
		return factory(r)
	})
}

// construct describes typeName, resolves its constructor parameters and
// builds it. With a method, the instance goes to the method invoker and
// its result is returned instead.
func (rc *resolutionContext) construct(typeName, method string, args Args) (any, error) {
	desc, err := rc.c.types.Describe(typeName)
	if err != nil || desc == nil {
		return nil, ServiceNotFoundError{Type: typeName, Cause: err}
	}
	if !desc.Instantiable() {
		return nil, ServiceNotInstantiableError{Type: typeName, Kind: desc.Kind}
	}

	instance, err := rc.instantiate(desc)
	if err != nil {
		return nil, err
	}

	if method == "" {
		return instance, nil
	}
	return rc.callMethod(desc, instance, method, args)
}

// instantiate runs the constructor. The type's frame covers parameter
// resolution and the constructor call but not the method invocation.
func (rc *resolutionContext) instantiate(desc *typeinfo.Descriptor) (any, error) {
	if err := rc.push(frame{kind: typeFrame, name: desc.Name}); err != nil {
		return nil, err
	}
	defer rc.pop()

	values := make([]any, len(desc.Params))
	for i, p := range desc.Params {
		v, err := rc.dependency(desc.Name, "", p, nil, false)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return rc.invoke(desc.Name, "", func() (any, error) {
		return desc.New(values)
	})
}

// dependency supplies a value for one constructor or method parameter.
func (rc *resolutionContext) dependency(service, method string, p typeinfo.Parameter, override any, overridden bool) (any, error) {
	if p.Kind == typeinfo.KindPrimitive {
		if overridden {
			return override, nil
		}
		if p.HasDefault {
			return p.Default, nil
		}
		return nil, ParameterHasNoDefaultValueError{Service: service, Method: method, Parameter: p.Name}
	}

	if p.Builtin {
		rc.c.Set(p.Type, nil)
	}

	if overridden && p.Kind == typeinfo.KindInterface {
		return rc.interfaceOverride(override)
	}

	v, _, err := rc.get(p.Type)
	if err == nil {
		return v, nil
	}
	if !recoverable(err) {
		return nil, err
	}

	if p.HasDefault {
		rc.c.logger.Debug("using default value",
			"service", owner(service, method),
			"parameter", p.Name,
			"cause", err,
		)
		return p.Default, nil
	}

	switch err.(type) {
	case ParameterHasNoDefaultValueError, CircularDependencyError:
		return nil, err
	}
	return nil, ParameterHasNoDefaultValueError{Service: service, Method: method, Parameter: p.Name, Cause: err}
}

// interfaceOverride resolves an override for an interface parameter. An
// override naming a type the provider knows is resolved through the
// container; anything else is used as a literal value. Once the provider
// knows the name, a failure to resolve it is returned and the literal is
// not used.
func (rc *resolutionContext) interfaceOverride(override any) (any, error) {
	var name string
	switch v := override.(type) {
	case string:
		name = v
	case TypeName:
		name = string(v)
	default:
		return override, nil
	}

	desc, err := rc.c.types.Describe(name)
	if err != nil || desc == nil {
		return override, nil
	}
	if desc.Builtin {
		rc.c.Set(name, nil)
	}

	v, _, err := rc.get(name)
	return v, err
}

// invoke runs user code, recovering panics and wrapping returned errors
// that do not already come from the container.
func (rc *resolutionContext) invoke(service, method string, fn func() (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = PanicError{Service: service, Method: method, Panic: r, Stack: debug.Stack()}
		}
	}()

	v, err = fn()
	if err != nil {
		if passthrough(err) {
			return nil, err
		}
		return nil, ConstructorError{Service: service, Method: method, Cause: err}
	}
	return v, nil
}

// chainResolver is the Resolver handed to factories. Every call starts a
// new context from a copy of the factory's chain, so the resolver can be
// kept or shared without corrupting the chain it came from.
type chainResolver struct {
	c      *Container
	frames []frame
}

var _ Resolver = chainResolver{}

func (r chainResolver) Get(abstract string) (any, error) {
	v, _, err := r.c.newContext(r.frames).get(abstract)
	return v, err
}

func (r chainResolver) GetMethod(abstract, method string, args Args) (any, error) {
	v, _, err := r.c.newContext(r.frames).getMethod(abstract, method, args)
	return v, err
}

func (r chainResolver) Make(abstract string) (any, error) {
	return r.c.newContext(r.frames).make(abstract)
}

func (r chainResolver) MakeMethod(abstract, method string, args Args) (any, error) {
	return r.c.newContext(r.frames).makeMethod(abstract, method, args)
}

func (r chainResolver) Has(abstract string) bool {
	return r.c.Has(abstract)
}

func (r chainResolver) HasMethod(abstract, method string) bool {
	return r.c.HasMethod(abstract, method)
}

func (r chainResolver) Container() *Container {
	return r.c
}

func (r chainResolver) String() string {
	return fmt.Sprintf("resolver(%s, depth %d)", r.c.id, len(r.frames))
}
