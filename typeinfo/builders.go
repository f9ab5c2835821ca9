package typeinfo

// Value declares a primitive parameter without a default.
func Value(name string) Parameter {
	return Parameter{Name: name, Kind: KindPrimitive}
}

// ValueOr declares a primitive parameter with a default.
func ValueOr(name string, def any) Parameter {
	return Parameter{Name: name, Kind: KindPrimitive, HasDefault: true, Default: def}
}

// Dependency declares a class-typed parameter.
func Dependency(name, typ string) Parameter {
	return Parameter{Name: name, Kind: KindClass, Type: typ}
}

// DependencyOr declares a class-typed parameter with a default.
func DependencyOr(name, typ string, def any) Parameter {
	return Parameter{Name: name, Kind: KindClass, Type: typ, HasDefault: true, Default: def}
}

// Contract declares an interface-typed parameter.
func Contract(name, typ string) Parameter {
	return Parameter{Name: name, Kind: KindInterface, Type: typ}
}

// ContractOr declares an interface-typed parameter with a default.
func ContractOr(name, typ string, def any) Parameter {
	return Parameter{Name: name, Kind: KindInterface, Type: typ, HasDefault: true, Default: def}
}

// Internal marks the parameter's declared type as engine-provided.
func (p Parameter) Internal() Parameter {
	p.Builtin = true
	return p
}

// Class describes a constructible type.
func Class(name string, ctor Constructor, params ...Parameter) *Descriptor {
	return &Descriptor{
		Name:   name,
		Kind:   KindClass,
		Params: params,
		New:    ctor,
	}
}

// Interface describes a contract that needs a binding to be resolved.
func Interface(name string) *Descriptor {
	return &Descriptor{Name: name, Kind: KindInterface}
}

// Abstract describes a class that cannot be constructed directly.
func Abstract(name string) *Descriptor {
	return &Descriptor{Name: name, Kind: KindClass, Abstract: true}
}

// Internal marks the type as engine-provided.
func (d *Descriptor) Internal() *Descriptor {
	d.Builtin = true
	return d
}

// WithMethod attaches methods to the descriptor.
func (d *Descriptor) WithMethod(methods ...*Method) *Descriptor {
	if d.Methods == nil {
		d.Methods = make(map[string]*Method, len(methods))
	}
	for _, m := range methods {
		d.Methods[m.Name] = m
	}
	return d
}

// PublicMethod describes an invocable instance method.
func PublicMethod(name string, invoke Invoker, params ...Parameter) *Method {
	return &Method{Name: name, Params: params, Public: true, Invoke: invoke}
}

// StaticMethod describes a method invoked without a receiver.
func StaticMethod(name string, invoke Invoker, params ...Parameter) *Method {
	return &Method{Name: name, Params: params, Public: true, Static: true, Invoke: invoke}
}

// PrivateMethod describes a method that exists but cannot be invoked from
// outside the type.
func PrivateMethod(name string, params ...Parameter) *Method {
	return &Method{Name: name, Params: params}
}
