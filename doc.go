// Package ioc provides a string-keyed dependency injection container with
// constructor and method autowiring.
//
// # Overview
//
// A Container maps abstract identifiers to concretes and resolves them
// into object graphs. The library provides:
//   - Self-binding: any type the provider can describe resolves without registration
//   - Cached (Get) and fresh (Make) resolution
//   - Factories that build values directly
//   - Method injection with named or positional overrides
//   - Defined errors for every failure, including dependency cycles
//   - Thread-safe operations
//
// # Type Descriptors
//
// The container never inspects Go values on its own. Types are described in
// a typeinfo.Registry, by hand or from constructor functions:
//
//	types := typeinfo.NewRegistry()
//	types.MustRegister(
//	    typeinfo.MustFromConstructor("Mailer", NewMailer,
//	        typeinfo.Names("transport", "from"),
//	        typeinfo.Default("from", "noreply@example.com"),
//	    ),
//	    typeinfo.MustFromConstructor("Transport", NewSMTPTransport),
//	)
//
//	c := ioc.New(types)
//
// # Basic Usage
//
//	mailer, err := c.Get("Mailer")    // built once, then cached
//	fresh, err := c.Make("Mailer")    // built on every call
//
//	c.Set("mailer", ioc.TypeName("Mailer"))
//	c.Set("clock", ioc.Factory(func(r ioc.Resolver) (any, error) {
//	    return time.Now, nil
//	}))
//
// A nil concrete binds an abstract to itself. Set drops the cached value
// for that abstract; Unset removes both the binding and the cached value.
//
// # Dependency Resolution
//
// Each constructor or method parameter is supplied in a fixed order:
//
//   - Primitive parameters take the override, then the declared default,
//     and otherwise fail with ParameterHasNoDefaultValueError.
//   - Class and interface parameters resolve their declared type through
//     Get. When that fails with a resolution error, the declared default is
//     used; without one the failure is reported as a missing value for the
//     innermost unsatisfiable parameter.
//   - An override for an interface parameter that names a known type is
//     resolved through the container; any other override is passed as is.
//
// Constructor, factory and method errors are never replaced by defaults.
//
// # Method Injection
//
//	c.SetMethod("Report", "Render", nil, ioc.Named(map[string]any{
//	    "format": "text",
//	}))
//	out, err := c.GetMethod("Report", "Render", ioc.Args{})
//
// GetMethod caches the method's return value per abstract and method, in a
// table separate from plain bindings. Methods that the descriptor marks as
// non-public are not invoked; the constructed instance is returned instead.
//
// # Cycles
//
// Every call tracks the types, factories and methods in flight. Re-entering
// one fails with a CircularDependencyError listing the path. Factories get
// a Resolver tied to the same chain, so cycles through factories are caught
// as well. Validate finds constructor cycles without building anything.
//
// # Subscript Access
//
// Subscript accepts loosely typed keys (a name, a record or its JSON
// encoding) and turns each into one canonical call:
//
//	s := c.Subscript()
//	s.Assign("Report", `{"concrete":"Report","method":{"name":"Render","parameters":{"format":"html"}}}`)
//	html, err := s.Lookup(`{"abstract":"Report","method":{"name":"Render"}}`)
//
// # Modules and Manifests
//
// Bindings can be grouped in modules, or loaded from a YAML manifest:
//
//	m, err := ioc.LoadManifest("bindings.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.Apply(c); err != nil {
//	    log.Fatal(err)
//	}
package ioc
