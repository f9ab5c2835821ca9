package ioc

import (
	"maps"
	"slices"
	"strconv"

	"github.com/quillwire/ioc/typeinfo"
)

// callMethod invokes method on a constructed instance of desc, supplying its
// parameters with the dependency policy and the given overrides.
//
// A method the type declares but does not expose returns the instance
// itself without being invoked.
func (rc *resolutionContext) callMethod(desc *typeinfo.Descriptor, instance any, method string, args Args) (any, error) {
	m, ok := desc.Method(method)
	if !ok {
		return nil, MethodNotFoundError{Type: desc.Name, Method: method}
	}
	if !m.Public {
		rc.c.logger.Debug("method not public, returning instance",
			"type", desc.Name,
			"method", method,
		)
		return instance, nil
	}

	if rc.c.strict {
		if err := checkOverrides(desc.Name, m, args); err != nil {
			return nil, err
		}
	}

	if err := rc.push(frame{kind: methodFrame, name: desc.Name, method: method}); err != nil {
		return nil, err
	}
	defer rc.pop()

	values := make([]any, len(m.Params))
	for i, p := range m.Params {
		override, overridden := args.lookup(p.Name, i)
		v, err := rc.dependency(desc.Name, method, p, override, overridden)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	recv := instance
	if m.Static {
		recv = nil
	}

	return rc.invoke(desc.Name, method, func() (any, error) {
		return m.Invoke(recv, values)
	})
}

// checkOverrides rejects overrides that do not match any parameter of m.
func checkOverrides(typeName string, m *typeinfo.Method, args Args) error {
	for _, name := range slices.Sorted(maps.Keys(args.Named)) {
		if !slices.ContainsFunc(m.Params, func(p typeinfo.Parameter) bool { return p.Name == name }) {
			return ParameterNotFoundError{Service: typeName, Method: m.Name, Parameter: name}
		}
	}
	for _, i := range slices.Sorted(maps.Keys(args.Positional)) {
		if i < 0 || i >= len(m.Params) {
			return ParameterNotFoundError{Service: typeName, Method: m.Name, Parameter: "#" + strconv.Itoa(i)}
		}
	}
	return nil
}
