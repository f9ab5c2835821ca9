package ioc

import (
	"maps"
	"slices"
	"strconv"
)

// Args holds method parameter overrides, keyed by parameter name or by
// 0-based position. A name match wins over a position match. A nil value
// counts as no override.
type Args struct {
	Named      map[string]any
	Positional map[int]any
}

// Named returns Args with the given name overrides.
func Named(values map[string]any) Args {
	return Args{Named: maps.Clone(values)}
}

// Positional returns Args overriding parameters in order.
func Positional(values ...any) Args {
	a := Args{Positional: make(map[int]any, len(values))}
	for i, v := range values {
		a.Positional[i] = v
	}
	return a
}

// With returns a copy of a with name set to value.
func (a Args) With(name string, value any) Args {
	out := a.clone()
	if out.Named == nil {
		out.Named = make(map[string]any)
	}
	out.Named[name] = value
	return out
}

// At returns a copy of a with position i set to value.
func (a Args) At(i int, value any) Args {
	out := a.clone()
	if out.Positional == nil {
		out.Positional = make(map[int]any)
	}
	out.Positional[i] = value
	return out
}

// IsEmpty reports whether a carries no overrides at all.
func (a Args) IsEmpty() bool {
	return len(a.Named) == 0 && len(a.Positional) == 0
}

// Len returns the number of overrides.
func (a Args) Len() int {
	return len(a.Named) + len(a.Positional)
}

// Keys returns the override keys, names first and then positions, each
// group sorted.
func (a Args) Keys() []string {
	keys := slices.Sorted(maps.Keys(a.Named))
	for _, i := range slices.Sorted(maps.Keys(a.Positional)) {
		keys = append(keys, strconv.Itoa(i))
	}
	return keys
}

func (a Args) lookup(name string, index int) (any, bool) {
	if v, ok := a.Named[name]; ok && v != nil {
		return v, true
	}
	if v, ok := a.Positional[index]; ok && v != nil {
		return v, true
	}
	return nil, false
}

func (a Args) clone() Args {
	return Args{
		Named:      maps.Clone(a.Named),
		Positional: maps.Clone(a.Positional),
	}
}
