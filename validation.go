package ioc

import (
	"github.com/quillwire/ioc/internal/graph"
	"github.com/quillwire/ioc/typeinfo"
)

// dependencyGraph builds the static graph reachable from roots. A node is a
// binding key; its edges are the class and interface constructor
// parameters of the type it constructs that have no default, since only
// those must be resolved. Factories are opaque and contribute no edges.
func (c *Container) dependencyGraph(roots []string) *graph.DependencyGraph {
	if len(roots) == 0 {
		for _, b := range c.Bindings() {
			if b.Method == "" {
				roots = append(roots, b.Abstract)
			}
		}
	}

	g := graph.NewDependencyGraph()
	visited := make(map[string]bool)

	var visit func(abstract string)
	visit = func(abstract string) {
		if visited[abstract] {
			return
		}
		visited[abstract] = true

		target := abstract
		if concrete, ok := c.reg.peek(abstract); ok {
			switch v := concrete.(type) {
			case Factory:
				g.AddNode(abstract)
				return
			case TypeName:
				target = string(v)
			}
		}

		deps := requiredDependencies(c.types, target)
		g.AddNode(abstract, deps...)
		for _, dep := range deps {
			visit(dep)
		}
	}

	for _, root := range roots {
		visit(root)
	}
	return g
}

// requiredDependencies lists the declared types that constructing typeName
// must resolve. Unknown or non-instantiable types have none; they fail at
// resolution time with their own error.
func requiredDependencies(types typeinfo.Provider, typeName string) []string {
	desc, err := types.Describe(typeName)
	if err != nil || !desc.Instantiable() {
		return nil
	}

	var deps []string
	for _, p := range desc.Params {
		if p.Kind == typeinfo.KindPrimitive || p.HasDefault {
			continue
		}
		deps = append(deps, p.Type)
	}
	return deps
}
