package graph

import (
	"slices"
	"sync"
)

// DependencyGraph manages the dependency relationships between services.
// Nodes are identified by name; edges point from a node to the nodes it
// depends on.
type DependencyGraph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

// Node represents a service in the dependency graph.
type Node struct {
	Key          string
	Dependencies []string
	Dependents   []string
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*Node),
	}
}

// AddNode adds key with its dependencies, replacing any edges it had.
// Dependency nodes are created on demand.
func (g *DependencyGraph) AddNode(key string, deps ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.ensure(key)
	for _, old := range node.Dependencies {
		if dep := g.nodes[old]; dep != nil {
			dep.Dependents = slices.DeleteFunc(dep.Dependents, func(k string) bool { return k == key })
		}
	}

	node.Dependencies = make([]string, 0, len(deps))
	for _, dep := range deps {
		if slices.Contains(node.Dependencies, dep) {
			continue
		}
		node.Dependencies = append(node.Dependencies, dep)
		depNode := g.ensure(dep)
		depNode.Dependents = append(depNode.Dependents, key)
	}
}

func (g *DependencyGraph) ensure(key string) *Node {
	node, ok := g.nodes[key]
	if !ok {
		node = &Node{Key: key}
		g.nodes[key] = node
	}
	return node
}

// HasNode reports whether key is in the graph.
func (g *DependencyGraph) HasNode(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[key]
	return ok
}

// Dependencies returns the direct dependencies of key.
func (g *DependencyGraph) Dependencies(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if node, ok := g.nodes[key]; ok {
		return slices.Clone(node.Dependencies)
	}
	return nil
}

// Dependents returns the nodes that depend directly on key.
func (g *DependencyGraph) Dependents(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if node, ok := g.nodes[key]; ok {
		return slices.Clone(node.Dependents)
	}
	return nil
}

// Size returns the number of nodes.
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Keys returns all node keys in sorted order.
func (g *DependencyGraph) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sortedKeys()
}

func (g *DependencyGraph) sortedKeys() []string {
	keys := make([]string, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// DetectCycles returns a CircularDependencyError for the first cycle found,
// visiting nodes in sorted order so the result is deterministic.
func (g *DependencyGraph) DetectCycles() error {
	_, err := g.TopologicalSort()
	return err
}

// IsAcyclic reports whether the graph has no cycles.
func (g *DependencyGraph) IsAcyclic() bool {
	return g.DetectCycles() == nil
}

// TopologicalSort orders nodes so that every node comes after its
// dependencies.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(g.nodes))
	order := make([]string, 0, len(g.nodes))
	var path []string

	var visit func(key string) error
	visit = func(key string) error {
		switch state[key] {
		case done:
			return nil
		case visiting:
			start := slices.Index(path, key)
			return CircularDependencyError{Node: key, Path: slices.Clone(path[start:])}
		}

		state[key] = visiting
		path = append(path, key)

		if node := g.nodes[key]; node != nil {
			for _, dep := range node.Dependencies {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		state[key] = done
		order = append(order, key)
		return nil
	}

	for _, key := range g.sortedKeys() {
		if err := visit(key); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// Roots returns nodes nothing depends on, sorted.
func (g *DependencyGraph) Roots() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var roots []string
	for _, key := range g.sortedKeys() {
		if len(g.nodes[key].Dependents) == 0 {
			roots = append(roots, key)
		}
	}
	return roots
}
