package graph

import (
	"fmt"
	"io"
	"strconv"
)

// WriteDOT writes the graph in Graphviz DOT format.
func (g *DependencyGraph) WriteDOT(w io.Writer) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, err := fmt.Fprintln(w, "digraph dependencies {"); err != nil {
		return err
	}
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box];")

	keys := g.sortedKeys()
	ids := make(map[string]string, len(keys))
	for i, key := range keys {
		ids[key] = fmt.Sprintf("n%d", i)
		fmt.Fprintf(w, "  %s [label=%s];\n", ids[key], strconv.Quote(key))
	}

	for _, key := range keys {
		for _, dep := range g.nodes[key].Dependencies {
			fmt.Fprintf(w, "  %s -> %s;\n", ids[key], ids[dep])
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}
