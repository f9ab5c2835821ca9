package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCircularDependency is matched by every CircularDependencyError.
var ErrCircularDependency = errors.New("circular dependency detected")

// CircularDependencyError represents a dependency cycle. Path lists the
// nodes in order; the last node depends back on Node.
type CircularDependencyError struct {
	Node string
	Path []string
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	if len(e.Path) == 0 {
		fmt.Fprintf(&b, "    %s\n", e.Node)
		b.WriteString("      ↓\n")
		fmt.Fprintf(&b, "    %s (cycle)\n", e.Node)
	} else {
		for i, node := range e.Path {
			fmt.Fprintf(&b, "    %s\n", node)
			if i < len(e.Path)-1 {
				b.WriteString("      ↓\n")
			}
		}
		b.WriteString("      ↓\n")
		fmt.Fprintf(&b, "    %s (cycle)\n", e.Node)
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Give one of the parameters a default value\n")
	b.WriteString("  • Bind one side of the cycle to a factory\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}

func (e CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}
