package dag

import (
	"slices"
)

// Component is a strongly connected group of nodes. Cyclic is true when the
// group has more than one node; a lone node with a self edge is recursive
// but not cyclic.
type Component struct {
	Nodes     []NodeID
	Cyclic    bool
	Recursive bool
}

// StronglyConnected returns the components of the present nodes with
// dependencies before dependents (Tarjan). Nodes inside a component are
// sorted by id, so the order is stable for a given index.
func StronglyConnected(g Graph) []Component {
	n := len(g.Deps)
	const unvisited = -1
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	var (
		stack []NodeID
		out   []Component
		next  int
	)

	var visit func(v NodeID)
	visit = func(v NodeID) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Deps[v] {
			if !g.Present[w] {
				continue
			}
			switch {
			case index[w] == unvisited:
				visit(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}
		var comp Component
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp.Nodes = append(comp.Nodes, w)
			if w == v {
				break
			}
		}
		slices.Sort(comp.Nodes)
		comp.Cyclic = len(comp.Nodes) > 1
		comp.Recursive = comp.Cyclic || g.SelfLoop[v]
		out = append(out, comp)
	}

	for i := range n {
		if g.Present[i] && index[i] == unvisited {
			visit(toNodeID(i))
		}
	}
	return out
}
