package dag

import (
	"slices"
)

// Graph stores dependency edges: Deps[n] lists the nodes n depends on.
type Graph struct {
	Deps     [][]NodeID
	Present  []bool // узел реально определён, а не только упомянут
	SelfLoop []bool
}

func NewGraph(n int) Graph {
	return Graph{
		Deps:     make([][]NodeID, n),
		Present:  make([]bool, n),
		SelfLoop: make([]bool, n),
	}
}

// AddEdge records that from depends on to. Self edges only set SelfLoop.
func (g *Graph) AddEdge(from, to NodeID) {
	if from == to {
		g.SelfLoop[int(from)] = true
		return
	}
	if slices.Contains(g.Deps[int(from)], to) {
		return
	}
	g.Deps[int(from)] = append(g.Deps[int(from)], to)
}

// Normalize sorts adjacency lists so traversals are deterministic.
func (g *Graph) Normalize() {
	for i := range g.Deps {
		slices.Sort(g.Deps[i])
	}
}

// dependents inverts Deps, keeping only present nodes.
func (g Graph) dependents() [][]NodeID {
	out := make([][]NodeID, len(g.Deps))
	for from, deps := range g.Deps {
		if !g.Present[from] {
			continue
		}
		for _, to := range deps {
			if g.Present[int(to)] {
				out[int(to)] = append(out[int(to)], toNodeID(from))
			}
		}
	}
	return out
}
