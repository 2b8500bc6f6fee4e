package dag

import (
	"slices"
)

type Topo struct {
	Order   []NodeID   // зависимости раньше зависимых
	Batches [][]NodeID // волны независимых узлов
	Cyclic  bool
	Cycles  []NodeID // узлы, оставшиеся в цикле
}

// ToposortKahn orders present nodes so that every node follows its
// dependencies. Nodes of one batch do not depend on each other.
func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Deps)
	indeg := make([]int, nodeCount)
	active := 0
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		active++
		for _, to := range g.Deps[i] {
			if g.Present[int(to)] {
				indeg[i]++
			}
		}
	}
	dependents := g.dependents()

	topo := &Topo{Order: make([]NodeID, 0, active)}
	current := make([]NodeID, 0, nodeCount)
	for i := range nodeCount {
		if g.Present[i] && indeg[i] == 0 {
			current = append(current, toNodeID(i))
		}
	}

	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		var next []NodeID
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, dep := range dependents[int(id)] {
				indeg[int(dep)]--
				if indeg[int(dep)] == 0 {
					next = append(next, dep)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, toNodeID(i))
			}
		}
	}
	return topo
}
