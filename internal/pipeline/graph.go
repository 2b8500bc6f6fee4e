package pipeline

import (
	"fmt"
	"slices"

	"tern/internal/dag"
	"tern/internal/diag"
	"tern/internal/project"
	"tern/internal/sema"
	"tern/internal/source"
)

// unitGraph orders units by the modules they import from each other.
type unitGraph struct {
	units   []*UnitResult
	idx     dag.Index
	g       dag.Graph
	slots   []dag.UnitSlot
	owners  map[string]*UnitResult // module -> unit that defines it first
	byNode  map[dag.NodeID]int     // node -> index into units
	batches [][]int
	skipped []int
}

func buildUnitGraph(units []*UnitResult) *unitGraph {
	ug := &unitGraph{units: units, owners: make(map[string]*UnitResult), byNode: make(map[dag.NodeID]int)}

	// модули, объявленные в нескольких юнитах: побеждает первый
	for _, u := range units {
		if u.Unit == nil {
			continue
		}
		local := make(map[string]bool)
		for _, m := range u.Meta.Modules {
			if local[m.Name] {
				continue // повтор внутри юнита сообщает sema
			}
			local[m.Name] = true
			if prev, ok := ug.owners[m.Name]; ok {
				diag.ReportError(diag.BagReporter{Bag: u.pre}, diag.ProjDuplicateModule, m.Span,
					fmt.Sprintf("module %q is already defined by unit %q", m.Name, prev.Meta.Name)).
					WithNote(moduleSpan(prev, m.Name), fmt.Sprintf("previous declaration of %q", m.Name)).
					Emit()
				continue
			}
			ug.owners[m.Name] = u
		}
	}

	var nodes []dag.UnitNode
	for _, u := range units {
		if u.Unit == nil {
			continue
		}
		node := dag.UnitNode{Name: u.Meta.Name, Reporter: diag.BagReporter{Bag: u.pre}}
		if len(u.Meta.Modules) > 0 {
			node.Span = u.Meta.Modules[0].Span
		}
		for _, imp := range u.Meta.ExternalImports() {
			owner, ok := ug.owners[imp.Module]
			if !ok || owner == u {
				// неизвестные модули ищет резолвер, о пропущенных сообщает sema
				continue
			}
			node.Imports = append(node.Imports, dag.ImportRef{Name: owner.Meta.Name, Span: imp.Span})
		}
		nodes = append(nodes, node)
	}

	ug.idx = dag.NewIndex(dag.UnitNames(nodes))
	ug.g, ug.slots = dag.BuildUnitGraph(ug.idx, nodes, nil)
	for i, u := range units {
		if u.Unit == nil {
			continue
		}
		id := ug.idx.NameToID[u.Meta.Name]
		// второй юнит с тем же именем в граф не попадает
		if _, taken := ug.byNode[id]; taken {
			ug.skipped = append(ug.skipped, i)
			continue
		}
		ug.byNode[id] = i
		u.node = int(id)
	}

	topo := dag.ToposortKahn(ug.g)
	dag.ReportCycles(ug.idx, ug.slots, topo)
	for _, batch := range topo.Batches {
		var out []int
		for _, id := range batch {
			if ui, ok := ug.byNode[id]; ok {
				out = append(out, ui)
			}
		}
		slices.Sort(out)
		if len(out) > 0 {
			ug.batches = append(ug.batches, out)
		}
	}
	for _, id := range topo.Cycles {
		if ui, ok := ug.byNode[id]; ok {
			ug.skipped = append(ug.skipped, ui)
		}
	}
	slices.Sort(ug.skipped)
	return ug
}

func moduleSpan(u *UnitResult, module string) source.Span {
	for _, m := range u.Meta.Modules {
		if m.Name == module {
			return m.Span
		}
	}
	return source.Span{}
}

// owns reports whether u is the unit that defines module for the run.
func (ug *unitGraph) owns(u *UnitResult, module string) bool {
	return ug.owners[module] == u
}

// settle records the analysis outcome of u: its unit hash and whether it
// is broken for its importers.
func (ug *unitGraph) settle(u *UnitResult, g *sema.Graph) {
	if u.node < 0 {
		return
	}
	id := dag.NodeID(u.node) //nolint:gosec // node ids come from dag.Index
	deps := make([]project.Digest, 0, len(ug.g.Deps[id]))
	for _, dep := range ug.g.Deps[id] {
		if ui, ok := ug.byNode[dep]; ok {
			deps = append(deps, ug.units[ui].Meta.UnitHash)
		}
	}
	u.Meta.UnitHash = project.Combine(u.Meta.ContentHash, deps...)

	slot := &ug.slots[id]
	for _, bag := range []*diag.Bag{u.pre, g.Bag} {
		for _, d := range bag.Items() {
			if d.Severity == diag.SevError {
				slot.Node.Broken = true
				first := d
				slot.Node.FirstErr = &first
				return
			}
		}
	}
}

func (ug *unitGraph) reportBrokenDeps() {
	dag.ReportBrokenDeps(ug.idx, ug.slots)
}
