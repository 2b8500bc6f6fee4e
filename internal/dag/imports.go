package dag

import (
	"fmt"
	"strings"

	"tern/internal/diag"
	"tern/internal/source"
)

// ImportRef is one import edge: the imported unit and the span of the
// import that caused it.
type ImportRef struct {
	Name string
	Span source.Span
}

// UnitNode is one analysable unit together with the units it imports.
type UnitNode struct {
	Name     string
	Span     source.Span
	Imports  []ImportRef
	Reporter diag.Reporter
	Broken   bool
	FirstErr *diag.Diagnostic
}

type UnitSlot struct {
	Node    UnitNode
	Present bool
}

// UnitNames collects unit names together with everything they import,
// ready for BuildIndex.
func UnitNames(nodes []UnitNode) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
		for _, imp := range n.Imports {
			names = append(names, imp.Name)
		}
	}
	return names
}

// BuildUnitGraph links units by their imports. Imports satisfied by
// external (already compiled) units are accepted silently when external
// reports them; everything else that is not present is missing.
func BuildUnitGraph(idx Index, nodes []UnitNode, external func(string) bool) (Graph, []UnitSlot) {
	g := NewGraph(idx.Len())
	slots := make([]UnitSlot, idx.Len())
	for i, name := range idx.IDToName {
		slots[i].Node.Name = name
	}

	for _, node := range nodes {
		id, ok := idx.NameToID[node.Name]
		if !ok || node.Name == "" {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			diag.ReportError(node.Reporter, diag.ProjDuplicateModule, node.Span,
				fmt.Sprintf("duplicate unit %q", node.Name)).
				WithNote(slot.Node.Span, fmt.Sprintf("previous declaration of %q", node.Name)).
				Emit()
			continue
		}
		slot.Node = node
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		for _, dep := range slot.Node.Imports {
			toID, ok := idx.NameToID[dep.Name]
			if !ok {
				continue
			}
			if toNodeID(from) == toID {
				diag.ReportError(slot.Node.Reporter, diag.ProjSelfImport, dep.Span,
					fmt.Sprintf("unit %q imports itself", slot.Node.Name)).Emit()
				continue
			}
			if !g.Present[int(toID)] {
				if external != nil && external(dep.Name) {
					continue
				}
				diag.ReportError(slot.Node.Reporter, diag.ProjMissingModule, dep.Span,
					fmt.Sprintf("unit %q imports missing unit %q", slot.Node.Name, dep.Name)).Emit()
				continue
			}
			g.AddEdge(toNodeID(from), toID)
		}
	}
	g.Normalize()
	return g, slots
}

// ReportCycles reports every unit left over by Kahn's algorithm.
func ReportCycles(idx Index, slots []UnitSlot, topo *Topo) {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	summary := strings.Join(idx.Names(topo.Cycles), " -> ")
	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present {
			continue
		}
		msg := fmt.Sprintf("unit %q participates in an import cycle: %s", slot.Node.Name, summary)
		diag.ReportError(slot.Node.Reporter, diag.ProjImportCycle, slot.Node.Span, msg).Emit()
	}
}

// ReportBrokenDeps tells importers which of their dependencies failed.
func ReportBrokenDeps(idx Index, slots []UnitSlot) {
	for i := range slots {
		from := &slots[i]
		if !from.Present {
			continue
		}
		emitted := make(map[string]struct{}, len(from.Node.Imports))
		for _, imp := range from.Node.Imports {
			toID, ok := idx.NameToID[imp.Name]
			if !ok {
				continue
			}
			dep := slots[int(toID)]
			if !dep.Node.Broken {
				continue
			}
			key := imp.Name + "|" + imp.Span.String()
			if _, seen := emitted[key]; seen {
				continue
			}
			emitted[key] = struct{}{}

			b := diag.ReportError(from.Node.Reporter, diag.ProjDependencyFailed, imp.Span,
				fmt.Sprintf("dependency unit %q has errors", imp.Name))
			if dep.Node.FirstErr != nil {
				b.WithNote(dep.Node.FirstErr.Primary, "first error in dependency: "+dep.Node.FirstErr.Message)
			}
			b.Emit()
		}
	}
}
