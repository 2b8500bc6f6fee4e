package dag

import (
	"slices"
	"testing"

	"tern/internal/diag"
	"tern/internal/source"
)

func batchesToNames(idx Index, batches [][]NodeID) [][]string {
	out := make([][]string, len(batches))
	for i, batch := range batches {
		out[i] = idx.Names(batch)
	}
	return out
}

func TestBuildIndexSortsAndDedups(t *testing.T) {
	idx := BuildIndex([]string{"Main", "Prelude", "Data.List", "Prelude", ""})
	want := []string{"Data.List", "Main", "Prelude"}
	if !slices.Equal(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id, ok := idx.NameToID[name]; !ok || int(id) != i {
			t.Fatalf("NameToID[%q] = %v, want %d", name, id, i)
		}
	}
}

func TestNewIndexKeepsOrder(t *testing.T) {
	idx := NewIndex([]string{"z", "a", "z", "m"})
	if !slices.Equal(idx.IDToName, []string{"z", "a", "m"}) {
		t.Fatalf("IDToName = %v", idx.IDToName)
	}
}

func TestBuildUnitGraphReportsProblems(t *testing.T) {
	mainSpan := source.Span{File: 1, Start: 0, End: 4}
	selfSpan := source.Span{File: 1, Start: 10, End: 14}
	missingSpan := source.Span{File: 1, Start: 20, End: 25}

	bagMain := diag.NewBag(10)
	bagDup := diag.NewBag(10)
	nodes := []UnitNode{
		{
			Name: "Main",
			Span: mainSpan,
			Imports: []ImportRef{
				{Name: "Main", Span: selfSpan},
				{Name: "Ghost", Span: missingSpan},
				{Name: "Prelude"},
				{Name: "Lib"},
			},
			Reporter: diag.BagReporter{Bag: bagMain},
		},
		{Name: "Lib"},
		{Name: "Lib", Span: source.Span{File: 2, Start: 3, End: 6}, Reporter: diag.BagReporter{Bag: bagDup}},
	}
	idx := BuildIndex(UnitNames(nodes))
	g, slots := BuildUnitGraph(idx, nodes, func(name string) bool { return name == "Prelude" })

	items := bagMain.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics for Main, got %d: %+v", len(items), items)
	}
	if items[0].Code != diag.ProjSelfImport || items[0].Primary != selfSpan {
		t.Fatalf("unexpected first diagnostic: %+v", items[0])
	}
	if items[1].Code != diag.ProjMissingModule || items[1].Primary != missingSpan {
		t.Fatalf("unexpected second diagnostic: %+v", items[1])
	}

	dup := bagDup.Items()
	if len(dup) != 1 || dup[0].Code != diag.ProjDuplicateModule {
		t.Fatalf("expected duplicate unit diagnostic, got %+v", dup)
	}

	mainID := idx.NameToID["Main"]
	libID := idx.NameToID["Lib"]
	if !slices.Equal(g.Deps[mainID], []NodeID{libID}) {
		t.Fatalf("Main deps = %v, want [Lib]", idx.Names(g.Deps[mainID]))
	}
	if slots[idx.NameToID["Prelude"]].Present {
		t.Fatalf("external unit must not be present")
	}
}

func TestToposortKahnBatches(t *testing.T) {
	nodes := []UnitNode{
		{Name: "App", Imports: []ImportRef{{Name: "Core"}, {Name: "Util"}}},
		{Name: "Core", Imports: []ImportRef{{Name: "Base"}}},
		{Name: "Util", Imports: []ImportRef{{Name: "Base"}}},
		{Name: "Base"},
	}
	idx := BuildIndex(UnitNames(nodes))
	g, _ := BuildUnitGraph(idx, nodes, nil)
	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("unexpected cycle: %v", idx.Names(topo.Cycles))
	}
	got := batchesToNames(idx, topo.Batches)
	want := [][]string{{"Base"}, {"Core", "Util"}, {"App"}}
	if len(got) != len(want) {
		t.Fatalf("batches = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("batch %d = %v, want %v", i, got[i], want[i])
		}
	}
	if order := idx.Names(topo.Order); !slices.Equal(order, []string{"Base", "Core", "Util", "App"}) {
		t.Fatalf("order = %v", order)
	}
}

func TestReportCycles(t *testing.T) {
	bagA := diag.NewBag(10)
	bagB := diag.NewBag(10)
	nodes := []UnitNode{
		{Name: "A", Imports: []ImportRef{{Name: "B"}}, Reporter: diag.BagReporter{Bag: bagA}},
		{Name: "B", Imports: []ImportRef{{Name: "A"}}, Reporter: diag.BagReporter{Bag: bagB}},
		{Name: "C"},
	}
	idx := BuildIndex(UnitNames(nodes))
	g, slots := BuildUnitGraph(idx, nodes, nil)
	topo := ToposortKahn(g)
	if !topo.Cyclic {
		t.Fatalf("expected cycle")
	}
	if !slices.Equal(idx.Names(topo.Cycles), []string{"A", "B"}) {
		t.Fatalf("cycles = %v", idx.Names(topo.Cycles))
	}
	ReportCycles(idx, slots, topo)
	for name, bag := range map[string]*diag.Bag{"A": bagA, "B": bagB} {
		items := bag.Items()
		if len(items) != 1 || items[0].Code != diag.ProjImportCycle {
			t.Fatalf("unit %s: expected one cycle diagnostic, got %+v", name, items)
		}
	}
}

func TestReportBrokenDeps(t *testing.T) {
	bagApp := diag.NewBag(10)
	first := diag.NewError(diag.SemaTypeMismatch, source.Span{File: 2, Start: 1, End: 2}, "boom")
	impSpan := source.Span{File: 1, Start: 4, End: 7}
	nodes := []UnitNode{
		{Name: "App", Imports: []ImportRef{{Name: "Lib", Span: impSpan}}, Reporter: diag.BagReporter{Bag: bagApp}},
		{Name: "Lib", Broken: true, FirstErr: &first},
	}
	idx := BuildIndex(UnitNames(nodes))
	_, slots := BuildUnitGraph(idx, nodes, nil)
	ReportBrokenDeps(idx, slots)
	items := bagApp.Items()
	if len(items) != 1 || items[0].Code != diag.ProjDependencyFailed || items[0].Primary != impSpan {
		t.Fatalf("unexpected diagnostics: %+v", items)
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Span != first.Primary {
		t.Fatalf("expected note pointing to first error, got %+v", items[0].Notes)
	}
}

func TestStronglyConnectedOrdersDependenciesFirst(t *testing.T) {
	// f -> g -> h -> g, h -> k, k -> k, m
	idx := NewIndex([]string{"f", "g", "h", "k", "m"})
	g := NewGraph(idx.Len())
	for i := range g.Present {
		g.Present[i] = true
	}
	id := func(name string) NodeID { return idx.NameToID[name] }
	g.AddEdge(id("f"), id("g"))
	g.AddEdge(id("g"), id("h"))
	g.AddEdge(id("h"), id("g"))
	g.AddEdge(id("h"), id("k"))
	g.AddEdge(id("k"), id("k"))
	g.Normalize()

	comps := StronglyConnected(g)
	var got [][]string
	for _, c := range comps {
		got = append(got, idx.Names(c.Nodes))
	}
	want := [][]string{{"k"}, {"g", "h"}, {"f"}, {"m"}}
	if len(got) != len(want) {
		t.Fatalf("components = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("component %d = %v, want %v", i, got[i], want[i])
		}
	}
	if comps[0].Cyclic || !comps[0].Recursive {
		t.Fatalf("self loop must be recursive but not cyclic: %+v", comps[0])
	}
	if !comps[1].Cyclic {
		t.Fatalf("g/h must be cyclic")
	}
	if comps[2].Recursive {
		t.Fatalf("f is not recursive")
	}
}
