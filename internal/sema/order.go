package sema

import (
	"context"
	"fmt"
	"strings"

	"tern/internal/ast"
	"tern/internal/dag"
	"tern/internal/diag"
	"tern/internal/ident"
)

// Order sorts value and instance definitions so that every definition
// follows the definitions it references. Each strongly connected group of
// more than one value is reported once as a cyclic dependency and still
// emitted, as one group.
func Order(ctx context.Context, g *Graph) *Graph {
	span := beginStage(ctx, "order")
	defer span.End("")

	out := g.next("order")
	out.Order = nil

	var (
		names []string
		nodes []DefID
	)
	bySymbol := make(map[ident.Symbol]string)
	for _, d := range out.Defs {
		switch x := d.Node.(type) {
		case *ast.ValueDefinition:
			name := x.Symbol.String()
			bySymbol[x.Symbol] = name
			names = append(names, name)
			nodes = append(nodes, d.ID)
		case *ast.InstanceDefinition:
			names = append(names, instanceNodeName(d, x))
			nodes = append(nodes, d.ID)
		}
	}
	idx := dag.NewIndex(names)
	graph := dag.NewGraph(idx.Len())
	for i := range nodes {
		graph.Present[i] = true
	}

	for i, id := range nodes {
		from := dag.NodeID(i)
		for _, ref := range references(out.Defs[id].Node) {
			name, ok := bySymbol[ref]
			if !ok {
				continue
			}
			graph.AddEdge(from, idx.NameToID[name])
		}
	}
	graph.Normalize()

	for _, comp := range dag.StronglyConnected(graph) {
		grp := Group{Cyclic: comp.Cyclic, Recursive: comp.Recursive}
		for _, n := range comp.Nodes {
			grp.Defs = append(grp.Defs, nodes[n])
		}
		if comp.Cyclic {
			out.reportCycle(grp)
		}
		out.Order = append(out.Order, grp)
	}
	span.WithExtra("groups", fmt.Sprint(len(out.Order)))
	return out
}

func instanceNodeName(d Def, x *ast.InstanceDefinition) string {
	head := "?"
	if x.Head != nil {
		head = x.Head.Symbol.String()
	}
	return fmt.Sprintf("instance %s %s @%s #%d", x.Class, head, d.Module, d.ID)
}

func (g *Graph) reportCycle(grp Group) {
	var syms []string
	for _, id := range grp.Defs {
		if v, ok := g.Defs[id].Node.(*ast.ValueDefinition); ok {
			syms = append(syms, v.Symbol.String())
		}
	}
	first := g.Defs[grp.Defs[0]].Node
	b := g.errorf(diag.SemaCyclicDependency, first.Span(), "cyclic dependency between %s", strings.Join(syms, ", "))
	for _, id := range grp.Defs[1:] {
		n := g.Defs[id].Node
		if v, ok := n.(*ast.ValueDefinition); ok {
			b.WithNote(n.Span(), v.Symbol.String()+" is part of the cycle")
		}
	}
	b.Emit()
}

// references lists the qualified symbols a definition mentions, in order of
// appearance, without duplicates.
func references(def ast.Definition) []ident.Symbol {
	var out []ident.Symbol
	seen := make(map[ident.Symbol]bool)
	add := func(sym ident.Symbol) {
		if sym.IsQualified() && !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	var walk func(ast.Value)
	walk = func(v ast.Value) {
		switch x := v.(type) {
		case *ast.Identifier:
			add(x.Symbol)
		case *ast.Apply:
			walk(x.Func)
			walk(x.Arg)
		case *ast.Lambda:
			for _, c := range x.Cases {
				if !c.Invalid {
					walk(c.Body)
				}
			}
		case *ast.Let:
			for _, b := range x.Bindings {
				walk(b.Value)
			}
			walk(x.Body)
		}
	}
	values := func(v *ast.ValueDefinition) {
		for _, c := range v.Clauses {
			if !c.Invalid {
				walk(c.Body)
			}
		}
	}
	switch x := def.(type) {
	case *ast.ValueDefinition:
		values(x)
	case *ast.InstanceDefinition:
		for _, m := range x.Members {
			values(m)
		}
	}
	return out
}
