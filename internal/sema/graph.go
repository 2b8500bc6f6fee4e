// Package sema runs the semantic stages over one unit: Declare, Shuffle,
// Qualify, Order, Check and Bind. Every stage takes a Graph and returns a
// new one; the symbol table is the only state the stages share.
package sema

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"fortio.org/safecast"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/trace"
	"tern/internal/types"
)

// DefID indexes Graph.Defs.
type DefID uint32

// Def is one top-level definition together with the module scope owning it.
type Def struct {
	ID     DefID
	Module string
	Scope  symbols.ScopeID
	Node   ast.Definition
}

// Group is a set of value definitions checked together. Cyclic groups have
// already been reported.
type Group struct {
	Defs      []DefID
	Cyclic    bool
	Recursive bool
}

// Options configure Analyze and Declare.
type Options struct {
	Resolver       symbols.Resolver
	Gen            *types.VarGen
	Prelude        []string
	MaxDiagnostics int
}

// Graph is the definition graph of one unit.
type Graph struct {
	Unit    string
	File    source.FileID
	Table   *symbols.Table
	Bag     *diag.Bag
	Modules []string
	Defs    []Def
	// Order holds the value and instance definitions grouped in dependency
	// order. It is empty until the Order stage ran.
	Order []Group
	Stage string

	rep *diag.DedupReporter // одна копия на стадию
	// failed holds the variables of unifications Check already reported;
	// Bind does not call them ambiguous a second time.
	failed map[types.VarID]struct{}
}

// next starts the graph of the following stage: definitions and
// diagnostics are copied, the table is shared.
func (g *Graph) next(stage string) *Graph {
	return &Graph{
		Unit:    g.Unit,
		File:    g.File,
		Table:   g.Table,
		Bag:     g.Bag.Clone(),
		Modules: slices.Clone(g.Modules),
		Defs:    slices.Clone(g.Defs),
		Order:   slices.Clone(g.Order),
		Stage:   stage,
		failed:  maps.Clone(g.failed),
	}
}

// markFailed remembers the free variables of ts after a failed unification.
func (g *Graph) markFailed(ts ...types.Type) {
	for _, t := range ts {
		for _, v := range types.FreeVars(t) {
			if g.failed == nil {
				g.failed = make(map[types.VarID]struct{})
			}
			g.failed[v.ID] = struct{}{}
		}
	}
}

func (g *Graph) hasFailed(v types.Variable) bool {
	_, ok := g.failed[v.ID]
	return ok
}

func (g *Graph) addDef(module string, scope symbols.ScopeID, node ast.Definition) DefID {
	n, err := safecast.Conv[uint32](len(g.Defs))
	if err != nil {
		panic(fmt.Errorf("definition id overflow: %w", err))
	}
	id := DefID(n)
	g.Defs = append(g.Defs, Def{ID: id, Module: module, Scope: scope, Node: node})
	return id
}

// Def returns the definition with id. An unknown id is a bug.
func (g *Graph) Def(id DefID) Def {
	if int(id) >= len(g.Defs) {
		panic(fmt.Sprintf("sema: unknown definition %d", id))
	}
	return g.Defs[id]
}

// Value finds the value definition of sym.
func (g *Graph) Value(sym ident.Symbol) (*ast.ValueDefinition, bool) {
	for _, d := range g.Defs {
		if v, ok := d.Node.(*ast.ValueDefinition); ok && v.Symbol == sym {
			return v, true
		}
	}
	return nil, false
}

// Values lists value definitions in dependency order once the graph is
// ordered, in source order before that.
func (g *Graph) Values() []*ast.ValueDefinition {
	var out []*ast.ValueDefinition
	if len(g.Order) == 0 {
		for _, d := range g.Defs {
			if v, ok := d.Node.(*ast.ValueDefinition); ok {
				out = append(out, v)
			}
		}
		return out
	}
	for _, grp := range g.Order {
		for _, id := range grp.Defs {
			if v, ok := g.Defs[id].Node.(*ast.ValueDefinition); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// Diagnostics returns the accumulated diagnostics in report order.
func (g *Graph) Diagnostics() []diag.Diagnostic {
	return g.Bag.Items()
}

func (g *Graph) HasErrors() bool {
	return g.Bag.HasErrors()
}

// reporter drops repeats of a diagnostic within one stage; a symbol used
// in several clauses of one definition is still reported per use site.
func (g *Graph) reporter() diag.Reporter {
	if g.rep == nil {
		g.rep = diag.NewDedupReporter(diag.BagReporter{Bag: g.Bag})
	}
	return g.rep
}

func (g *Graph) errorf(code diag.Code, span source.Span, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(g.reporter(), code, span, fmt.Sprintf(format, args...))
}

func beginStage(ctx context.Context, name string) *trace.Span {
	_, s := trace.Start(ctx, trace.ScopeStage, name)
	return s
}
