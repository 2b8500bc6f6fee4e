package sema

import (
	"context"
	"errors"
	"fmt"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/symbols"
)

// Declare creates the module scopes of unit and records every name it
// defines: operators, values, constructors, classes and types. Types of
// signatures are resolved later, by Qualify; clauses are grouped into value
// definitions by the name their head defines.
func Declare(ctx context.Context, unit *ast.Unit, opts Options) *Graph {
	span := beginStage(ctx, "declare")
	defer span.End("")

	table := symbols.NewTable(symbols.Options{
		Resolver: opts.Resolver,
		Gen:      opts.Gen,
		Prelude:  opts.Prelude,
	})
	g := &Graph{
		Unit:  unit.Name,
		File:  unit.File,
		Table: table,
		Bag:   diag.NewBag(opts.MaxDiagnostics),
		Stage: "declare",
	}

	scopes := make(map[*ast.Module]symbols.ScopeID, len(unit.Modules))
	for _, m := range unit.Modules {
		if prev, ok := table.ModuleScope(m.Name); ok {
			g.errorf(diag.ProjDuplicateModule, m.Loc, "duplicate module %q", m.Name).
				WithNote(table.Scopes.MustGet(prev).Span, fmt.Sprintf("previous declaration of %q", m.Name)).
				Emit()
			continue
		}
		scopes[m] = table.EnterModule(m.Name, m.Imports, m.Loc)
		g.Modules = append(g.Modules, m.Name)
	}

	for _, m := range unit.Modules {
		scope, ok := scopes[m]
		if !ok {
			continue
		}
		for _, imp := range m.Imports {
			if imp.Module == m.Name {
				g.errorf(diag.ProjSelfImport, imp.Loc, "module %q imports itself", m.Name).Emit()
				continue
			}
			if _, local := table.ModuleScope(imp.Module); local || table.Resolver.HasModule(imp.Module) {
				continue
			}
			g.errorf(diag.ProjMissingModule, imp.Loc, "module %q imports missing module %q", m.Name, imp.Module).Emit()
		}
		d := &declarer{g: g, module: m.Name, scope: scope, values: make(map[ident.Symbol]source.Span), sigs: make(map[ident.Symbol]source.Span)}
		d.declareModule(m)
	}
	span.WithExtra("defs", fmt.Sprint(len(g.Defs)))
	return g
}

type declarer struct {
	g      *Graph
	module string
	scope  symbols.ScopeID
	values map[ident.Symbol]source.Span
	sigs   map[ident.Symbol]source.Span
}

func (d *declarer) qualify(sym ident.Symbol) ident.Symbol {
	return ident.Qualified(d.module, sym.Member)
}

func (d *declarer) declareModule(m *ast.Module) {
	var clauses []*ast.Clause
	flush := func() {
		if len(clauses) == 0 {
			return
		}
		for _, v := range groupClauses(d.g, clauses) {
			v.Symbol = d.qualify(v.Symbol)
			if d.declareValue(v.Symbol, v.Loc) {
				d.g.addDef(d.module, d.scope, v)
			}
		}
		clauses = nil
	}

	for _, def := range m.Definitions {
		if c, ok := def.(*ast.ClauseDefinition); ok {
			clauses = append(clauses, c.Clause)
			continue
		}
		flush()
		switch x := def.(type) {
		case *ast.OperatorDefinition:
			d.operator(x)
		case *ast.ValueSignature:
			sym := d.qualify(x.Symbol)
			if prev, dup := d.sigs[sym]; dup {
				d.g.errorf(diag.SemaDuplicateSymbol, x.Loc, "duplicate signature for %s", sym).
					WithNote(prev, "previous signature").Emit()
				continue
			}
			d.sigs[sym] = x.Loc
			d.g.addDef(d.module, d.scope, &ast.ValueSignature{Symbol: sym, Type: x.Type, Loc: x.Loc})
		case *ast.ValueDefinition:
			// already grouped by the producer; still regrouped by head name
			clauses = append(clauses, x.Clauses...)
			flush()
		case *ast.DataDefinition:
			d.data(x)
		case *ast.ClassDefinition:
			d.class(x)
		case *ast.InstanceDefinition:
			d.instance(x)
		case *ast.ForeignDefinition:
			sym := d.qualify(x.Symbol)
			if d.declareValue(sym, x.Loc) {
				d.g.addDef(d.module, d.scope, &ast.ForeignDefinition{Symbol: sym, Type: x.Type, Loc: x.Loc})
			}
		}
	}
	flush()
}

// declareValue reports a duplicate and returns false when sym is already a
// value of this module.
func (d *declarer) declareValue(sym ident.Symbol, loc source.Span) bool {
	if prev, dup := d.values[sym]; dup {
		d.g.errorf(diag.SemaDuplicateSymbol, loc, "%s is already defined", sym).
			WithNote(prev, "previous definition").Emit()
		return false
	}
	d.values[sym] = loc
	d.g.Table.Declare(d.scope, sym, loc)
	return true
}

func (d *declarer) operator(x *ast.OperatorDefinition) {
	sym := d.qualify(x.Symbol)
	if x.Operator.Precedence > ast.MaxPrecedence {
		d.g.errorf(diag.SemaInvalidPrecedence, x.Loc, "precedence %d of %s is out of range 0..%d",
			x.Operator.Precedence, sym, ast.MaxPrecedence).Emit()
		return
	}
	e, err := d.g.Table.DefineOperator(d.scope, sym, x.Operator, x.Loc)
	if errors.Is(err, symbols.ErrAlreadyDefined) {
		d.g.errorf(diag.SemaOperatorRedeclared, x.Loc, "operator %s is already declared as %s", sym, e.Operator).
			WithNote(e.Loc, "previous declaration").Emit()
		return
	}
	d.g.addDef(d.module, d.scope, &ast.OperatorDefinition{Symbol: sym, Operator: x.Operator, Loc: x.Loc})
}

func (d *declarer) data(x *ast.DataDefinition) {
	sym := d.qualify(x.Symbol)
	out := &ast.DataDefinition{Symbol: sym, Params: x.Params, Loc: x.Loc}
	var ctors []ident.Symbol
	for _, c := range x.Constructors {
		csym := d.qualify(c.Symbol)
		if !d.declareValue(csym, c.Loc) {
			continue
		}
		e, _ := d.g.Table.Lookup(d.scope, csym)
		e.Constructor = &symbols.ConstructorRef{Data: sym, Arity: len(c.Args)}
		ctors = append(ctors, csym)
		out.Constructors = append(out.Constructors, ast.Constructor{Symbol: csym, Args: c.Args, Loc: c.Loc})
	}
	_, err := d.g.Table.DefineType(d.scope, symbols.TypeEntry{Symbol: sym, Arity: len(x.Params), Constructors: ctors, Loc: x.Loc})
	if err != nil {
		d.g.errorf(diag.SemaDuplicateSymbol, x.Loc, "type %s is already defined", sym).Emit()
		return
	}
	d.g.addDef(d.module, d.scope, out)
}

func (d *declarer) class(x *ast.ClassDefinition) {
	sym := d.qualify(x.Symbol)
	param := d.g.Table.Fresh(ident.NewSet(sym))
	out := &ast.ClassDefinition{Symbol: sym, Param: x.Param, Loc: x.Loc}
	info := &symbols.ClassInfo{Param: param}
	for _, m := range x.Members {
		msym := d.qualify(m.Symbol)
		if !d.declareValue(msym, m.Loc) {
			continue
		}
		e, _ := d.g.Table.Lookup(d.scope, msym)
		e.Class = &symbols.ClassRef{Class: sym, Param: param}
		info.Members = append(info.Members, msym)
		out.Members = append(out.Members, &ast.ValueSignature{Symbol: msym, Type: m.Type, Loc: m.Loc})
	}
	_, err := d.g.Table.DefineType(d.scope, symbols.TypeEntry{Symbol: sym, Arity: 1, Class: info, Loc: x.Loc})
	if err != nil {
		d.g.errorf(diag.SemaDuplicateSymbol, x.Loc, "class %s is already defined", sym).Emit()
		return
	}
	d.g.addDef(d.module, d.scope, out)
}

func (d *declarer) instance(x *ast.InstanceDefinition) {
	var clauses []*ast.Clause
	for _, m := range x.Members {
		clauses = append(clauses, m.Clauses...)
	}
	d.g.addDef(d.module, d.scope, &ast.InstanceDefinition{
		Class:   x.Class,
		Head:    x.Head,
		Members: groupClauses(d.g, clauses),
		Loc:     x.Loc,
	})
}

// clauseName guesses the name a clause defines before its head is
// shuffled: the first top-level infix name, else the leading name. Shuffle
// verifies the guess.
func clauseName(c *ast.Clause) (*ast.PatName, bool) {
	for _, a := range c.Head {
		if n, ok := a.(*ast.PatName); ok && n.Infix && !n.Quoted {
			return n, true
		}
	}
	if len(c.Head) > 0 {
		if n, ok := c.Head[0].(*ast.PatName); ok {
			return n, true
		}
	}
	return nil, false
}

// groupClauses merges adjacent clauses that define the same name. A name
// that comes back after another definition is a duplicate.
func groupClauses(g *Graph, clauses []*ast.Clause) []*ast.ValueDefinition {
	var out []*ast.ValueDefinition
	seen := make(map[string]*ast.ValueDefinition)
	var last *ast.ValueDefinition
	for _, c := range clauses {
		name, ok := clauseName(c)
		if !ok {
			g.errorf(diag.SynBadPatternHead, c.Loc, "clause head must start with the defined name").Emit()
			last = nil
			continue
		}
		if last != nil && last.Symbol.Member == name.Symbol.Member {
			last.Clauses = append(last.Clauses, c)
			last.Loc = last.Loc.Cover(c.Loc)
			continue
		}
		if prev, dup := seen[name.Symbol.Member]; dup {
			g.errorf(diag.SemaDuplicateSymbol, c.Loc, "%s is already defined", name.Symbol.Member).
				WithNote(prev.Loc, "clauses of one definition must be adjacent").Emit()
			last = nil
			continue
		}
		last = &ast.ValueDefinition{Symbol: ident.Unqualified(name.Symbol.Member), Clauses: []*ast.Clause{c}, Loc: c.Loc}
		seen[name.Symbol.Member] = last
		out = append(out, last)
	}
	return out
}
