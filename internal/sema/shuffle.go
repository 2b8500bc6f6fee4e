package sema

import (
	"context"
	"errors"
	"fmt"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/shuffle"
	"tern/internal/symbols"
)

// Shuffle turns clause heads into argument patterns and every unshuffled
// message into an application tree. Locals are defined in child scopes so
// that a local named like an operator shadows it.
func Shuffle(ctx context.Context, g *Graph) *Graph {
	span := beginStage(ctx, "shuffle")
	defer span.End("")

	out := g.next("shuffle")
	s := &shuffler{g: out, table: out.Table}
	for i, d := range out.Defs {
		switch x := d.Node.(type) {
		case *ast.ValueDefinition:
			out.Defs[i].Node = s.valueDef(d.Scope, x)
		case *ast.InstanceDefinition:
			inst := &ast.InstanceDefinition{Class: x.Class, Head: x.Head, Loc: x.Loc}
			for _, m := range x.Members {
				inst.Members = append(inst.Members, s.valueDef(d.Scope, m))
			}
			out.Defs[i].Node = inst
		}
	}
	return out
}

type shuffler struct {
	g     *Graph
	table *symbols.Table
}

func (s *shuffler) lookup(scope symbols.ScopeID) shuffle.OperatorLookup {
	return func(sym ident.Symbol) (ast.Operator, bool) {
		op, _, ok := s.table.Operator(scope, sym)
		return op, ok
	}
}

func (s *shuffler) report(err error) {
	var serr *shuffle.Error
	if errors.As(err, &serr) {
		s.g.errorf(serr.Code, serr.Span, "%s", serr.Message).Emit()
		return
	}
	panic(fmt.Sprintf("sema: unexpected shuffle failure: %v", err))
}

func (s *shuffler) valueDef(scope symbols.ScopeID, v *ast.ValueDefinition) *ast.ValueDefinition {
	out := &ast.ValueDefinition{Symbol: v.Symbol, Loc: v.Loc}
	for _, c := range v.Clauses {
		out.Clauses = append(out.Clauses, s.clause(scope, v.Symbol, c))
	}
	return out
}

func (s *shuffler) clause(scope symbols.ScopeID, name ident.Symbol, c *ast.Clause) *ast.Clause {
	out := &ast.Clause{Head: c.Head, Body: c.Body, Loc: c.Loc}
	term, err := shuffle.Patterns(c.Head, c.Loc, s.lookup(scope))
	var (
		defined ident.Symbol
		pats    []ast.Pattern
	)
	if err == nil {
		defined, pats, err = shuffle.ClauseHead(term)
	}
	if err == nil && defined.Member != name.Member {
		err = &shuffle.Error{
			Code:    diag.SynBadPatternHead,
			Span:    term.Loc,
			Message: fmt.Sprintf("clause defines %s, expected a clause of %s", defined.Member, name.Member),
		}
	}
	if err != nil {
		s.report(err)
		out.Invalid = true
		return out
	}
	out.Patterns = pats

	child := s.table.Enter(scope, c.Loc)
	s.defineCaptures(child, pats)
	out.Body = s.value(child, c.Body)
	s.table.Leave(child)
	return out
}

// defineCaptures makes pattern names visible as locals. Duplicates are left
// for the checker to report.
func (s *shuffler) defineCaptures(scope symbols.ScopeID, pats []ast.Pattern) {
	for _, p := range pats {
		for _, c := range ast.Captures(p) {
			_, _ = s.table.DefineLocal(scope, c.Symbol.Unqualify(), nil, c.Loc)
		}
	}
}

func (s *shuffler) value(scope symbols.ScopeID, v ast.Value) ast.Value {
	switch x := v.(type) {
	case *ast.Unshuffled:
		out, err := shuffle.Values(x, s.lookup(scope), func(atom ast.Value) (ast.Value, error) {
			return s.value(scope, atom), nil
		})
		if err != nil {
			s.report(err)
			return x
		}
		return out
	case *ast.Apply:
		return &ast.Apply{Func: s.value(scope, x.Func), Arg: s.value(scope, x.Arg), Loc: x.Loc}
	case *ast.Lambda:
		out := &ast.Lambda{Loc: x.Loc}
		for _, c := range x.Cases {
			out.Cases = append(out.Cases, s.lambdaCase(scope, c))
		}
		return out
	case *ast.Let:
		return s.let(scope, x)
	}
	return v
}

func (s *shuffler) lambdaCase(scope symbols.ScopeID, c *ast.Case) *ast.Case {
	out := &ast.Case{Args: c.Args, Body: c.Body, Loc: c.Loc}
	for i, atom := range c.Args {
		term, err := shuffle.Patterns([]ast.PatternAtom{atom}, atom.Span(), s.lookup(scope))
		var p ast.Pattern
		if err == nil {
			p, err = shuffle.ToPattern(term, fmt.Sprintf("#%d", i))
		}
		if err != nil {
			s.report(err)
			out.Invalid = true
			out.Patterns = nil
			return out
		}
		out.Patterns = append(out.Patterns, p)
	}
	child := s.table.Enter(scope, c.Loc)
	s.defineCaptures(child, out.Patterns)
	out.Body = s.value(child, c.Body)
	s.table.Leave(child)
	return out
}

// let opens one child scope per binding: a binding sees the ones before it
// but not itself.
func (s *shuffler) let(scope symbols.ScopeID, x *ast.Let) *ast.Let {
	out := &ast.Let{Loc: x.Loc}
	cur := scope
	opened := make([]symbols.ScopeID, 0, len(x.Bindings))
	for _, b := range x.Bindings {
		val := s.value(cur, b.Value)
		child := s.table.Enter(cur, b.Loc)
		opened = append(opened, child)
		_, _ = s.table.DefineLocal(child, b.Name.Unqualify(), nil, b.Loc)
		out.Bindings = append(out.Bindings, &ast.LetBinding{Name: b.Name, Value: val, Loc: b.Loc})
		cur = child
	}
	out.Body = s.value(cur, x.Body)
	for i := len(opened) - 1; i >= 0; i-- {
		s.table.Leave(opened[i])
	}
	return out
}
