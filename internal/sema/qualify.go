package sema

import (
	"context"
	"errors"
	"strings"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// Qualify resolves every identifier and type reference to its qualified
// symbol. It also turns declared types into types.Type values: signatures,
// foreign values, constructors and class members get their entries filled,
// and instances are registered. Unknown names are reported and left as
// they were.
func Qualify(ctx context.Context, g *Graph) *Graph {
	span := beginStage(ctx, "qualify")
	defer span.End("")

	out := g.next("qualify")
	q := &qualifier{g: out, table: out.Table}

	valueSyms := make(map[ident.Symbol]bool)
	for _, d := range out.Defs {
		if v, ok := d.Node.(*ast.ValueDefinition); ok {
			valueSyms[v.Symbol] = true
		}
	}

	// declarations first, so that instance checks and values see them
	for i, d := range out.Defs {
		switch x := d.Node.(type) {
		case *ast.DataDefinition:
			out.Defs[i].Node = q.data(d.Scope, x)
		case *ast.ClassDefinition:
			out.Defs[i].Node = q.class(d.Scope, x)
		case *ast.ForeignDefinition:
			t, ts := newTypeBuilder(out, d.Scope).scheme(x.Type)
			q.defineSignature(d.Scope, x.Symbol, t, x.Loc)
			out.Defs[i].Node = &ast.ForeignDefinition{Symbol: x.Symbol, Type: ts, Loc: x.Loc}
		case *ast.ValueSignature:
			b := newTypeBuilder(out, d.Scope)
			t, ts := b.scheme(x.Type)
			switch {
			case !valueSyms[x.Symbol]:
				out.errorf(diag.SemaSignatureWithoutValue, x.Loc, "signature of %s has no definition", x.Symbol).Emit()
			case !b.failed:
				// a broken signature is dropped and the type inferred
				q.defineSignature(d.Scope, x.Symbol, t, x.Loc)
			}
			out.Defs[i].Node = &ast.ValueSignature{Symbol: x.Symbol, Type: ts, Loc: x.Loc}
		}
	}
	for i, d := range out.Defs {
		if x, ok := d.Node.(*ast.InstanceDefinition); ok {
			out.Defs[i].Node = q.instance(d, x)
		}
	}
	for i, d := range out.Defs {
		switch x := d.Node.(type) {
		case *ast.ValueDefinition:
			out.Defs[i].Node = q.valueDef(d.Scope, x)
		case *ast.InstanceDefinition:
			inst := *x
			inst.Members = nil
			for _, m := range x.Members {
				inst.Members = append(inst.Members, q.valueDef(d.Scope, m))
			}
			out.Defs[i].Node = &inst
		}
	}
	return out
}

type qualifier struct {
	g     *Graph
	table *symbols.Table
}

func (q *qualifier) defineSignature(scope symbols.ScopeID, sym ident.Symbol, t types.Type, loc source.Span) {
	if _, err := q.table.DefineSignature(scope, sym, t, loc); errors.Is(err, symbols.ErrAlreadyDefined) {
		q.g.errorf(diag.SemaDuplicateSymbol, loc, "%s already has a type", sym).Emit()
	}
}

func (q *qualifier) data(scope symbols.ScopeID, x *ast.DataDefinition) *ast.DataDefinition {
	params := make([]types.Type, len(x.Params))
	vars := make(map[string]types.Variable, len(x.Params))
	for i, p := range x.Params {
		v := q.table.Fresh(ident.Set{})
		vars[p] = v
		params[i] = v
	}
	result := types.Sum{Symbol: x.Symbol, Params: params}
	out := &ast.DataDefinition{Symbol: x.Symbol, Params: x.Params, Loc: x.Loc}
	for _, c := range x.Constructors {
		b := newTypeBuilder(q.g, scope)
		b.closed, b.owner = true, x.Symbol
		for name, v := range vars {
			b.preset(name, v)
		}
		args := make([]types.Type, 0, len(c.Args))
		qc := ast.Constructor{Symbol: c.Symbol, Loc: c.Loc}
		for _, a := range c.Args {
			t, e := b.expr(a)
			args = append(args, t)
			qc.Args = append(qc.Args, e)
		}
		q.defineSignature(scope, c.Symbol, types.Func(result, args...), c.Loc)
		out.Constructors = append(out.Constructors, qc)
	}
	return out
}

func (q *qualifier) class(scope symbols.ScopeID, x *ast.ClassDefinition) *ast.ClassDefinition {
	te, ok := q.table.LookupType(x.Symbol)
	if !ok || te.Class == nil {
		return x
	}
	out := &ast.ClassDefinition{Symbol: x.Symbol, Param: x.Param, Loc: x.Loc}
	for _, m := range x.Members {
		b := newTypeBuilder(q.g, scope).preset(x.Param, te.Class.Param)
		t, ts := b.scheme(m.Type)
		if !types.Occurs(te.Class.Param.ID, t) {
			q.g.errorf(diag.SemaAmbiguousTypeVariable, m.Loc, "member %s of %s does not mention %s", m.Symbol, x.Symbol, x.Param).Emit()
		}
		q.defineSignature(scope, m.Symbol, t, m.Loc)
		out.Members = append(out.Members, &ast.ValueSignature{Symbol: m.Symbol, Type: ts, Loc: m.Loc})
	}
	return out
}

// instance registers x and names its members after the class members they
// implement. The head must be a type applied to distinct variables.
func (q *qualifier) instance(d Def, x *ast.InstanceDefinition) *ast.InstanceDefinition {
	out := &ast.InstanceDefinition{Class: x.Class, Head: x.Head, Members: x.Members, Loc: x.Loc}

	class, ok := q.table.QualifyType(d.Scope, x.Class)
	if !ok {
		q.g.errorf(diag.SemaUnresolvedType, x.Loc, "class %s not found", x.Class).Emit()
		return out
	}
	out.Class = class
	ce, _ := q.table.LookupType(class)
	if ce.Class == nil {
		q.g.errorf(diag.SemaNotAClass, x.Loc, "%s is not a class", class).Emit()
		return out
	}

	head, ok := q.table.QualifyType(d.Scope, x.Head.Symbol)
	if !ok {
		q.g.errorf(diag.SemaUnresolvedType, x.Head.Loc, "type %s not found", x.Head.Symbol).Emit()
		return out
	}
	he, _ := q.table.LookupType(head)
	if he.Class != nil {
		q.g.errorf(diag.SemaUnresolvedType, x.Head.Loc, "%s is a class, not a type", head).Emit()
		return out
	}
	if len(x.Head.Args) != he.Arity {
		q.g.errorf(diag.SemaArityMismatch, x.Head.Loc, "type %s expects %d parameters, got %d", head, he.Arity, len(x.Head.Args)).Emit()
		return out
	}
	seen := make(map[string]bool)
	for _, a := range x.Head.Args {
		v, isVar := a.(*ast.TypeVar)
		if !isVar || seen[v.Name] {
			q.g.errorf(diag.SemaError, a.Span(), "instance head %s must be applied to distinct type variables", head).Emit()
			return out
		}
		seen[v.Name] = true
	}
	out.Head = &ast.TypeRef{Symbol: head, Args: x.Head.Args, Loc: x.Head.Loc}

	err := q.table.RegisterInstance(d.Scope, symbols.Instance{Class: class, Head: head, Module: d.Module, Loc: x.Loc})
	if errors.Is(err, symbols.ErrAlreadyDefined) {
		q.g.errorf(diag.SemaDuplicateInstance, x.Loc, "duplicate instance %s %s", class, head).Emit()
		return out
	}

	members := make(map[string]ident.Symbol, len(ce.Class.Members))
	for _, m := range ce.Class.Members {
		members[m.Member] = m
	}
	implemented := make(map[string]bool)
	out.Members = nil
	for _, m := range x.Members {
		sym, ok := members[m.Symbol.Member]
		if !ok {
			q.g.errorf(diag.SemaUnknownInstanceMember, m.Loc, "%s is not a member of %s", m.Symbol.Member, class).Emit()
			continue
		}
		implemented[sym.Member] = true
		out.Members = append(out.Members, &ast.ValueDefinition{Symbol: sym, Clauses: m.Clauses, Loc: m.Loc})
	}
	var missing []string
	for _, m := range ce.Class.Members {
		if !implemented[m.Member] {
			missing = append(missing, m.Member)
		}
	}
	if len(missing) > 0 {
		q.g.errorf(diag.SemaMissingInstanceMember, x.Loc, "instance %s %s does not define %s", class, head, strings.Join(missing, ", ")).Emit()
	}
	return out
}

func (q *qualifier) valueDef(scope symbols.ScopeID, v *ast.ValueDefinition) *ast.ValueDefinition {
	out := &ast.ValueDefinition{Symbol: v.Symbol, Loc: v.Loc}
	for _, c := range v.Clauses {
		if c.Invalid {
			out.Clauses = append(out.Clauses, c)
			continue
		}
		nc := &ast.Clause{Head: c.Head, Loc: c.Loc}
		child := q.table.Enter(scope, c.Loc)
		nc.Patterns = q.patterns(child, c.Patterns)
		nc.Body = q.value(child, c.Body)
		q.table.Leave(child)
		out.Clauses = append(out.Clauses, nc)
	}
	return out
}

// patterns qualifies constructors and defines captures in scope.
func (q *qualifier) patterns(scope symbols.ScopeID, pats []ast.Pattern) []ast.Pattern {
	out := make([]ast.Pattern, len(pats))
	for i, p := range pats {
		out[i] = q.pattern(scope, p)
	}
	return out
}

func (q *qualifier) pattern(scope symbols.ScopeID, p ast.Pattern) ast.Pattern {
	switch x := p.(type) {
	case *ast.Capture:
		_, _ = q.table.DefineLocal(scope, x.Symbol.Unqualify(), nil, x.Loc)
		return x
	case *ast.Deconstruct:
		out := &ast.Deconstruct{Constructor: x.Constructor, Arg: x.Arg, Loc: x.Loc}
		if sym, ok := q.table.Qualify(scope, x.Constructor); !ok {
			q.g.errorf(diag.SemaUnresolvedSymbol, x.Loc, "constructor %s not found", x.Constructor).Emit()
		} else if e, _ := q.table.Lookup(scope, sym); e == nil || e.Constructor == nil {
			q.g.errorf(diag.SemaUnresolvedSymbol, x.Loc, "%s is not a constructor", sym).Emit()
		} else {
			out.Constructor = sym
		}
		for _, a := range x.Args {
			out.Args = append(out.Args, q.pattern(scope, a))
		}
		return out
	}
	return p
}

func (q *qualifier) value(scope symbols.ScopeID, v ast.Value) ast.Value {
	switch x := v.(type) {
	case *ast.Identifier:
		sym, ok := q.table.Qualify(scope, x.Symbol)
		if !ok {
			q.g.errorf(diag.SemaUnresolvedSymbol, x.Loc, "symbol %s not found", x.Symbol).Emit()
			return x
		}
		return &ast.Identifier{Symbol: sym, Infix: x.Infix, Quoted: x.Quoted, Loc: x.Loc}
	case *ast.Apply:
		return &ast.Apply{Func: q.value(scope, x.Func), Arg: q.value(scope, x.Arg), Loc: x.Loc}
	case *ast.Lambda:
		out := &ast.Lambda{Loc: x.Loc}
		for _, c := range x.Cases {
			if c.Invalid {
				out.Cases = append(out.Cases, c)
				continue
			}
			child := q.table.Enter(scope, c.Loc)
			nc := &ast.Case{Args: c.Args, Loc: c.Loc}
			nc.Patterns = q.patterns(child, c.Patterns)
			nc.Body = q.value(child, c.Body)
			q.table.Leave(child)
			out.Cases = append(out.Cases, nc)
		}
		return out
	case *ast.Let:
		out := &ast.Let{Loc: x.Loc}
		cur := scope
		opened := make([]symbols.ScopeID, 0, len(x.Bindings))
		for _, b := range x.Bindings {
			val := q.value(cur, b.Value)
			child := q.table.Enter(cur, b.Loc)
			opened = append(opened, child)
			_, _ = q.table.DefineLocal(child, b.Name.Unqualify(), nil, b.Loc)
			out.Bindings = append(out.Bindings, &ast.LetBinding{Name: b.Name.Unqualify(), Value: val, Loc: b.Loc})
			cur = child
		}
		out.Body = q.value(cur, x.Body)
		for i := len(opened) - 1; i >= 0; i-- {
			q.table.Leave(opened[i])
		}
		return out
	}
	return v
}
