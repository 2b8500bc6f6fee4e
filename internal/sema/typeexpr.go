package sema

import (
	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/symbols"
	"tern/internal/types"
)

// typeBuilder converts the type expressions of one scheme. Variables with
// the same name share one type variable.
type typeBuilder struct {
	g     *Graph
	scope symbols.ScopeID
	vars  map[string]types.Variable
	ctx   map[string]ident.Set
	// closed forbids variables that are not preset, as in constructor
	// arguments.
	closed bool
	owner  ident.Symbol
	// failed is set once an error was reported for this scheme.
	failed bool
}

func newTypeBuilder(g *Graph, scope symbols.ScopeID) *typeBuilder {
	return &typeBuilder{g: g, scope: scope, vars: make(map[string]types.Variable), ctx: make(map[string]ident.Set)}
}

func (b *typeBuilder) preset(name string, v types.Variable) *typeBuilder {
	b.vars[name] = v
	return b
}

// class resolves a class name, reporting anything that is not a class.
func (b *typeBuilder) class(sym ident.Symbol, c ast.Constraint) (ident.Symbol, bool) {
	q, ok := b.g.Table.QualifyType(b.scope, sym)
	if !ok {
		b.g.errorf(diag.SemaUnresolvedType, c.Loc, "class %s not found", sym).Emit()
		b.failed = true
		return sym, false
	}
	e, _ := b.g.Table.LookupType(q)
	if e.Class == nil {
		b.g.errorf(diag.SemaNotAClass, c.Loc, "%s is not a class", q).Emit()
		b.failed = true
		return q, false
	}
	return q, true
}

// scheme resolves constraints and body. The returned expression has every
// type and class name qualified.
func (b *typeBuilder) scheme(ts *ast.TypeScheme) (types.Type, *ast.TypeScheme) {
	out := &ast.TypeScheme{Loc: ts.Loc}
	for _, c := range ts.Constraints {
		q, ok := b.class(c.Class, c)
		out.Constraints = append(out.Constraints, ast.Constraint{Class: q, Var: c.Var, Loc: c.Loc})
		if ok {
			b.ctx[c.Var] = b.ctx[c.Var].Union(ident.NewSet(q))
		}
	}
	t, body := b.expr(ts.Body)
	out.Body = body
	for _, c := range ts.Constraints {
		if _, used := b.vars[c.Var]; !used {
			b.g.errorf(diag.SemaAmbiguousTypeVariable, c.Loc, "constraint %s %s does not mention a variable of the type", c.Class, c.Var).Emit()
			b.failed = true
		}
	}
	return t, out
}

func (b *typeBuilder) expr(e ast.TypeExpr) (types.Type, ast.TypeExpr) {
	switch x := e.(type) {
	case *ast.TypeVar:
		if v, ok := b.vars[x.Name]; ok {
			return v, x
		}
		if b.closed {
			b.g.errorf(diag.SemaUnresolvedType, x.Loc, "type variable %s is not a parameter of %s", x.Name, b.owner).Emit()
			b.failed = true
			return b.g.Table.Fresh(ident.Set{}), x
		}
		v := b.g.Table.Fresh(b.ctx[x.Name])
		b.vars[x.Name] = v
		return v, x
	case *ast.TypeFunc:
		arg, argExpr := b.expr(x.Arg)
		res, resExpr := b.expr(x.Result)
		return types.Function{Arg: arg, Result: res}, &ast.TypeFunc{Arg: argExpr, Result: resExpr, Loc: x.Loc}
	case *ast.TypeRef:
		out := &ast.TypeRef{Symbol: x.Symbol, Loc: x.Loc}
		params := make([]types.Type, 0, len(x.Args))
		for _, a := range x.Args {
			t, ae := b.expr(a)
			params = append(params, t)
			out.Args = append(out.Args, ae)
		}
		q, ok := b.g.Table.QualifyType(b.scope, x.Symbol)
		if !ok {
			b.g.errorf(diag.SemaUnresolvedType, x.Loc, "type %s not found", x.Symbol).Emit()
			b.failed = true
			return b.g.Table.Fresh(ident.Set{}), out
		}
		out.Symbol = q
		te, _ := b.g.Table.LookupType(q)
		if te.Class != nil {
			b.g.errorf(diag.SemaUnresolvedType, x.Loc, "%s is a class, not a type", q).Emit()
			b.failed = true
			return b.g.Table.Fresh(ident.Set{}), out
		}
		if te.Arity != len(params) {
			b.g.errorf(diag.SemaArityMismatch, x.Loc, "type %s expects %d parameters, got %d", q, te.Arity, len(params)).Emit()
			b.failed = true
			return b.g.Table.Fresh(ident.Set{}), out
		}
		return types.Sum{Symbol: q, Params: params}, out
	}
	panic("sema: unknown type expression")
}
