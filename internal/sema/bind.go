package sema

import (
	"context"
	"fmt"
	"strings"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// Bind resolves class member references to instances once all types are
// known. A reference whose class parameter is still a variable of the
// enclosing definition's type stays an UnboundMethod and is served by that
// definition's own dictionary. References to constrained definitions get
// their dictionary arguments.
func Bind(ctx context.Context, g *Graph) *Graph {
	span := beginStage(ctx, "bind")
	defer span.End("")

	out := g.next("bind")
	b := &binder{g: out, table: out.Table}
	for i, d := range out.Defs {
		switch x := d.Node.(type) {
		case *ast.ValueDefinition:
			out.Defs[i].Node = b.valueDef(d.Scope, x)
		case *ast.InstanceDefinition:
			inst := *x
			inst.Members = make([]*ast.ValueDefinition, len(x.Members))
			for j, m := range x.Members {
				inst.Members[j] = b.valueDef(d.Scope, m)
			}
			out.Defs[i].Node = &inst
		}
	}
	span.WithExtra("bound", fmt.Sprint(b.bound))
	return out
}

type binder struct {
	g     *Graph
	table *symbols.Table
	bound int
}

// enclosing is the top-level definition whose body is being bound.
type enclosing struct {
	scope symbols.ScopeID
	typ   types.Type
}

// DictionaryParams lists the dictionary parameters of a definition of type
// t: one per constrained variable and class, in first-occurrence order.
func DictionaryParams(t types.Type) []types.Instance {
	var out []types.Instance
	for _, v := range types.FreeVars(t) {
		for _, class := range v.Context.Items() {
			out = append(out, types.Instance{Var: v, Class: class})
		}
	}
	return out
}

func (b *binder) valueDef(scope symbols.ScopeID, v *ast.ValueDefinition) *ast.ValueDefinition {
	if v.Type == nil {
		return v
	}
	env := enclosing{scope: scope, typ: v.Type}
	out := &ast.ValueDefinition{Symbol: v.Symbol, Loc: v.Loc, Type: v.Type, Dictionaries: DictionaryParams(v.Type)}
	for _, cl := range v.Clauses {
		if cl.Invalid {
			out.Clauses = append(out.Clauses, cl)
			continue
		}
		out.Clauses = append(out.Clauses, &ast.Clause{Head: cl.Head, Patterns: cl.Patterns, Body: b.value(env, cl.Body), Loc: cl.Loc})
	}
	return out
}

func (b *binder) value(env enclosing, v ast.Value) ast.Value {
	switch x := v.(type) {
	case *ast.UnboundMethod:
		return b.method(env, x)
	case *ast.Identifier:
		return b.reference(env, x)
	case *ast.Apply:
		return &ast.Apply{Func: b.value(env, x.Func), Arg: b.value(env, x.Arg), Loc: x.Loc, Type: x.Type}
	case *ast.Lambda:
		out := &ast.Lambda{Loc: x.Loc, Type: x.Type}
		for _, cs := range x.Cases {
			if cs.Invalid {
				out.Cases = append(out.Cases, cs)
				continue
			}
			out.Cases = append(out.Cases, &ast.Case{Args: cs.Args, Patterns: cs.Patterns, Body: b.value(env, cs.Body), Loc: cs.Loc})
		}
		return out
	case *ast.Let:
		out := &ast.Let{Loc: x.Loc, Type: x.Type, Body: b.value(env, x.Body)}
		for _, lb := range x.Bindings {
			out.Bindings = append(out.Bindings, &ast.LetBinding{Name: lb.Name, Value: b.value(env, lb.Value), Loc: lb.Loc, Type: lb.Type})
		}
		return out
	}
	return v
}

// declaredType is the generalised type an entry was checked with.
func (b *binder) declaredType(e *symbols.Entry) types.Type {
	t := e.Signature
	if t == nil {
		t = e.Value
	}
	if t == nil || e.External {
		return t
	}
	return b.table.Generate(t)
}

func (b *binder) method(env enclosing, x *ast.UnboundMethod) ast.Value {
	e, ok := b.table.Lookup(env.scope, x.Member)
	if !ok || e.Class == nil {
		return x
	}
	m, ok := types.Match(b.declaredType(e), x.Type)
	if !ok {
		panic(fmt.Sprintf("sema: %s used at %s does not match its declaration", x.Member, types.Format(x.Type)))
	}
	param, ok := m[e.Class.Param.ID]
	if !ok {
		return x
	}
	if v, isVar := param.(types.Variable); isVar {
		if !b.servedByEnclosing(env, v, x.Class) && !b.g.hasFailed(v) {
			b.ambiguousVariable(x.Loc, x.Member, x.Class)
		}
		return x
	}
	inst, ok := b.instance(env.scope, x.Class, param, x.Loc, x.Member)
	if !ok {
		return x
	}
	b.bound++
	return &ast.BoundMethod{Member: x.Member, Instance: inst, Type: x.Type, Loc: x.Loc}
}

// reference attaches dictionary arguments to a use of a constrained
// top-level definition.
func (b *binder) reference(env enclosing, x *ast.Identifier) ast.Value {
	if !x.Symbol.IsQualified() || x.Type == nil {
		return x
	}
	e, ok := b.table.Lookup(env.scope, x.Symbol)
	if !ok || e.Class != nil {
		return x
	}
	declared := b.declaredType(e)
	params := DictionaryParams(declared)
	if len(params) == 0 {
		return x
	}
	m, ok := types.Match(declared, x.Type)
	if !ok {
		return x
	}
	out := *x
	out.Dictionaries = make([]ast.Dictionary, 0, len(params))
	for _, p := range params {
		actual := m[p.Var.ID]
		if v, isVar := actual.(types.Variable); isVar {
			if !b.servedByEnclosing(env, v, p.Class) {
				if !b.g.hasFailed(v) {
					b.ambiguousVariable(x.Loc, x.Symbol, p.Class)
				}
				return x
			}
			out.Dictionaries = append(out.Dictionaries, ast.Dictionary{Class: p.Class, Param: types.Instance{Var: v, Class: p.Class}})
			continue
		}
		inst, ok := b.instance(env.scope, p.Class, actual, x.Loc, x.Symbol)
		if !ok {
			return x
		}
		out.Dictionaries = append(out.Dictionaries, ast.Dictionary{Class: p.Class, Bound: &inst})
	}
	b.bound++
	return &out
}

// servedByEnclosing reports whether v is a constrained variable of the
// enclosing definition's type, so its dictionary is a parameter.
func (b *binder) servedByEnclosing(env enclosing, v types.Variable, class ident.Symbol) bool {
	return v.Context.Contains(class) && types.Occurs(v.ID, env.typ)
}

func (b *binder) ambiguousVariable(loc source.Span, sym, class ident.Symbol) {
	b.g.errorf(diag.SemaAmbiguousTypeVariable, loc, "ambiguous type variable in use of %s: no way to choose an instance of %s", sym, class).Emit()
}

// instance finds the single instance of class for t visible from scope.
func (b *binder) instance(scope symbols.ScopeID, class ident.Symbol, t types.Type, loc source.Span, sym ident.Symbol) (ast.InstanceRef, bool) {
	var head ident.Symbol
	switch x := t.(type) {
	case types.Sum:
		head = x.Symbol
	case types.Function:
		head = types.FunctionSymbol
	default:
		b.g.errorf(diag.SemaInstanceNotFound, loc, "no instance of %s for %s in use of %s", class, types.Format(t), sym).Emit()
		return ast.InstanceRef{}, false
	}
	found := b.table.Instances(scope, class, head)
	switch len(found) {
	case 0:
		b.g.errorf(diag.SemaInstanceNotFound, loc, "no instance %s %s in use of %s", class, head, sym).Emit()
		return ast.InstanceRef{}, false
	case 1:
		return ast.InstanceRef{Class: class, Head: head, Module: found[0].Module}, true
	}
	modules := make([]string, len(found))
	for i, inst := range found {
		modules[i] = inst.Module
	}
	r := b.g.errorf(diag.SemaAmbiguousInstance, loc, "ambiguous instance %s %s in use of %s: defined in %s", class, head, sym, strings.Join(modules, ", "))
	for _, inst := range found {
		if inst.Loc != (source.Span{}) {
			r.WithNote(inst.Loc, "candidate in "+inst.Module)
		}
	}
	r.Emit()
	return ast.InstanceRef{}, false
}
