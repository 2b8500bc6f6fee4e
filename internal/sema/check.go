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
	"tern/internal/types"
)

// Check infers a type for every node, group by group in dependency order.
// Definitions with a signature are checked against a copy of it and must
// not make it more specific. Class member references become UnboundMethod
// placeholders. Once every group is done all node types are resolved
// through the substitution.
func Check(ctx context.Context, g *Graph) *Graph {
	span := beginStage(ctx, "check")
	defer span.End("")

	out := g.next("check")
	c := &checker{g: out, table: out.Table}
	for _, grp := range out.Order {
		c.group(grp)
	}
	for i, d := range out.Defs {
		switch x := d.Node.(type) {
		case *ast.ValueDefinition:
			out.Defs[i].Node = c.resolveDef(x)
		case *ast.InstanceDefinition:
			inst := *x
			inst.Members = make([]*ast.ValueDefinition, len(x.Members))
			for j, m := range x.Members {
				inst.Members[j] = c.resolveDef(m)
			}
			out.Defs[i].Node = &inst
		}
	}
	return out
}

type checker struct {
	g     *Graph
	table *symbols.Table
}

// pending is a value definition of the group being checked.
type pending struct {
	def      Def
	value    *ast.ValueDefinition
	entry    *symbols.Entry
	expected types.Type
	rigid    []types.Variable
}

func (c *checker) group(grp Group) {
	var members []*pending
	for _, id := range grp.Defs {
		d := c.g.Def(id)
		switch x := d.Node.(type) {
		case *ast.InstanceDefinition:
			c.g.Defs[id].Node = c.instance(d, x)
		case *ast.ValueDefinition:
			e, ok := c.table.Lookup(d.Scope, x.Symbol)
			if !ok {
				panic(fmt.Sprintf("sema: value %s has no entry", x.Symbol))
			}
			p := &pending{def: d, value: x, entry: e}
			if e.Signature != nil {
				p.expected = types.GenericCopy(e.Signature, c.table.Subst, c.table.Gen, nil)
				p.rigid = types.FreeVars(p.expected)
			} else {
				if e.Value == nil {
					e.Value = c.table.Fresh(ident.Set{})
				}
				p.expected = e.Value
				c.table.SetInProgress(e, true)
			}
			members = append(members, p)
		}
	}
	for _, p := range members {
		checked := c.valueDef(p.def.Scope, p.value, p.expected)
		c.g.Defs[p.def.ID].Node = checked
	}
	for _, p := range members {
		if p.entry.InProgress {
			c.table.SetInProgress(p.entry, false)
			c.table.RedefineValue(p.def.Scope, p.value.Symbol, c.table.Generate(p.expected))
		}
		if p.rigid != nil {
			c.checkRigid(p.value.Symbol, p.value.Loc, p.entry.Signature, p.expected, p.rigid)
		}
	}
}

// checkRigid verifies that the variables of a signature copy stayed
// distinct unbound variables without extra classes.
func (c *checker) checkRigid(sym ident.Symbol, loc source.Span, declared, copied types.Type, vars []types.Variable) {
	seen := make(map[types.VarID]bool, len(vars))
	for _, v := range vars {
		tv, ok := c.table.Generate(v).(types.Variable)
		if ok && !seen[tv.ID] && tv.Context.Equal(v.Context) {
			seen[tv.ID] = true
			continue
		}
		decl, inferred := types.FormatPair(declared, c.table.Generate(copied))
		c.g.errorf(diag.SemaSignatureTooGeneral, loc, "signature of %s is too general: declared %s, inferred %s", sym, decl, inferred).Emit()
		return
	}
}

func (c *checker) unify(scope symbols.ScopeID, expected, actual types.Type, loc source.Span, what string) bool {
	r := c.table.Unify(scope, expected, actual)
	if r.OK() {
		return true
	}
	c.reportUnify(r, loc, what)
	c.g.markFailed(c.table.Generate(expected), c.table.Generate(actual))
	return false
}

func (c *checker) reportUnify(r types.Result, loc source.Span, what string) {
	exp, act := types.FormatPair(r.Expected, r.Actual)
	switch r.Outcome {
	case types.TypeMismatch:
		c.g.errorf(diag.SemaTypeMismatch, loc, "type mismatch in %s: expected %s, found %s", what, exp, act).Emit()
	case types.ContextMismatch:
		c.g.errorf(diag.SemaContextMismatch, loc, "no instance of %s in %s: expected %s, found %s", r.Missing, what, exp, act).Emit()
	case types.CircularReference:
		c.g.errorf(diag.SemaCircularType, loc, "circular type in %s: %s occurs in %s", what, exp, act).Emit()
	}
}

// valueDef checks every clause against expected. The first clause fixes
// the type; each later clause that disagrees is reported on its own.
func (c *checker) valueDef(scope symbols.ScopeID, v *ast.ValueDefinition, expected types.Type) *ast.ValueDefinition {
	out := &ast.ValueDefinition{Symbol: v.Symbol, Loc: v.Loc, Type: expected}
	arity := -1
	for _, cl := range v.Clauses {
		if cl.Invalid {
			out.Clauses = append(out.Clauses, cl)
			continue
		}
		if arity < 0 {
			arity = len(cl.Patterns)
		} else if len(cl.Patterns) != arity {
			c.g.errorf(diag.SemaArityMismatch, cl.Loc, "clause of %s takes %d arguments, previous clauses take %d", v.Symbol, len(cl.Patterns), arity).Emit()
			out.Clauses = append(out.Clauses, &ast.Clause{Head: cl.Head, Patterns: cl.Patterns, Body: cl.Body, Loc: cl.Loc, Invalid: true})
			continue
		}
		nc, t := c.clause(scope, cl.Patterns, cl.Body, cl.Loc)
		nc.Head = cl.Head
		c.unify(scope, expected, t, cl.Loc, "clause of "+v.Symbol.String())
		out.Clauses = append(out.Clauses, nc)
	}
	return out
}

func (c *checker) clause(scope symbols.ScopeID, pats []ast.Pattern, body ast.Value, loc source.Span) (*ast.Clause, types.Type) {
	child := c.table.Enter(scope, loc)
	nc := &ast.Clause{Loc: loc, Patterns: make([]ast.Pattern, len(pats))}
	args := make([]types.Type, len(pats))
	for i, p := range pats {
		nc.Patterns[i], args[i] = c.pattern(child, p)
	}
	var bt types.Type
	nc.Body, bt = c.value(child, body)
	c.table.Leave(child)
	return nc, types.Func(bt, args...)
}

func (c *checker) fresh() types.Variable {
	return c.table.Fresh(ident.Set{})
}

func (c *checker) pattern(scope symbols.ScopeID, p ast.Pattern) (ast.Pattern, types.Type) {
	switch x := p.(type) {
	case *ast.Capture:
		v := c.fresh()
		if _, err := c.table.DefineLocal(scope, x.Symbol.Unqualify(), v, x.Loc); errors.Is(err, symbols.ErrAlreadyDefined) {
			c.g.errorf(diag.SemaDuplicateSymbol, x.Loc, "%s is bound more than once in this pattern", x.Symbol).Emit()
		}
		return &ast.Capture{Symbol: x.Symbol, Arg: x.Arg, Loc: x.Loc, Type: v}, v
	case *ast.Equal:
		return x, x.Value.Kind.Type()
	case *ast.Wildcard:
		v := c.fresh()
		return &ast.Wildcard{Arg: x.Arg, Loc: x.Loc, Type: v}, v
	case *ast.Deconstruct:
		out := &ast.Deconstruct{Constructor: x.Constructor, Arg: x.Arg, Loc: x.Loc}
		args := make([]types.Type, len(x.Args))
		for i, a := range x.Args {
			var np ast.Pattern
			np, args[i] = c.pattern(scope, a)
			out.Args = append(out.Args, np)
		}
		result := c.fresh()
		out.Type = result
		ctor, e, ok := c.table.Value(scope, x.Constructor)
		if !ok || e.Constructor == nil {
			return out, result
		}
		if e.Constructor.Arity != len(x.Args) {
			c.g.errorf(diag.SemaConstructorArity, x.Loc, "constructor %s takes %d arguments, got %d", x.Constructor, e.Constructor.Arity, len(x.Args)).Emit()
			return out, result
		}
		c.unify(scope, ctor, types.Func(result, args...), x.Loc, "pattern "+x.Constructor.String())
		return out, result
	}
	panic(fmt.Sprintf("sema: unknown pattern %T", p))
}

func (c *checker) value(scope symbols.ScopeID, v ast.Value) (ast.Value, types.Type) {
	switch x := v.(type) {
	case *ast.Literal:
		return x, x.Kind.Type()
	case *ast.Identifier:
		t, e, ok := c.table.Value(scope, x.Symbol)
		if !ok {
			// already reported by Qualify
			t := c.fresh()
			return &ast.Identifier{Symbol: x.Symbol, Infix: x.Infix, Quoted: x.Quoted, Loc: x.Loc, Type: t}, t
		}
		if e.Class != nil {
			return &ast.UnboundMethod{Member: x.Symbol, Class: e.Class.Class, Type: t, Loc: x.Loc}, t
		}
		return &ast.Identifier{Symbol: x.Symbol, Infix: x.Infix, Quoted: x.Quoted, Loc: x.Loc, Type: t}, t
	case *ast.Apply:
		fn, ft := c.value(scope, x.Func)
		arg, at := c.value(scope, x.Arg)
		res := c.fresh()
		c.unify(scope, ft, types.Function{Arg: at, Result: res}, x.Loc, "application")
		return &ast.Apply{Func: fn, Arg: arg, Loc: x.Loc, Type: res}, res
	case *ast.Lambda:
		arm := types.Type(c.fresh())
		out := &ast.Lambda{Loc: x.Loc, Type: arm}
		arity := -1
		for _, cs := range x.Cases {
			if cs.Invalid {
				out.Cases = append(out.Cases, cs)
				continue
			}
			if arity < 0 {
				arity = len(cs.Patterns)
			} else if len(cs.Patterns) != arity {
				c.g.errorf(diag.SemaArityMismatch, cs.Loc, "lambda case takes %d arguments, previous cases take %d", len(cs.Patterns), arity).Emit()
				out.Cases = append(out.Cases, &ast.Case{Args: cs.Args, Patterns: cs.Patterns, Body: cs.Body, Loc: cs.Loc, Invalid: true})
				continue
			}
			nc, t := c.clause(scope, cs.Patterns, cs.Body, cs.Loc)
			c.unify(scope, arm, t, cs.Loc, "lambda case")
			out.Cases = append(out.Cases, &ast.Case{Args: cs.Args, Patterns: nc.Patterns, Body: nc.Body, Loc: cs.Loc})
		}
		return out, arm
	case *ast.Let:
		return c.let(scope, x)
	case *ast.Unshuffled:
		// failed to shuffle, already reported
		return x, c.fresh()
	}
	panic(fmt.Sprintf("sema: unexpected value %T in check", v))
}

// let checks bindings in order. Each binding is generalised when it is
// referenced, except for variables shared with enclosing locals.
func (c *checker) let(scope symbols.ScopeID, x *ast.Let) (ast.Value, types.Type) {
	out := &ast.Let{Loc: x.Loc}
	cur := scope
	opened := make([]symbols.ScopeID, 0, len(x.Bindings))
	for _, b := range x.Bindings {
		val, t := c.value(cur, b.Value)
		child := c.table.Enter(cur, b.Loc)
		opened = append(opened, child)
		_, _ = c.table.DefineValue(child, b.Name.Unqualify(), t, b.Loc)
		out.Bindings = append(out.Bindings, &ast.LetBinding{Name: b.Name, Value: val, Loc: b.Loc, Type: t})
		cur = child
	}
	var bt types.Type
	out.Body, bt = c.value(cur, x.Body)
	out.Type = bt
	for i := len(opened) - 1; i >= 0; i-- {
		c.table.Leave(opened[i])
	}
	return out, bt
}

// instance checks every member against the class member type with the
// class parameter replaced by the instance head.
func (c *checker) instance(d Def, x *ast.InstanceDefinition) *ast.InstanceDefinition {
	out := &ast.InstanceDefinition{Class: x.Class, Head: x.Head, Loc: x.Loc}
	ce, ok := c.table.LookupType(x.Class)
	if !ok || ce.Class == nil || x.Head == nil || !x.Head.Symbol.IsQualified() {
		out.Members = x.Members
		return out
	}
	params := make([]types.Type, len(x.Head.Args))
	for i := range params {
		params[i] = c.fresh()
	}
	head := types.Sum{Symbol: x.Head.Symbol, Params: params}

	for _, m := range x.Members {
		e, ok := c.table.Lookup(d.Scope, m.Symbol)
		if !ok || e.Class == nil {
			out.Members = append(out.Members, m)
			continue
		}
		sig := e.Signature
		if sig == nil {
			sig = e.Value
		}
		expected := specialize(sig, e.Class.Param.ID, head, c.table.Gen)
		checked := c.valueDef(d.Scope, m, expected)
		c.checkRigid(m.Symbol, m.Loc, expected, expected, types.FreeVars(expected))
		out.Members = append(out.Members, checked)
	}
	return out
}

// specialize replaces the variable param by head and every other variable
// by a fresh one.
func specialize(t types.Type, param types.VarID, head types.Type, gen *types.VarGen) types.Type {
	renamed := make(map[types.VarID]types.Variable)
	return types.Map(t, func(v types.Variable) types.Type {
		if v.ID == param {
			return head
		}
		if nv, ok := renamed[v.ID]; ok {
			return nv
		}
		nv := gen.Fresh(v.Context)
		renamed[v.ID] = nv
		return nv
	})
}
