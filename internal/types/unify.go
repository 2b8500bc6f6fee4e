package types

import (
	"tern/internal/ident"
)

// Outcome classifies a unification attempt.
type Outcome uint8

const (
	Unified Outcome = iota
	TypeMismatch
	ContextMismatch
	CircularReference
)

func (o Outcome) String() string {
	switch o {
	case Unified:
		return "unified"
	case TypeMismatch:
		return "type mismatch"
	case ContextMismatch:
		return "context mismatch"
	case CircularReference:
		return "circular reference"
	}
	return "unknown"
}

// Result is what Unify returns. Type is set on success; Expected and Actual
// name the types that failed to unify, and Missing lists the classes without
// an instance on a ContextMismatch.
type Result struct {
	Outcome  Outcome
	Type     Type
	Expected Type
	Actual   Type
	Missing  ident.Set
}

func (r Result) OK() bool {
	return r.Outcome == Unified
}

// InstanceChecker answers whether class has an instance for the type named by head.
type InstanceChecker interface {
	HasInstance(class, head ident.Symbol) bool
}

// Unifier unifies types against one Substitution.
type Unifier struct {
	Subst     *Substitution
	Gen       *VarGen
	Instances InstanceChecker
}

// Unify makes expected and actual equal by binding variables. Failures are
// reported in the Result; bindings made before a failure stay in place.
func (u *Unifier) Unify(expected, actual Type) Result {
	e := u.Subst.Target(expected)
	a := u.Subst.Target(actual)

	ev, eIsVar := e.(Variable)
	av, aIsVar := a.(Variable)
	switch {
	case eIsVar && aIsVar:
		return u.unifyVariables(ev, av)
	case eIsVar:
		return u.bindVariable(ev, a, e, a)
	case aIsVar:
		return u.bindVariable(av, e, e, a)
	}

	switch x := e.(type) {
	case Function:
		y, ok := a.(Function)
		if !ok {
			return u.mismatch(e, a)
		}
		if r := u.Unify(x.Arg, y.Arg); !r.OK() {
			return u.widen(r, e, a)
		}
		if r := u.Unify(x.Result, y.Result); !r.OK() {
			return u.widen(r, e, a)
		}
		return Result{Outcome: Unified, Type: u.Subst.Generate(e)}
	case Sum:
		y, ok := a.(Sum)
		if !ok || x.Symbol != y.Symbol || len(x.Params) != len(y.Params) {
			return u.mismatch(e, a)
		}
		for i := range x.Params {
			if r := u.Unify(x.Params[i], y.Params[i]); !r.OK() {
				return u.widen(r, e, a)
			}
		}
		return Result{Outcome: Unified, Type: u.Subst.Generate(e)}
	case Instance:
		if y, ok := a.(Instance); ok && y.Class == x.Class {
			if r := u.Unify(x.Var, y.Var); !r.OK() {
				return u.widen(r, e, a)
			}
			return Result{Outcome: Unified, Type: x}
		}
	}
	return u.mismatch(e, a)
}

func (u *Unifier) unifyVariables(e, a Variable) Result {
	if e.ID == a.ID {
		return Result{Outcome: Unified, Type: e}
	}
	switch {
	case a.Context.SubsetOf(e.Context):
		u.Subst.Bind(a, e)
		return Result{Outcome: Unified, Type: e}
	case e.Context.SubsetOf(a.Context):
		u.Subst.Bind(e, a)
		return Result{Outcome: Unified, Type: a}
	}
	joined := u.Gen.Fresh(e.Context.Union(a.Context))
	u.Subst.Bind(e, joined)
	u.Subst.Bind(a, joined)
	return Result{Outcome: Unified, Type: joined}
}

// bindVariable binds v to the non-variable t. expected and actual are the
// original operands, kept for the failure report.
func (u *Unifier) bindVariable(v Variable, t, expected, actual Type) Result {
	if Occurs(v.ID, u.Subst.Generate(t)) {
		return Result{
			Outcome:  CircularReference,
			Expected: u.Subst.Generate(expected),
			Actual:   u.Subst.Generate(actual),
		}
	}
	if !v.Context.IsEmpty() {
		if missing := u.missingInstances(v.Context, t); !missing.IsEmpty() {
			return Result{
				Outcome:  ContextMismatch,
				Expected: u.Subst.Generate(expected),
				Actual:   u.Subst.Generate(actual),
				Missing:  missing,
			}
		}
	}
	u.Subst.Bind(v, t)
	return Result{Outcome: Unified, Type: u.Subst.Generate(t)}
}

func (u *Unifier) missingInstances(ctx ident.Set, t Type) ident.Set {
	var head ident.Symbol
	switch x := t.(type) {
	case Sum:
		head = x.Symbol
	case Function:
		head = FunctionSymbol
	default:
		return ctx
	}
	var missing []ident.Symbol
	for _, class := range ctx.Items() {
		if u.Instances == nil || !u.Instances.HasInstance(class, head) {
			missing = append(missing, class)
		}
	}
	return ident.NewSet(missing...)
}

func (u *Unifier) mismatch(e, a Type) Result {
	return Result{
		Outcome:  TypeMismatch,
		Expected: u.Subst.Generate(e),
		Actual:   u.Subst.Generate(a),
	}
}

// widen keeps the inner outcome but reports the enclosing types, which read
// better in a diagnostic than the innermost pair.
func (u *Unifier) widen(inner Result, e, a Type) Result {
	inner.Expected = u.Subst.Generate(e)
	inner.Actual = u.Subst.Generate(a)
	return inner
}
