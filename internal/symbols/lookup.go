package symbols

import (
	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/types"
)

// Lookup finds the entry of an already resolved symbol: unqualified symbols
// are searched in the child scopes above scope, qualified ones in their
// module, whether it lives in this table or behind the resolver.
func (t *Table) Lookup(scope ScopeID, sym ident.Symbol) (*Entry, bool) {
	if !sym.IsQualified() {
		for id := scope; id.IsValid(); {
			s := t.Scopes.MustGet(id)
			if s.Kind != ScopeChild {
				break
			}
			if e, ok := s.Values[sym]; ok {
				return e, true
			}
			id = s.Parent
		}
		return nil, false
	}
	if id, ok := t.modules[sym.Module]; ok {
		e, found := t.Scopes.MustGet(id).Values[sym]
		return e, found
	}
	if e, ok := t.external[sym]; ok {
		return e, true
	}
	d, ok := t.Resolver.LookupValue(sym)
	if !ok {
		return nil, false
	}
	e := &Entry{
		Symbol:      d.Symbol,
		Value:       d.Type,
		Operator:    d.Operator,
		Class:       d.Class,
		Constructor: d.Constructor,
		External:    true,
	}
	t.external[sym] = e
	return e, true
}

// LookupType finds a resolved type-level symbol.
func (t *Table) LookupType(sym ident.Symbol) (*TypeEntry, bool) {
	if sym.Module == types.BuiltinModule {
		e, ok := t.Scopes.MustGet(t.root).Types[sym]
		return e, ok
	}
	if id, ok := t.modules[sym.Module]; ok {
		e, found := t.Scopes.MustGet(id).Types[sym]
		return e, found
	}
	d, ok := t.Resolver.LookupType(sym)
	if !ok {
		return nil, false
	}
	return &TypeEntry{Symbol: d.Symbol, Arity: d.Arity, Class: d.Class, Constructors: d.Constructors}, true
}

func (t *Table) valueDefined(sym ident.Symbol) bool {
	_, ok := t.Lookup(NoScopeID, sym)
	return ok
}

func (t *Table) typeDefined(sym ident.Symbol) bool {
	_, ok := t.LookupType(sym)
	return ok
}

// Qualify resolves sym as seen from scope. Lookup order: locals of the child
// scopes, the module's own definitions, the module's imports in declaration
// order, then the implicit prelude imports. The first import that exposes
// the member and actually defines it wins.
func (t *Table) Qualify(scope ScopeID, sym ident.Symbol) (ident.Symbol, bool) {
	if sym.IsQualified() {
		return sym, t.valueDefined(sym)
	}
	if _, ok := t.Lookup(scope, sym); ok {
		return sym, true
	}
	return t.qualifyVia(scope, sym, t.valueDefined)
}

// QualifyType resolves a type or class name as seen from scope. Builtin
// types are found last.
func (t *Table) QualifyType(scope ScopeID, sym ident.Symbol) (ident.Symbol, bool) {
	if sym.IsQualified() {
		return sym, t.typeDefined(sym)
	}
	if q, ok := t.qualifyVia(scope, sym, t.typeDefined); ok {
		return q, true
	}
	builtin := ident.Qualified(types.BuiltinModule, sym.Member)
	if t.typeDefined(builtin) {
		return builtin, true
	}
	return sym, false
}

func (t *Table) qualifyVia(scope ScopeID, sym ident.Symbol, defined func(ident.Symbol) bool) (ident.Symbol, bool) {
	mod := t.moduleScopeOf(scope)
	if mod == nil {
		return sym, false
	}
	own := ident.Qualified(mod.Module, sym.Member)
	if defined(own) {
		return own, true
	}
	for _, imp := range mod.Imports {
		if !imp.Exposes(sym.Member) {
			continue
		}
		if q := ident.Qualified(imp.Module, sym.Member); defined(q) {
			return q, true
		}
	}
	for _, module := range t.prelude {
		if module == mod.Module {
			continue
		}
		if q := ident.Qualified(module, sym.Member); defined(q) {
			return q, true
		}
	}
	return sym, false
}

// IsOperator reports whether sym resolves to a qualified symbol declared as
// an operator.
func (t *Table) IsOperator(scope ScopeID, sym ident.Symbol) bool {
	_, _, ok := t.Operator(scope, sym)
	return ok
}

// Operator resolves sym and returns its fixity.
func (t *Table) Operator(scope ScopeID, sym ident.Symbol) (ast.Operator, ident.Symbol, bool) {
	q, ok := t.Qualify(scope, sym)
	if !ok || !q.IsQualified() {
		return ast.Operator{}, q, false
	}
	e, ok := t.Lookup(scope, q)
	if !ok || e.Operator == nil {
		return ast.Operator{}, q, false
	}
	return *e.Operator, q, true
}

// RawValue returns the current type of sym without copying. It is nil when
// nothing is known yet.
func (t *Table) RawValue(scope ScopeID, sym ident.Symbol) (types.Type, bool) {
	e, ok := t.Lookup(scope, sym)
	if !ok {
		return nil, false
	}
	if e.Signature != nil {
		return e.Signature, true
	}
	return e.Value, e.Value != nil
}

// Value returns a fresh generic copy of sym's type, so every reference can be
// instantiated independently. Monomorphic and in-progress entries are
// returned as they are. An entry with no type yet gets a fresh variable.
func (t *Table) Value(scope ScopeID, sym ident.Symbol) (types.Type, *Entry, bool) {
	e, ok := t.Lookup(scope, sym)
	if !ok {
		return nil, nil, false
	}
	switch {
	case e.External:
		return types.Instantiate(e.Value, t.Gen), e, true
	case e.Signature != nil:
		return types.GenericCopy(e.Signature, t.Subst, t.Gen, nil), e, true
	case e.Value == nil:
		e.Value = t.Gen.Fresh(ident.Set{})
		return e.Value, e, true
	case e.Monomorphic || e.InProgress:
		return t.Subst.Generate(e.Value), e, true
	}
	fixed := t.EnvironmentVars(scope)
	if !e.Symbol.IsQualified() {
		// let bindings generalise only unconstrained variables
		fixed = t.fixConstrained(e.Value, fixed)
	}
	return types.GenericCopy(e.Value, t.Subst, t.Gen, fixed), e, true
}

func (t *Table) fixConstrained(tpe types.Type, env func(types.VarID) bool) func(types.VarID) bool {
	constrained := make(map[types.VarID]bool)
	for _, v := range types.FreeVars(t.Subst.Generate(tpe)) {
		if !v.Context.IsEmpty() {
			constrained[v.ID] = true
		}
	}
	return func(id types.VarID) bool {
		return constrained[id] || env(id)
	}
}

// EnvironmentVars returns a predicate matching the variables free in the
// monomorphic locals visible from scope and in the entries being checked.
// Those variables must not be generalised.
func (t *Table) EnvironmentVars(scope ScopeID) func(types.VarID) bool {
	fixed := make(map[types.VarID]bool)
	collect := func(tpe types.Type) {
		if tpe == nil {
			return
		}
		for _, v := range types.FreeVars(t.Subst.Generate(tpe)) {
			fixed[v.ID] = true
		}
	}
	for id := scope; id.IsValid(); {
		s := t.Scopes.MustGet(id)
		if s.Kind != ScopeChild {
			break
		}
		for _, e := range s.Values {
			if e.Monomorphic || e.InProgress {
				collect(e.Value)
			}
		}
		id = s.Parent
	}
	for e := range t.active {
		collect(e.Value)
	}
	return func(id types.VarID) bool { return fixed[id] }
}
