package symbols

import (
	"errors"
	"fmt"
	"slices"

	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/types"
)

// ErrAlreadyDefined is returned when a scope already holds the aspect
// (value, signature, operator, type) being defined.
var ErrAlreadyDefined = errors.New("already defined")

// Options configure a Table.
type Options struct {
	Resolver Resolver
	Gen      *types.VarGen
	// Prelude lists modules every module imports implicitly, consulted by the
	// root scope after a module's own imports.
	Prelude []string
	// ScopeHint is a capacity hint for the scope arena.
	ScopeHint uint32
}

// Table is the scope chain of one unit: an arena of scopes plus the type
// variable bindings they share. It is not safe for concurrent use; only the
// VarGen may be shared between tables.
type Table struct {
	Scopes   *Scopes
	Subst    *types.Substitution
	Gen      *types.VarGen
	Resolver Resolver

	prelude  []string
	root     ScopeID
	modules  map[string]ScopeID
	stack    []ScopeID
	external map[ident.Symbol]*Entry
	active   map[*Entry]struct{}
}

// NewTable builds a table with an initialised root scope.
func NewTable(opts Options) *Table {
	if opts.Resolver == nil {
		opts.Resolver = emptyResolver{}
	}
	if opts.Gen == nil {
		opts.Gen = types.NewVarGen()
	}
	t := &Table{
		Scopes:   NewScopes(opts.ScopeHint),
		Subst:    types.NewSubstitution(),
		Gen:      opts.Gen,
		Resolver: opts.Resolver,
		prelude:  slices.Clone(opts.Prelude),
		modules:  make(map[string]ScopeID),
		external: make(map[ident.Symbol]*Entry),
		active:   make(map[*Entry]struct{}),
	}
	t.root = t.Scopes.New(ScopeRoot, NoScopeID, types.BuiltinModule, nil, source.Span{})
	root := t.Scopes.MustGet(t.root)
	for sym, arity := range types.Builtins() {
		root.Types[sym] = &TypeEntry{Symbol: sym, Arity: arity}
	}
	return t
}

// Root returns the root scope.
func (t *Table) Root() ScopeID { return t.root }

// Fresh returns a new type variable with the given context.
func (t *Table) Fresh(ctx ident.Set) types.Variable {
	return t.Gen.Fresh(ctx)
}

// EnterModule creates the scope of module name. Each module gets exactly one
// scope per table.
func (t *Table) EnterModule(name string, imports []ast.Import, span source.Span) ScopeID {
	if _, ok := t.modules[name]; ok {
		panic(fmt.Sprintf("symbols: module %s entered twice", name))
	}
	id := t.Scopes.New(ScopeModule, t.root, name, slices.Clone(imports), span)
	t.modules[name] = id
	return id
}

// ModuleScope returns the scope of a module defined in this table.
func (t *Table) ModuleScope(name string) (ScopeID, bool) {
	id, ok := t.modules[name]
	return id, ok
}

// Modules lists the modules defined in this table.
func (t *Table) Modules() []string {
	out := make([]string, 0, len(t.modules))
	for name := range t.modules {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Enter pushes a child scope of parent.
func (t *Table) Enter(parent ScopeID, span source.Span) ScopeID {
	p := t.Scopes.MustGet(parent)
	id := t.Scopes.New(ScopeChild, parent, p.Module, nil, span)
	t.stack = append(t.stack, id)
	return id
}

// Leave pops id, which must be the innermost entered scope.
func (t *Table) Leave(id ScopeID) {
	if len(t.stack) == 0 || t.stack[len(t.stack)-1] != id {
		panic(fmt.Sprintf("symbols: leaving scope %d out of order (stack %v)", id, t.stack))
	}
	t.stack = t.stack[:len(t.stack)-1]
	t.Scopes.release(id)
}

// Depth reports how many child scopes are currently entered.
func (t *Table) Depth() int { return len(t.stack) }

// ModuleOf returns the module name owning scope.
func (t *Table) ModuleOf(scope ScopeID) string {
	return t.Scopes.MustGet(scope).Module
}

// moduleScopeOf walks up to the module scope enclosing scope.
func (t *Table) moduleScopeOf(scope ScopeID) *Scope {
	for id := scope; id.IsValid(); {
		s := t.Scopes.MustGet(id)
		if s.Kind == ScopeModule {
			return s
		}
		id = s.Parent
	}
	return nil
}

// ownerFor returns the scope that may hold sym when defined from scope, and
// panics when the symbol does not belong there.
func (t *Table) ownerFor(scope ScopeID, sym ident.Symbol) *Scope {
	s := t.Scopes.MustGet(scope)
	switch s.Kind {
	case ScopeModule:
		if !sym.IsQualified() || sym.Module != s.Module {
			panic(fmt.Sprintf("symbols: %s cannot be defined in module %s", sym, s.Module))
		}
	case ScopeChild:
		if sym.IsQualified() {
			panic(fmt.Sprintf("symbols: qualified %s defined in a child scope", sym))
		}
	default:
		panic(fmt.Sprintf("symbols: cannot define %s in %s scope", sym, s.Kind))
	}
	return s
}

func (t *Table) entryFor(scope ScopeID, sym ident.Symbol, loc source.Span) *Entry {
	s := t.ownerFor(scope, sym)
	e, ok := s.Values[sym]
	if !ok {
		e = &Entry{Symbol: sym, Loc: loc}
		s.Values[sym] = e
	}
	return e
}

// Declare makes sym known in scope without giving it a type yet. It reports
// whether the entry already existed.
func (t *Table) Declare(scope ScopeID, sym ident.Symbol, loc source.Span) (*Entry, bool) {
	s := t.ownerFor(scope, sym)
	if e, ok := s.Values[sym]; ok {
		return e, true
	}
	e := &Entry{Symbol: sym, Loc: loc}
	s.Values[sym] = e
	return e, false
}

// DefineValue records the value type of sym in scope.
func (t *Table) DefineValue(scope ScopeID, sym ident.Symbol, tpe types.Type, loc source.Span) (*Entry, error) {
	e := t.entryFor(scope, sym, loc)
	if e.Value != nil {
		return e, fmt.Errorf("value %s: %w", sym, ErrAlreadyDefined)
	}
	e.Value = tpe
	e.Loc = loc
	return e, nil
}

// DefineLocal defines a monomorphic local such as a lambda argument.
func (t *Table) DefineLocal(scope ScopeID, sym ident.Symbol, tpe types.Type, loc source.Span) (*Entry, error) {
	e, err := t.DefineValue(scope, sym, tpe, loc)
	if err == nil {
		e.Monomorphic = true
	}
	return e, err
}

// DefineSignature records the declared type of sym.
func (t *Table) DefineSignature(scope ScopeID, sym ident.Symbol, tpe types.Type, loc source.Span) (*Entry, error) {
	e := t.entryFor(scope, sym, loc)
	if e.Signature != nil {
		return e, fmt.Errorf("signature %s: %w", sym, ErrAlreadyDefined)
	}
	e.Signature = tpe
	return e, nil
}

// DefineOperator records the fixity of sym.
func (t *Table) DefineOperator(scope ScopeID, sym ident.Symbol, op ast.Operator, loc source.Span) (*Entry, error) {
	e := t.entryFor(scope, sym, loc)
	if e.Operator != nil {
		return e, fmt.Errorf("operator %s: %w", sym, ErrAlreadyDefined)
	}
	e.Operator = &op
	return e, nil
}

// RedefineValue replaces the recorded value type of an existing entry.
func (t *Table) RedefineValue(scope ScopeID, sym ident.Symbol, tpe types.Type) {
	s := t.ownerFor(scope, sym)
	e, ok := s.Values[sym]
	if !ok {
		panic(fmt.Sprintf("symbols: redefining undefined %s", sym))
	}
	e.Value = tpe
}

// DefineType records a data type or class in a module scope.
func (t *Table) DefineType(scope ScopeID, entry TypeEntry) (*TypeEntry, error) {
	s := t.ownerFor(scope, entry.Symbol)
	if s.Kind != ScopeModule {
		panic(fmt.Sprintf("symbols: type %s outside a module scope", entry.Symbol))
	}
	if existing, ok := s.Types[entry.Symbol]; ok {
		return existing, fmt.Errorf("type %s: %w", entry.Symbol, ErrAlreadyDefined)
	}
	e := entry
	s.Types[entry.Symbol] = &e
	return &e, nil
}

// SetInProgress marks an entry as being checked. While in progress,
// references see its raw type and its variables stay fixed for
// generalisation of nested lets.
func (t *Table) SetInProgress(e *Entry, on bool) {
	e.InProgress = on
	if on {
		t.active[e] = struct{}{}
	} else {
		delete(t.active, e)
	}
}
