package symbols

import (
	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/types"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeRoot              // backed by the resolver, holds builtins
	ScopeModule            // qualified top-level definitions of one module
	ScopeChild             // unqualified locals: arguments, captures, let bindings
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeRoot:
		return "root"
	case ScopeModule:
		return "module"
	case ScopeChild:
		return "child"
	default:
		return "invalid"
	}
}

// Scope is one node of the scope tree. Module scopes key their entries by
// qualified symbol; child scopes key them by unqualified symbol.
type Scope struct {
	Kind    ScopeKind
	Parent  ScopeID
	Module  string
	Imports []ast.Import
	Span    source.Span

	Values    map[ident.Symbol]*Entry
	Types     map[ident.Symbol]*TypeEntry
	Instances []Instance
}

// ClassRef links a class member to its class and the class parameter as it
// appears in the member's signature.
type ClassRef struct {
	Class ident.Symbol
	Param types.Variable
}

// ConstructorRef links a data constructor to its type.
type ConstructorRef struct {
	Data  ident.Symbol
	Arity int
}

// Entry is everything known about one value symbol.
type Entry struct {
	Symbol      ident.Symbol
	Value       types.Type
	Signature   types.Type
	Operator    *ast.Operator
	Class       *ClassRef
	Constructor *ConstructorRef
	Loc         source.Span

	// Monomorphic entries (lambda arguments, pattern captures) are never
	// generalised: references see the raw type.
	Monomorphic bool
	// InProgress is set while the entry's own definition group is checked.
	InProgress bool
	// External entries come from the resolver; their variables belong to
	// another run and are renamed on every reference.
	External bool
}

// ClassInfo describes a type class.
type ClassInfo struct {
	Param   types.Variable
	Members []ident.Symbol
}

// TypeEntry is everything known about one type-level symbol.
type TypeEntry struct {
	Symbol       ident.Symbol
	Arity        int
	Class        *ClassInfo
	Constructors []ident.Symbol
	Loc          source.Span
}

// Instance records that Module implements Class for the type named Head.
type Instance struct {
	Class  ident.Symbol
	Head   ident.Symbol
	Module string
	Loc    source.Span
}
