package ast

import (
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/types"
)

// Value is a closed union of expression nodes. Stages never mutate a node
// they received; they build a new one.
type Value interface {
	Span() source.Span
	valueNode()
}

// LiteralKind selects the primitive type of a literal.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitChar
)

func (k LiteralKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitString:
		return "string"
	case LitChar:
		return "char"
	}
	return "literal"
}

// Type returns the primitive type of literals of this kind.
func (k LiteralKind) Type() types.Type {
	switch k {
	case LitFloat:
		return types.Float
	case LitString:
		return types.String
	case LitChar:
		return types.Char
	}
	return types.Int
}

type Literal struct {
	Kind LiteralKind
	Text string
	Loc  source.Span
}

// Identifier references a value. Infix marks an operator-shaped lexeme
// (symbolic or backquoted); Quoted marks an operator wrapped in parentheses,
// which is always an operand.
type Identifier struct {
	Symbol ident.Symbol
	Infix  bool
	Quoted bool
	Loc    source.Span

	Type types.Type
	// Dictionaries are the instance arguments of a constrained reference,
	// filled in by method binding.
	Dictionaries []Dictionary
}

type Apply struct {
	Func Value
	Arg  Value
	Loc  source.Span
	Type types.Type
}

// Lambda is an anonymous function made of one or more cases that all take
// the same number of arguments.
type Lambda struct {
	Cases []*Case
	Loc   source.Span
	Type  types.Type
}

// Case is one alternative of a Lambda.
type Case struct {
	Args     []PatternAtom // one atom per argument, before shuffling
	Patterns []Pattern     // after shuffling
	Body     Value
	Loc      source.Span
	Invalid  bool // arguments failed to shuffle, already reported
}

// Let binds names sequentially; every binding sees the ones before it.
type Let struct {
	Bindings []*LetBinding
	Body     Value
	Loc      source.Span
	Type     types.Type
}

type LetBinding struct {
	Name  ident.Symbol
	Value Value
	Loc   source.Span
	Type  types.Type
}

// Unshuffled is a flat message of atoms waiting for operator shuffling.
type Unshuffled struct {
	Atoms []Value
	Loc   source.Span
}

// UnboundMethod is a reference to a class member whose instance is not known
// yet. Type is the instantiated member type at the reference.
type UnboundMethod struct {
	Member ident.Symbol
	Class  ident.Symbol
	Type   types.Type
	Loc    source.Span
}

// InstanceRef names the implementation of a class for one type.
type InstanceRef struct {
	Class  ident.Symbol
	Head   ident.Symbol
	Module string
}

func (r InstanceRef) String() string {
	return r.Class.String() + " " + r.Head.String() + " @" + r.Module
}

// BoundMethod is a class member reference resolved to a concrete instance.
type BoundMethod struct {
	Member   ident.Symbol
	Instance InstanceRef
	Type     types.Type
	Loc      source.Span
}

// Dictionary is one instance argument passed to a constrained definition:
// either a concrete instance, or the enclosing definition's own dictionary
// parameter when Bound is nil.
type Dictionary struct {
	Class ident.Symbol
	Bound *InstanceRef
	Param types.Instance
}

func (v *Literal) Span() source.Span       { return v.Loc }
func (v *Identifier) Span() source.Span    { return v.Loc }
func (v *Apply) Span() source.Span         { return v.Loc }
func (v *Lambda) Span() source.Span        { return v.Loc }
func (v *Let) Span() source.Span           { return v.Loc }
func (v *Unshuffled) Span() source.Span    { return v.Loc }
func (v *UnboundMethod) Span() source.Span { return v.Loc }
func (v *BoundMethod) Span() source.Span   { return v.Loc }

func (*Literal) valueNode()       {}
func (*Identifier) valueNode()    {}
func (*Apply) valueNode()         {}
func (*Lambda) valueNode()        {}
func (*Let) valueNode()           {}
func (*Unshuffled) valueNode()    {}
func (*UnboundMethod) valueNode() {}
func (*BoundMethod) valueNode()   {}

// TypeOf returns the checked type of v, or nil before type checking.
func TypeOf(v Value) types.Type {
	switch x := v.(type) {
	case *Literal:
		return x.Kind.Type()
	case *Identifier:
		return x.Type
	case *Apply:
		return x.Type
	case *Lambda:
		return x.Type
	case *Let:
		return x.Type
	case *UnboundMethod:
		return x.Type
	case *BoundMethod:
		return x.Type
	}
	return nil
}
