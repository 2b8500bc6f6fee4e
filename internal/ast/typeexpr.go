package ast

import (
	"strings"

	"tern/internal/ident"
	"tern/internal/source"
)

// TypeExpr is a type as written in a signature or declaration.
type TypeExpr interface {
	Span() source.Span
	typeExpr()
}

// TypeVar is a lower-case type variable.
type TypeVar struct {
	Name string
	Loc  source.Span
}

// TypeRef names a type constructor, possibly applied.
type TypeRef struct {
	Symbol ident.Symbol
	Args   []TypeExpr
	Loc    source.Span
}

type TypeFunc struct {
	Arg    TypeExpr
	Result TypeExpr
	Loc    source.Span
}

func (t *TypeVar) Span() source.Span  { return t.Loc }
func (t *TypeRef) Span() source.Span  { return t.Loc }
func (t *TypeFunc) Span() source.Span { return t.Loc }

func (*TypeVar) typeExpr()  {}
func (*TypeRef) typeExpr()  {}
func (*TypeFunc) typeExpr() {}

// Constraint requires Var to be an instance of Class.
type Constraint struct {
	Class ident.Symbol
	Var   string
	Loc   source.Span
}

// TypeScheme is a constrained type: (Eq a, Show b) => a -> b.
type TypeScheme struct {
	Constraints []Constraint
	Body        TypeExpr
	Loc         source.Span
}

// FormatTypeExpr renders t in surface syntax.
func FormatTypeExpr(t TypeExpr) string {
	var b strings.Builder
	writeTypeExpr(&b, t, false)
	return b.String()
}

func writeTypeExpr(b *strings.Builder, t TypeExpr, nested bool) {
	switch x := t.(type) {
	case *TypeVar:
		b.WriteString(x.Name)
	case *TypeRef:
		if nested && len(x.Args) > 0 {
			b.WriteByte('(')
		}
		b.WriteString(x.Symbol.String())
		for _, a := range x.Args {
			b.WriteByte(' ')
			writeTypeExpr(b, a, true)
		}
		if nested && len(x.Args) > 0 {
			b.WriteByte(')')
		}
	case *TypeFunc:
		if nested {
			b.WriteByte('(')
		}
		_, argIsFunc := x.Arg.(*TypeFunc)
		writeTypeExpr(b, x.Arg, argIsFunc)
		b.WriteString(" -> ")
		writeTypeExpr(b, x.Result, false)
		if nested {
			b.WriteByte(')')
		}
	}
}
