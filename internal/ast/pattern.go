package ast

import (
	"unicode"

	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/types"
)

// PatternAtom is one element of an unshuffled clause head or lambda argument.
type PatternAtom interface {
	Span() source.Span
	patternAtom()
}

// PatName is a name in a pattern: a capture, a constructor, the defined
// function itself, or an operator.
type PatName struct {
	Symbol ident.Symbol
	Infix  bool
	Quoted bool
	Loc    source.Span
}

type PatLiteral struct {
	Literal *Literal
}

// PatGroup is a parenthesised sub-pattern, itself unshuffled.
type PatGroup struct {
	Atoms []PatternAtom
	Loc   source.Span
}

type PatWildcard struct {
	Loc source.Span
}

func (p *PatName) Span() source.Span     { return p.Loc }
func (p *PatLiteral) Span() source.Span  { return p.Literal.Loc }
func (p *PatGroup) Span() source.Span    { return p.Loc }
func (p *PatWildcard) Span() source.Span { return p.Loc }

func (*PatName) patternAtom()     {}
func (*PatLiteral) patternAtom()  {}
func (*PatGroup) patternAtom()    {}
func (*PatWildcard) patternAtom() {}

// Pattern is a shuffled pattern. Arg is the positional argument name
// ("#0", "#1.0", ...) assigned during shuffling.
type Pattern interface {
	Span() source.Span
	ArgName() string
	patternNode()
}

// Capture binds the matched value to a name.
type Capture struct {
	Symbol ident.Symbol
	Arg    string
	Loc    source.Span
	Type   types.Type
}

// Equal matches a literal value.
type Equal struct {
	Value *Literal
	Arg   string
}

// Deconstruct matches a data constructor and its arguments.
type Deconstruct struct {
	Constructor ident.Symbol
	Args        []Pattern
	Arg         string
	Loc         source.Span
	Type        types.Type
}

type Wildcard struct {
	Arg  string
	Loc  source.Span
	Type types.Type
}

func (p *Capture) Span() source.Span     { return p.Loc }
func (p *Equal) Span() source.Span       { return p.Value.Loc }
func (p *Deconstruct) Span() source.Span { return p.Loc }
func (p *Wildcard) Span() source.Span    { return p.Loc }

func (p *Capture) ArgName() string     { return p.Arg }
func (p *Equal) ArgName() string       { return p.Arg }
func (p *Deconstruct) ArgName() string { return p.Arg }
func (p *Wildcard) ArgName() string    { return p.Arg }

func (*Capture) patternNode()     {}
func (*Equal) patternNode()       {}
func (*Deconstruct) patternNode() {}
func (*Wildcard) patternNode()    {}

// Captures lists the names bound by p, left to right.
func Captures(p Pattern) []*Capture {
	var out []*Capture
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch x := p.(type) {
		case *Capture:
			out = append(out, x)
		case *Deconstruct:
			for _, a := range x.Args {
				walk(a)
			}
		}
	}
	walk(p)
	return out
}

// IsConstructorName reports whether a pattern name denotes a data
// constructor: it starts with an upper-case letter, or with ':' when symbolic.
func IsConstructorName(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r) || r == ':'
}
