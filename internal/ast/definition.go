package ast

import (
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/types"
)

// DefKind enumerates the variants of Definition.
type DefKind uint8

const (
	DefOperator DefKind = iota
	DefSignature
	DefClause
	DefValue
	DefData
	DefClass
	DefInstance
	DefForeign
)

func (k DefKind) String() string {
	switch k {
	case DefOperator:
		return "operator"
	case DefSignature:
		return "signature"
	case DefClause:
		return "clause"
	case DefValue:
		return "value"
	case DefData:
		return "data"
	case DefClass:
		return "class"
	case DefInstance:
		return "instance"
	case DefForeign:
		return "foreign"
	}
	return "definition"
}

// Definition is a closed union of top-level module items.
type Definition interface {
	Span() source.Span
	Kind() DefKind
	definitionNode()
}

// OperatorDefinition declares fixity and precedence: `left infix 7 (+)`.
type OperatorDefinition struct {
	Symbol   ident.Symbol
	Operator Operator
	Loc      source.Span
}

// ValueSignature declares the type of a value: `(+) : Int -> Int -> Int`.
type ValueSignature struct {
	Symbol ident.Symbol
	Type   *TypeScheme
	Loc    source.Span
}

// ClauseDefinition is one equation as produced by the parser. The defined
// name is only known once the head is shuffled.
type ClauseDefinition struct {
	Clause *Clause
}

// Clause is one equation of a value definition.
type Clause struct {
	Head     []PatternAtom
	Patterns []Pattern
	Body     Value
	Loc      source.Span
	Invalid  bool // head failed to shuffle, already reported
}

// ValueDefinition groups the clauses of one value.
type ValueDefinition struct {
	Symbol  ident.Symbol
	Clauses []*Clause
	Loc     source.Span

	Type types.Type
	// Dictionaries are the dictionary parameters of a constrained value,
	// one per class constraint in first-occurrence order.
	Dictionaries []types.Instance
}

// Constructor is one alternative of a data declaration.
type Constructor struct {
	Symbol ident.Symbol
	Args   []TypeExpr
	Loc    source.Span
}

// DataDefinition declares a sum type and its constructors.
type DataDefinition struct {
	Symbol       ident.Symbol
	Params       []string
	Constructors []Constructor
	Loc          source.Span
}

// ClassDefinition declares a single-parameter type class.
type ClassDefinition struct {
	Symbol  ident.Symbol
	Param   string
	Members []*ValueSignature
	Loc     source.Span
}

// InstanceDefinition implements Class for the type Head applied to
// distinct type variables.
type InstanceDefinition struct {
	Class   ident.Symbol
	Head    *TypeRef
	Members []*ValueDefinition
	Loc     source.Span
}

// ForeignDefinition declares a primitive value with a type and no body.
type ForeignDefinition struct {
	Symbol ident.Symbol
	Type   *TypeScheme
	Loc    source.Span
}

func (d *OperatorDefinition) Span() source.Span { return d.Loc }
func (d *ValueSignature) Span() source.Span     { return d.Loc }
func (d *ClauseDefinition) Span() source.Span   { return d.Clause.Loc }
func (d *ValueDefinition) Span() source.Span    { return d.Loc }
func (d *DataDefinition) Span() source.Span     { return d.Loc }
func (d *ClassDefinition) Span() source.Span    { return d.Loc }
func (d *InstanceDefinition) Span() source.Span { return d.Loc }
func (d *ForeignDefinition) Span() source.Span  { return d.Loc }

func (*OperatorDefinition) Kind() DefKind { return DefOperator }
func (*ValueSignature) Kind() DefKind     { return DefSignature }
func (*ClauseDefinition) Kind() DefKind   { return DefClause }
func (*ValueDefinition) Kind() DefKind    { return DefValue }
func (*DataDefinition) Kind() DefKind     { return DefData }
func (*ClassDefinition) Kind() DefKind    { return DefClass }
func (*InstanceDefinition) Kind() DefKind { return DefInstance }
func (*ForeignDefinition) Kind() DefKind  { return DefForeign }

func (*OperatorDefinition) definitionNode() {}
func (*ValueSignature) definitionNode()     {}
func (*ClauseDefinition) definitionNode()   {}
func (*ValueDefinition) definitionNode()    {}
func (*DataDefinition) definitionNode()     {}
func (*ClassDefinition) definitionNode()    {}
func (*InstanceDefinition) definitionNode() {}
func (*ForeignDefinition) definitionNode()  {}
