package types

import (
	"fmt"

	"tern/internal/ident"
)

// VarID identifies a type variable. Zero is never handed out by VarGen.
type VarID uint32

// NoVarID marks the absence of a variable.
const NoVarID VarID = 0

// Kind enumerates the variants of Type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVariable
	KindFunction
	KindSum
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVariable:
		return "variable"
	case KindFunction:
		return "function"
	case KindSum:
		return "sum"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a closed union: Variable, Function, Sum or Instance.
// Values are immutable; substitution lives in a Substitution, never in a Type.
type Type interface {
	Kind() Kind
	String() string
	isType()
}

// Variable is a type variable constrained by a set of type classes.
type Variable struct {
	ID      VarID
	Context ident.Set
}

// Function is arg -> result.
type Function struct {
	Arg    Type
	Result Type
}

// Sum is a named type applied to parameters, e.g. Maybe Int.
type Sum struct {
	Symbol ident.Symbol
	Params []Type
}

// Instance stands for the dictionary argument that satisfies Class for the
// variable Var. It only appears after method binding.
type Instance struct {
	Var   Variable
	Class ident.Symbol
}

func (Variable) Kind() Kind { return KindVariable }
func (Function) Kind() Kind { return KindFunction }
func (Sum) Kind() Kind      { return KindSum }
func (Instance) Kind() Kind { return KindInstance }

func (Variable) isType() {}
func (Function) isType() {}
func (Sum) isType()      {}
func (Instance) isType() {}

func (v Variable) String() string { return Format(v) }
func (f Function) String() string { return Format(f) }
func (s Sum) String() string      { return Format(s) }
func (i Instance) String() string { return Format(i) }

// Func builds a curried function type from argument types and a result.
func Func(result Type, args ...Type) Type {
	for i := len(args) - 1; i >= 0; i-- {
		result = Function{Arg: args[i], Result: result}
	}
	return result
}

// Con builds a Sum type.
func Con(sym ident.Symbol, params ...Type) Sum {
	return Sum{Symbol: sym, Params: params}
}

// Arity counts the arrows of a curried function type.
func Arity(t Type) int {
	n := 0
	for {
		f, ok := t.(Function)
		if !ok {
			return n
		}
		n++
		t = f.Result
	}
}

// Equal compares two types structurally, ignoring nothing.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case Variable:
		y, ok := b.(Variable)
		return ok && x.ID == y.ID && x.Context.Equal(y.Context)
	case Function:
		y, ok := b.(Function)
		return ok && Equal(x.Arg, y.Arg) && Equal(x.Result, y.Result)
	case Sum:
		y, ok := b.(Sum)
		if !ok || x.Symbol != y.Symbol || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	case Instance:
		y, ok := b.(Instance)
		return ok && x.Var.ID == y.Var.ID && x.Class == y.Class
	}
	return a == nil && b == nil
}
