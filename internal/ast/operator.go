package ast

import "fmt"

// Fixity tells how an operator takes its operands.
type Fixity uint8

const (
	FixityPrefix Fixity = iota
	FixityLeftInfix
	FixityRightInfix
)

func (f Fixity) String() string {
	switch f {
	case FixityPrefix:
		return "prefix"
	case FixityLeftInfix:
		return "left infix"
	case FixityRightInfix:
		return "right infix"
	default:
		return fmt.Sprintf("Fixity(%d)", f)
	}
}

// ParseFixity accepts the spellings used by operator declarations.
func ParseFixity(s string) (Fixity, bool) {
	switch s {
	case "prefix":
		return FixityPrefix, true
	case "left infix", "infixl", "left":
		return FixityLeftInfix, true
	case "right infix", "infixr", "right":
		return FixityRightInfix, true
	}
	return 0, false
}

// MaxPrecedence is the highest precedence an operator may declare.
const MaxPrecedence = 20

// Operator is the declared fixity and precedence of a symbol.
type Operator struct {
	Fixity     Fixity
	Precedence uint8
}

func (o Operator) IsPrefix() bool {
	return o.Fixity == FixityPrefix
}

func (o Operator) String() string {
	return fmt.Sprintf("%s %d", o.Fixity, o.Precedence)
}
