// Package shuffle rewrites flat messages into application trees according to
// declared operator fixity and precedence. One algorithm serves both value
// messages and clause-head patterns.
package shuffle

import (
	"fmt"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
)

// Error is a failed shuffle. A message either shuffles completely or yields
// exactly one Error.
type Error struct {
	Code    diag.Code
	Span    source.Span
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errorf(code diag.Code, span source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Item is a classified atom: an operand, or an operator together with its
// reference as a value of the result type.
type Item[R any] struct {
	Value    R
	Operator *ast.Operator
	Name     string
	Span     source.Span
}

// Ops adapts the algorithm to one atom and result type.
type Ops[A, R any] struct {
	Classify func(A) (Item[R], error)
	Apply    func(fn, arg R) R
}

type operand[R any] struct {
	value R
	span  source.Span
}

type machine[R any] struct {
	apply  func(fn, arg R) R
	output []operand[R]
	stack  []Item[R]
}

// Shuffle runs shunting-yard over atoms. Juxtaposed operands are applied
// left to right before any operator sees them, so application binds tighter
// than every operator.
func Shuffle[A, R any](atoms []A, span source.Span, ops Ops[A, R]) (R, error) {
	var zero R
	if len(atoms) == 0 {
		return zero, errorf(diag.SynEmptyMessage, span, "empty expression")
	}

	m := &machine[R]{apply: ops.Apply}
	expectOperand := true
	var last Item[R]

	for _, atom := range atoms {
		item, err := ops.Classify(atom)
		if err != nil {
			return zero, err
		}
		last = item

		if item.Operator == nil {
			if expectOperand {
				m.output = append(m.output, operand[R]{value: item.Value, span: item.Span})
			} else {
				top := &m.output[len(m.output)-1]
				top.value = m.apply(top.value, item.Value)
				top.span = top.span.Cover(item.Span)
			}
			expectOperand = false
			continue
		}

		op := *item.Operator
		if expectOperand {
			if !op.IsPrefix() {
				return zero, errorf(diag.SynUnexpectedBinaryOperator, item.Span,
					"unexpected binary operator %s at this position", item.Name)
			}
			m.stack = append(m.stack, item)
			continue
		}
		if op.IsPrefix() {
			return zero, errorf(diag.SynUnexpectedPrefixOperator, item.Span,
				"prefix operator %s cannot follow an operand", item.Name)
		}
		for len(m.stack) > 0 && popsBefore(*m.stack[len(m.stack)-1].Operator, op) {
			if err := m.reduce(); err != nil {
				return zero, err
			}
		}
		m.stack = append(m.stack, item)
		expectOperand = true
	}

	if expectOperand {
		return zero, errorf(diag.SynMissingOperand, last.Span, "operator %s is missing an operand", last.Name)
	}
	for len(m.stack) > 0 {
		if err := m.reduce(); err != nil {
			return zero, err
		}
	}
	if len(m.output) != 1 {
		return zero, errorf(diag.SynMissingOperand, span, "malformed expression")
	}
	return m.output[0].value, nil
}

// popsBefore reports whether the stacked operator top must be applied before
// the incoming infix operator next is pushed.
func popsBefore(top, next ast.Operator) bool {
	if top.Precedence != next.Precedence {
		return top.Precedence > next.Precedence
	}
	return top.Fixity != ast.FixityRightInfix
}

func (m *machine[R]) reduce() error {
	op := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]

	if op.Operator.IsPrefix() {
		if len(m.output) < 1 {
			return errorf(diag.SynMissingOperand, op.Span, "operator %s is missing an operand", op.Name)
		}
		x := m.output[len(m.output)-1]
		m.output[len(m.output)-1] = operand[R]{
			value: m.apply(op.Value, x.value),
			span:  op.Span.Cover(x.span),
		}
		return nil
	}

	if len(m.output) < 2 {
		return errorf(diag.SynMissingOperand, op.Span, "operator %s is missing an operand", op.Name)
	}
	left := m.output[len(m.output)-2]
	right := m.output[len(m.output)-1]
	m.output = m.output[:len(m.output)-2]
	m.output = append(m.output, operand[R]{
		value: m.apply(m.apply(op.Value, left.value), right.value),
		span:  left.span.Cover(right.span),
	})
	return nil
}
