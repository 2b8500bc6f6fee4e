package shuffle

import (
	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
)

// OperatorLookup resolves a symbol to its declared fixity, reporting false
// when the symbol is not a declared operator.
type OperatorLookup func(ident.Symbol) (ast.Operator, bool)

// Values shuffles an unshuffled message. operand converts every non-operator
// atom (nested messages, lambdas, lets) before it enters the tree.
func Values(msg *ast.Unshuffled, lookup OperatorLookup, operand func(ast.Value) (ast.Value, error)) (ast.Value, error) {
	return Shuffle(msg.Atoms, msg.Loc, Ops[ast.Value, ast.Value]{
		Classify: func(atom ast.Value) (Item[ast.Value], error) {
			if id, ok := atom.(*ast.Identifier); ok && !id.Quoted {
				op, isOp := lookup(id.Symbol)
				switch {
				case isOp:
					ref := *id
					return Item[ast.Value]{Value: &ref, Operator: &op, Name: id.Symbol.String(), Span: id.Loc}, nil
				case id.Infix:
					return Item[ast.Value]{}, errorf(diag.SynNotAnOperator, id.Loc,
						"%s is not a declared operator", id.Symbol)
				}
			}
			v, err := operand(atom)
			if err != nil {
				return Item[ast.Value]{}, err
			}
			return Item[ast.Value]{Value: v, Span: atom.Span()}, nil
		},
		Apply: func(fn, arg ast.Value) ast.Value {
			return &ast.Apply{Func: fn, Arg: arg, Loc: fn.Span().Cover(arg.Span())}
		},
	})
}
