package shuffle

import (
	"fmt"
	"slices"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/source"
)

// Term is a shuffled pattern before it is interpreted: an atom applied to
// argument terms.
type Term struct {
	Head ast.PatternAtom
	Args []*Term
	Loc  source.Span
}

// Patterns shuffles a clause head or a parenthesised pattern group.
func Patterns(atoms []ast.PatternAtom, span source.Span, lookup OperatorLookup) (*Term, error) {
	return Shuffle(atoms, span, Ops[ast.PatternAtom, *Term]{
		Classify: func(atom ast.PatternAtom) (Item[*Term], error) {
			switch x := atom.(type) {
			case *ast.PatName:
				if x.Quoted {
					break
				}
				op, isOp := lookup(x.Symbol)
				switch {
				case isOp:
					return Item[*Term]{Value: &Term{Head: x, Loc: x.Loc}, Operator: &op, Name: x.Symbol.String(), Span: x.Loc}, nil
				case x.Infix:
					return Item[*Term]{}, errorf(diag.SynNotAnOperator, x.Loc, "%s is not a declared operator", x.Symbol)
				}
			case *ast.PatGroup:
				inner, err := Patterns(x.Atoms, x.Loc, lookup)
				if err != nil {
					return Item[*Term]{}, err
				}
				return Item[*Term]{Value: inner, Span: x.Loc}, nil
			}
			return Item[*Term]{Value: &Term{Head: atom, Loc: atom.Span()}, Span: atom.Span()}, nil
		},
		Apply: func(fn, arg *Term) *Term {
			return &Term{
				Head: fn.Head,
				Args: append(slices.Clone(fn.Args), arg),
				Loc:  fn.Loc.Cover(arg.Loc),
			}
		},
	})
}

// ClauseHead interprets a shuffled clause head: the defined name applied to
// argument patterns, named "#0", "#1", ...
func ClauseHead(term *Term) (ident.Symbol, []ast.Pattern, error) {
	name, ok := term.Head.(*ast.PatName)
	if !ok {
		return ident.Symbol{}, nil, errorf(diag.SynBadPatternHead, term.Loc, "clause head must start with the defined name")
	}
	args := make([]ast.Pattern, len(term.Args))
	for i, a := range term.Args {
		p, err := ToPattern(a, fmt.Sprintf("#%d", i))
		if err != nil {
			return ident.Symbol{}, nil, err
		}
		args[i] = p
	}
	return name.Symbol, args, nil
}

// ToPattern interprets a term as a pattern match. Nested arguments are named
// after their parent: "#0.1" is the second argument of "#0".
func ToPattern(term *Term, arg string) (ast.Pattern, error) {
	switch head := term.Head.(type) {
	case *ast.PatName:
		if ast.IsConstructorName(head.Symbol.Member) {
			d := &ast.Deconstruct{Constructor: head.Symbol, Arg: arg, Loc: term.Loc}
			for i, a := range term.Args {
				p, err := ToPattern(a, fmt.Sprintf("%s.%d", arg, i))
				if err != nil {
					return nil, err
				}
				d.Args = append(d.Args, p)
			}
			return d, nil
		}
		if len(term.Args) > 0 {
			return nil, errorf(diag.SynBadPatternHead, term.Loc, "%s is not a constructor and cannot take arguments", head.Symbol)
		}
		return &ast.Capture{Symbol: head.Symbol, Arg: arg, Loc: head.Loc}, nil
	case *ast.PatLiteral:
		if len(term.Args) > 0 {
			return nil, errorf(diag.SynBadPatternHead, term.Loc, "a literal pattern cannot take arguments")
		}
		return &ast.Equal{Value: head.Literal, Arg: arg}, nil
	case *ast.PatWildcard:
		if len(term.Args) > 0 {
			return nil, errorf(diag.SynBadPatternHead, term.Loc, "a wildcard cannot take arguments")
		}
		return &ast.Wildcard{Arg: arg, Loc: head.Loc}, nil
	}
	return nil, errorf(diag.SynBadPatternHead, term.Loc, "unsupported pattern")
}
