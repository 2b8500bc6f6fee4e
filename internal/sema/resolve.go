package sema

import (
	"tern/internal/ast"
	"tern/internal/types"
)

// resolveDef rebuilds a checked definition with every type replaced by its
// current binding.
func (c *checker) resolveDef(v *ast.ValueDefinition) *ast.ValueDefinition {
	out := &ast.ValueDefinition{Symbol: v.Symbol, Loc: v.Loc, Type: c.gen(v.Type)}
	for _, cl := range v.Clauses {
		if cl.Invalid {
			out.Clauses = append(out.Clauses, cl)
			continue
		}
		out.Clauses = append(out.Clauses, &ast.Clause{
			Head:     cl.Head,
			Patterns: c.resolvePatterns(cl.Patterns),
			Body:     c.resolveValue(cl.Body),
			Loc:      cl.Loc,
		})
	}
	return out
}

func (c *checker) gen(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	return c.table.Generate(t)
}

func (c *checker) resolvePatterns(pats []ast.Pattern) []ast.Pattern {
	out := make([]ast.Pattern, len(pats))
	for i, p := range pats {
		switch x := p.(type) {
		case *ast.Capture:
			out[i] = &ast.Capture{Symbol: x.Symbol, Arg: x.Arg, Loc: x.Loc, Type: c.gen(x.Type)}
		case *ast.Wildcard:
			out[i] = &ast.Wildcard{Arg: x.Arg, Loc: x.Loc, Type: c.gen(x.Type)}
		case *ast.Deconstruct:
			out[i] = &ast.Deconstruct{Constructor: x.Constructor, Args: c.resolvePatterns(x.Args), Arg: x.Arg, Loc: x.Loc, Type: c.gen(x.Type)}
		default:
			out[i] = p
		}
	}
	return out
}

func (c *checker) resolveValue(v ast.Value) ast.Value {
	switch x := v.(type) {
	case *ast.Identifier:
		n := *x
		n.Type = c.gen(x.Type)
		return &n
	case *ast.UnboundMethod:
		return &ast.UnboundMethod{Member: x.Member, Class: x.Class, Type: c.gen(x.Type), Loc: x.Loc}
	case *ast.Apply:
		return &ast.Apply{Func: c.resolveValue(x.Func), Arg: c.resolveValue(x.Arg), Loc: x.Loc, Type: c.gen(x.Type)}
	case *ast.Lambda:
		out := &ast.Lambda{Loc: x.Loc, Type: c.gen(x.Type)}
		for _, cs := range x.Cases {
			if cs.Invalid {
				out.Cases = append(out.Cases, cs)
				continue
			}
			out.Cases = append(out.Cases, &ast.Case{
				Args:     cs.Args,
				Patterns: c.resolvePatterns(cs.Patterns),
				Body:     c.resolveValue(cs.Body),
				Loc:      cs.Loc,
			})
		}
		return out
	case *ast.Let:
		out := &ast.Let{Loc: x.Loc, Type: c.gen(x.Type), Body: c.resolveValue(x.Body)}
		for _, b := range x.Bindings {
			out.Bindings = append(out.Bindings, &ast.LetBinding{Name: b.Name, Value: c.resolveValue(b.Value), Loc: b.Loc, Type: c.gen(b.Type)})
		}
		return out
	}
	return v
}
