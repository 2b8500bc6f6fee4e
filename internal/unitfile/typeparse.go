package unitfile

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/source"
)

type typeTokKind uint8

const (
	tokName typeTokKind = iota
	tokLParen
	tokRParen
	tokComma
	tokArrow
	tokFatArrow
	tokEOF
)

type typeTok struct {
	kind typeTokKind
	text string
	span source.Span
}

func lexType(text string, base source.Span) ([]typeTok, error) {
	var out []typeTok
	shift := uint32(0)
	switch n := uint32(len(text)); { //nolint:gosec // text is a scalar of the document
	case base.Len() == n+2:
		shift = 1 // quoted scalar
	case base.Len() != n:
		shift = ^uint32(0)
	}
	at := func(start, end int) source.Span {
		if shift == ^uint32(0) {
			return base
		}
		return source.Span{File: base.File, Start: base.Start + shift + uint32(start), End: base.Start + shift + uint32(end)} //nolint:gosec
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '(':
			out = append(out, typeTok{kind: tokLParen, text: "(", span: at(i, i+1)})
			i++
		case r == ')':
			out = append(out, typeTok{kind: tokRParen, text: ")", span: at(i, i+1)})
			i++
		case r == ',':
			out = append(out, typeTok{kind: tokComma, text: ",", span: at(i, i+1)})
			i++
		case strings.HasPrefix(text[i:], "->"):
			out = append(out, typeTok{kind: tokArrow, text: "->", span: at(i, i+2)})
			i += 2
		case strings.HasPrefix(text[i:], "=>"):
			out = append(out, typeTok{kind: tokFatArrow, text: "=>", span: at(i, i+2)})
			i += 2
		case isTypeNameRune(r):
			start := i
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if !isTypeNameRune(r) {
					break
				}
				i += size
			}
			out = append(out, typeTok{kind: tokName, text: text[start:i], span: at(start, i)})
		default:
			return nil, &Error{Span: at(i, i+size), Message: fmt.Sprintf("unexpected %q in type", r)}
		}
	}
	out = append(out, typeTok{kind: tokEOF, span: at(len(text), len(text))})
	return out, nil
}

func isTypeNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '\''
}

type typeParser struct {
	toks []typeTok
	pos  int
}

func (p *typeParser) peek() typeTok { return p.toks[p.pos] }

func (p *typeParser) next() typeTok {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *typeParser) expect(kind typeTokKind, what string) (typeTok, error) {
	t := p.next()
	if t.kind != kind {
		return t, &Error{Span: t.span, Message: fmt.Sprintf("expected %s in type, found %q", what, t.text)}
	}
	return t, nil
}

// ParseType reads a type scheme such as "(Eq a, Show b) => a -> Maybe b".
// span is the location of text in its document.
func ParseType(text string, span source.Span) (*ast.TypeScheme, error) {
	toks, err := lexType(text, span)
	if err != nil {
		return nil, err
	}
	p := &typeParser{toks: toks}
	ts := &ast.TypeScheme{Loc: span}
	if hasFatArrow(toks) {
		if ts.Constraints, err = p.constraints(); err != nil {
			return nil, err
		}
		if _, err = p.expect(tokFatArrow, "=>"); err != nil {
			return nil, err
		}
	}
	if ts.Body, err = p.typ(); err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &Error{Span: t.span, Message: fmt.Sprintf("unexpected %q after type", t.text)}
	}
	return ts, nil
}

// ParseTypeExpr reads a type without constraints.
func ParseTypeExpr(text string, span source.Span) (ast.TypeExpr, error) {
	ts, err := ParseType(text, span)
	if err != nil {
		return nil, err
	}
	if len(ts.Constraints) > 0 {
		return nil, &Error{Span: span, Message: "constraints are not allowed here"}
	}
	return ts.Body, nil
}

func hasFatArrow(toks []typeTok) bool {
	for _, t := range toks {
		if t.kind == tokFatArrow {
			return true
		}
	}
	return false
}

func (p *typeParser) constraints() ([]ast.Constraint, error) {
	if p.peek().kind != tokLParen {
		c, err := p.constraint()
		if err != nil {
			return nil, err
		}
		return []ast.Constraint{c}, nil
	}
	p.next()
	var out []ast.Constraint
	for {
		c, err := p.constraint()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		if p.peek().kind == tokComma {
			p.next()
			continue
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (p *typeParser) constraint() (ast.Constraint, error) {
	class, err := p.expect(tokName, "class name")
	if err != nil {
		return ast.Constraint{}, err
	}
	v, err := p.expect(tokName, "type variable")
	if err != nil {
		return ast.Constraint{}, err
	}
	if !isVarName(v.text) {
		return ast.Constraint{}, &Error{Span: v.span, Message: fmt.Sprintf("constraint on %s must name a type variable", v.text)}
	}
	return ast.Constraint{Class: ident.Parse(class.text), Var: v.text, Loc: class.span.Cover(v.span)}, nil
}

func (p *typeParser) typ() (ast.TypeExpr, error) {
	arg, err := p.app()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokArrow {
		return arg, nil
	}
	p.next()
	res, err := p.typ()
	if err != nil {
		return nil, err
	}
	return &ast.TypeFunc{Arg: arg, Result: res, Loc: arg.Span().Cover(res.Span())}, nil
}

func (p *typeParser) app() (ast.TypeExpr, error) {
	head, err := p.atom()
	if err != nil {
		return nil, err
	}
	var args []ast.TypeExpr
	for k := p.peek().kind; k == tokName || k == tokLParen; k = p.peek().kind {
		a, err := p.atom()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if len(args) == 0 {
		return head, nil
	}
	ref, ok := head.(*ast.TypeRef)
	if !ok || len(ref.Args) > 0 {
		return nil, &Error{Span: head.Span(), Message: "only named types can be applied"}
	}
	loc := ref.Loc
	for _, a := range args {
		loc = loc.Cover(a.Span())
	}
	return &ast.TypeRef{Symbol: ref.Symbol, Args: args, Loc: loc}, nil
}

func (p *typeParser) atom() (ast.TypeExpr, error) {
	t := p.next()
	switch t.kind {
	case tokName:
		if isVarName(t.text) {
			return &ast.TypeVar{Name: t.text, Loc: t.span}, nil
		}
		return &ast.TypeRef{Symbol: ident.Parse(t.text), Loc: t.span}, nil
	case tokLParen:
		inner, err := p.typ()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, &Error{Span: t.span, Message: fmt.Sprintf("unexpected %q in type", t.text)}
}

// isVarName: type variables start with a lower-case letter and carry no
// module prefix.
func isVarName(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r) && !strings.Contains(s, ".")
}
