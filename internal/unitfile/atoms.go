package unitfile

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/source"
)

const (
	tagInt    = "!!int"
	tagFloat  = "!!float"
	tagString = "!str"
	tagChar   = "!char"
)

// word is a scalar atom: a name, an operator or a literal.
type word struct {
	sym     ident.Symbol
	infix   bool
	quoted  bool
	literal *ast.Literal
}

func (r *reader) word(n *yaml.Node) (word, error) {
	loc := r.span(n)
	switch n.Tag {
	case tagInt:
		return word{literal: &ast.Literal{Kind: ast.LitInt, Text: n.Value, Loc: loc}}, nil
	case tagFloat:
		return word{literal: &ast.Literal{Kind: ast.LitFloat, Text: n.Value, Loc: loc}}, nil
	case tagString:
		return word{literal: &ast.Literal{Kind: ast.LitString, Text: norm.NFC.String(n.Value), Loc: loc}}, nil
	case tagChar:
		text := norm.NFC.String(n.Value)
		if len([]rune(text)) != 1 {
			return word{}, r.errorf(n, "character literal %q must be one character", text)
		}
		return word{literal: &ast.Literal{Kind: ast.LitChar, Text: text, Loc: loc}}, nil
	}
	text := norm.NFC.String(n.Value)
	switch {
	case text == "":
		return word{}, r.errorf(n, "empty atom")
	case len(text) > 2 && text[0] == '(' && text[len(text)-1] == ')':
		return word{sym: ident.Parse(text[1 : len(text)-1]), quoted: true}, nil
	case len(text) > 2 && text[0] == '`' && text[len(text)-1] == '`':
		return word{sym: ident.Parse(text[1 : len(text)-1]), infix: true}, nil
	case strings.ContainsAny(text, " \t"):
		return word{}, r.errorf(n, "atom %q contains spaces, write it as a list", text)
	}
	sym := ident.Parse(text)
	return word{sym: sym, infix: sym.IsSymbolic()}, nil
}

// patternAtoms reads a clause head: a list of names, literals, wildcards and
// nested lists for parenthesised groups.
func (r *reader) patternAtoms(n *yaml.Node) ([]ast.PatternAtom, error) {
	items, err := r.list(n, "pattern")
	if err != nil {
		return nil, err
	}
	out := make([]ast.PatternAtom, 0, len(items))
	for _, it := range items {
		atom, err := r.patternAtom(it)
		if err != nil {
			return nil, err
		}
		out = append(out, atom)
	}
	return out, nil
}

func (r *reader) patternAtom(n *yaml.Node) (ast.PatternAtom, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		atoms, err := r.patternAtoms(n)
		if err != nil {
			return nil, err
		}
		return &ast.PatGroup{Atoms: atoms, Loc: r.span(n)}, nil
	case yaml.ScalarNode:
		if n.Value == "_" && n.Tag != tagString {
			return &ast.PatWildcard{Loc: r.span(n)}, nil
		}
		w, err := r.word(n)
		if err != nil {
			return nil, err
		}
		if w.literal != nil {
			return &ast.PatLiteral{Literal: w.literal}, nil
		}
		return &ast.PatName{Symbol: w.sym, Infix: w.infix, Quoted: w.quoted, Loc: r.span(n)}, nil
	}
	return nil, r.errorf(n, "unexpected pattern")
}

// message reads a clause body. The result is always an Unshuffled message,
// even for a single atom.
func (r *reader) message(n *yaml.Node) (*ast.Unshuffled, error) {
	if n == nil {
		return nil, &Error{Span: source.Span{File: r.file}, Message: "body is missing"}
	}
	items := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		items = n.Content
	}
	if len(items) == 0 {
		return nil, r.errorf(n, "empty expression")
	}
	msg := &ast.Unshuffled{Loc: r.span(n)}
	for _, it := range items {
		v, err := r.atom(it)
		if err != nil {
			return nil, err
		}
		msg.Atoms = append(msg.Atoms, v)
	}
	return msg, nil
}

func (r *reader) atom(n *yaml.Node) (ast.Value, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		return r.message(n)
	case yaml.MappingNode:
		f, err := r.fields(n, "expression")
		if err != nil {
			return nil, err
		}
		switch {
		case f["lambda"] != nil:
			return r.lambda(f["lambda"], r.span(n))
		case f["let"] != nil:
			return r.let(f, r.span(n))
		}
		return nil, r.errorf(n, "unknown expression")
	case yaml.ScalarNode:
		w, err := r.word(n)
		if err != nil {
			return nil, err
		}
		if w.literal != nil {
			return w.literal, nil
		}
		return &ast.Identifier{Symbol: w.sym, Infix: w.infix, Quoted: w.quoted, Loc: r.span(n)}, nil
	}
	return nil, r.errorf(n, "unexpected expression")
}

func (r *reader) lambda(n *yaml.Node, loc source.Span) (ast.Value, error) {
	cases, err := r.list(n, "lambda")
	if err != nil {
		return nil, err
	}
	lam := &ast.Lambda{Loc: loc}
	for _, c := range cases {
		f, err := r.fields(c, "lambda case")
		if err != nil {
			return nil, err
		}
		args, err := r.list(f["args"], "lambda arguments")
		if err != nil {
			return nil, err
		}
		lc := &ast.Case{Loc: r.span(c)}
		for _, a := range args {
			atom, err := r.patternAtom(a)
			if err != nil {
				return nil, err
			}
			lc.Args = append(lc.Args, atom)
		}
		if lc.Body, err = r.message(f["body"]); err != nil {
			return nil, err
		}
		lam.Cases = append(lam.Cases, lc)
	}
	if len(lam.Cases) == 0 {
		return nil, &Error{Span: loc, Message: "lambda without cases"}
	}
	return lam, nil
}

func (r *reader) let(f map[string]*yaml.Node, loc source.Span) (ast.Value, error) {
	bindings, err := r.list(f["let"], "let bindings")
	if err != nil {
		return nil, err
	}
	let := &ast.Let{Loc: loc}
	for _, b := range bindings {
		bf, err := r.fields(b, "let binding")
		if err != nil {
			return nil, err
		}
		name, err := r.name(bf["name"], "binding name")
		if err != nil {
			return nil, err
		}
		val, err := r.message(bf["value"])
		if err != nil {
			return nil, err
		}
		let.Bindings = append(let.Bindings, &ast.LetBinding{Name: name, Value: val, Loc: r.span(b)})
	}
	if let.Body, err = r.message(f["in"]); err != nil {
		return nil, err
	}
	return let, nil
}
