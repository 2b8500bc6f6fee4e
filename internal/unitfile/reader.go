// Package unitfile reads unit documents: the parser's output for one
// compilation unit, written as YAML. Clause heads and bodies are flat atom
// lists, exactly what the shuffle stage expects.
//
//	unit: demo
//	modules:
//	  - module: Main
//	    imports: [Prelude]
//	    definitions:
//	      - operator: "+"
//	        fixity: left infix
//	        precedence: 7
//	      - foreign: "+"
//	        type: Int -> Int -> Int
//	      - clause: [four]
//	        body: [2, "+", 2]
package unitfile

import (
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/source"
)

// Error is a structural problem in a unit document.
type Error struct {
	Span    source.Span
	Message string
}

func (e *Error) Error() string { return e.Message }

// Read decodes the unit document stored as file id of fs.
func Read(fs *source.FileSet, id source.FileID) (*ast.Unit, error) {
	f := fs.Get(id)
	var doc yaml.Node
	if err := yaml.Unmarshal(f.Content, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	r := &reader{fs: fs, file: id}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &Error{Span: source.Span{File: id}, Message: "empty unit document"}
	}
	unit, err := r.unit(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if unit.Name == "" {
		unit.Name = f.Path
	}
	return unit, nil
}

// ReadBytes adds content to fs as a virtual file and decodes it.
func ReadBytes(fs *source.FileSet, name string, content []byte) (*ast.Unit, error) {
	return Read(fs, fs.AddVirtual(name, content))
}

type reader struct {
	fs   *source.FileSet
	file source.FileID
}

func (r *reader) span(n *yaml.Node) source.Span {
	pos := source.LineCol{Line: uint32(n.Line), Col: uint32(n.Column)} //nolint:gosec // yaml positions are small
	if n.Kind != yaml.ScalarNode {
		sp := r.fs.SpanAt(r.file, pos, 0)
		for _, c := range n.Content {
			sp = sp.Cover(r.span(c))
		}
		return sp
	}
	length := len(n.Value)
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		length += 2
	}
	return r.fs.SpanAt(r.file, pos, uint32(length)) //nolint:gosec // bounded by the file size
}

func (r *reader) errorf(n *yaml.Node, format string, args ...any) error {
	return &Error{Span: r.span(n), Message: fmt.Sprintf(format, args...)}
}

// fields maps the keys of a mapping node to their values.
func (r *reader) fields(n *yaml.Node, what string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, r.errorf(n, "%s must be a mapping", what)
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out, nil
}

func (r *reader) list(n *yaml.Node, what string) ([]*yaml.Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case yaml.SequenceNode:
		return n.Content, nil
	case yaml.ScalarNode:
		return []*yaml.Node{n}, nil
	}
	return nil, r.errorf(n, "%s must be a list", what)
}

func (r *reader) name(n *yaml.Node, what string) (ident.Symbol, error) {
	if n == nil || n.Kind != yaml.ScalarNode || n.Value == "" {
		if n == nil {
			return ident.Symbol{}, &Error{Span: source.Span{File: r.file}, Message: what + " is missing"}
		}
		return ident.Symbol{}, r.errorf(n, "%s must be a name", what)
	}
	text := norm.NFC.String(n.Value)
	if len(text) > 2 && text[0] == '(' && text[len(text)-1] == ')' {
		text = text[1 : len(text)-1]
	}
	return ident.Parse(text), nil
}

func (r *reader) unit(n *yaml.Node) (*ast.Unit, error) {
	f, err := r.fields(n, "unit")
	if err != nil {
		return nil, err
	}
	unit := &ast.Unit{File: r.file}
	if u := f["unit"]; u != nil {
		unit.Name = u.Value
	}
	mods, err := r.list(f["modules"], "modules")
	if err != nil {
		return nil, err
	}
	for _, m := range mods {
		mod, err := r.module(m)
		if err != nil {
			return nil, err
		}
		unit.Modules = append(unit.Modules, mod)
	}
	return unit, nil
}

func (r *reader) module(n *yaml.Node) (*ast.Module, error) {
	f, err := r.fields(n, "module")
	if err != nil {
		return nil, err
	}
	name, err := r.name(f["module"], "module name")
	if err != nil {
		return nil, err
	}
	mod := &ast.Module{Name: name.String(), Loc: r.span(n)}
	imports, err := r.list(f["imports"], "imports")
	if err != nil {
		return nil, err
	}
	for _, imp := range imports {
		i, err := r.importDecl(imp)
		if err != nil {
			return nil, err
		}
		mod.Imports = append(mod.Imports, i)
	}
	defs, err := r.list(f["definitions"], "definitions")
	if err != nil {
		return nil, err
	}
	for _, d := range defs {
		def, err := r.definition(d)
		if err != nil {
			return nil, err
		}
		mod.Definitions = append(mod.Definitions, def)
	}
	return mod, nil
}

func (r *reader) importDecl(n *yaml.Node) (ast.Import, error) {
	if n.Kind == yaml.ScalarNode {
		return ast.Import{Module: norm.NFC.String(n.Value), Loc: r.span(n)}, nil
	}
	f, err := r.fields(n, "import")
	if err != nil {
		return ast.Import{}, err
	}
	mod, err := r.name(f["module"], "imported module")
	if err != nil {
		return ast.Import{}, err
	}
	imp := ast.Import{Module: mod.String(), Loc: r.span(n)}
	if members := f["members"]; members != nil {
		items, err := r.list(members, "members")
		if err != nil {
			return ast.Import{}, err
		}
		imp.Members = make([]ident.Symbol, 0, len(items))
		for _, it := range items {
			sym, err := r.name(it, "member")
			if err != nil {
				return ast.Import{}, err
			}
			imp.Members = append(imp.Members, sym)
		}
	}
	return imp, nil
}

func (r *reader) definition(n *yaml.Node) (ast.Definition, error) {
	f, err := r.fields(n, "definition")
	if err != nil {
		return nil, err
	}
	loc := r.span(n)
	switch {
	case f["operator"] != nil:
		return r.operator(f, loc)
	case f["signature"] != nil:
		sym, err := r.name(f["signature"], "signature name")
		if err != nil {
			return nil, err
		}
		ts, err := r.scheme(f["type"])
		if err != nil {
			return nil, err
		}
		return &ast.ValueSignature{Symbol: sym, Type: ts, Loc: loc}, nil
	case f["foreign"] != nil:
		sym, err := r.name(f["foreign"], "foreign name")
		if err != nil {
			return nil, err
		}
		ts, err := r.scheme(f["type"])
		if err != nil {
			return nil, err
		}
		return &ast.ForeignDefinition{Symbol: sym, Type: ts, Loc: loc}, nil
	case f["clause"] != nil:
		c, err := r.clause(f, loc)
		if err != nil {
			return nil, err
		}
		return &ast.ClauseDefinition{Clause: c}, nil
	case f["data"] != nil:
		return r.data(f, loc)
	case f["class"] != nil:
		return r.class(f, loc)
	case f["instance"] != nil:
		return r.instance(f, loc)
	}
	return nil, r.errorf(n, "unknown definition")
}

func (r *reader) operator(f map[string]*yaml.Node, loc source.Span) (ast.Definition, error) {
	sym, err := r.name(f["operator"], "operator name")
	if err != nil {
		return nil, err
	}
	fix := f["fixity"]
	if fix == nil {
		return nil, &Error{Span: loc, Message: "operator " + sym.String() + " has no fixity"}
	}
	fixity, ok := ast.ParseFixity(fix.Value)
	if !ok {
		return nil, r.errorf(fix, "unknown fixity %q", fix.Value)
	}
	var prec uint64
	if p := f["precedence"]; p != nil {
		if prec, err = strconv.ParseUint(p.Value, 10, 8); err != nil {
			return nil, r.errorf(p, "precedence must be a small number")
		}
	}
	return &ast.OperatorDefinition{
		Symbol:   sym,
		Operator: ast.Operator{Fixity: fixity, Precedence: uint8(prec)},
		Loc:      loc,
	}, nil
}

func (r *reader) scheme(n *yaml.Node) (*ast.TypeScheme, error) {
	if n == nil || n.Kind != yaml.ScalarNode {
		if n == nil {
			return nil, &Error{Span: source.Span{File: r.file}, Message: "type is missing"}
		}
		return nil, r.errorf(n, "type must be a string")
	}
	return ParseType(norm.NFC.String(n.Value), r.span(n))
}

func (r *reader) clause(f map[string]*yaml.Node, loc source.Span) (*ast.Clause, error) {
	head, err := r.patternAtoms(f["clause"])
	if err != nil {
		return nil, err
	}
	body, err := r.message(f["body"])
	if err != nil {
		return nil, err
	}
	return &ast.Clause{Head: head, Body: body, Loc: loc}, nil
}

func (r *reader) data(f map[string]*yaml.Node, loc source.Span) (ast.Definition, error) {
	sym, err := r.name(f["data"], "data name")
	if err != nil {
		return nil, err
	}
	d := &ast.DataDefinition{Symbol: sym, Loc: loc}
	params, err := r.list(f["params"], "params")
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		d.Params = append(d.Params, p.Value)
	}
	ctors, err := r.list(f["constructors"], "constructors")
	if err != nil {
		return nil, err
	}
	for _, c := range ctors {
		te, err := ParseTypeExpr(norm.NFC.String(c.Value), r.span(c))
		if err != nil {
			return nil, err
		}
		ref, ok := te.(*ast.TypeRef)
		if !ok {
			return nil, r.errorf(c, "constructor must be a name applied to types")
		}
		d.Constructors = append(d.Constructors, ast.Constructor{Symbol: ref.Symbol, Args: ref.Args, Loc: ref.Loc})
	}
	return d, nil
}

func (r *reader) class(f map[string]*yaml.Node, loc source.Span) (ast.Definition, error) {
	sym, err := r.name(f["class"], "class name")
	if err != nil {
		return nil, err
	}
	param := f["param"]
	if param == nil {
		return nil, &Error{Span: loc, Message: "class " + sym.String() + " has no parameter"}
	}
	c := &ast.ClassDefinition{Symbol: sym, Param: param.Value, Loc: loc}
	members, err := r.list(f["members"], "members")
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		mf, err := r.fields(m, "class member")
		if err != nil {
			return nil, err
		}
		msym, err := r.name(mf["name"], "member name")
		if err != nil {
			return nil, err
		}
		ts, err := r.scheme(mf["type"])
		if err != nil {
			return nil, err
		}
		c.Members = append(c.Members, &ast.ValueSignature{Symbol: msym, Type: ts, Loc: r.span(m)})
	}
	return c, nil
}

func (r *reader) instance(f map[string]*yaml.Node, loc source.Span) (ast.Definition, error) {
	class, err := r.name(f["instance"], "instance class")
	if err != nil {
		return nil, err
	}
	headNode := f["head"]
	if headNode == nil {
		return nil, &Error{Span: loc, Message: "instance of " + class.String() + " has no head"}
	}
	te, err := ParseTypeExpr(norm.NFC.String(headNode.Value), r.span(headNode))
	if err != nil {
		return nil, err
	}
	head, ok := te.(*ast.TypeRef)
	if !ok {
		return nil, r.errorf(headNode, "instance head must be a named type")
	}
	inst := &ast.InstanceDefinition{Class: class, Head: head, Loc: loc}
	members, err := r.list(f["members"], "members")
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		mf, err := r.fields(m, "instance member")
		if err != nil {
			return nil, err
		}
		c, err := r.clause(mf, r.span(m))
		if err != nil {
			return nil, err
		}
		inst.Members = append(inst.Members, &ast.ValueDefinition{Clauses: []*ast.Clause{c}, Loc: c.Loc})
	}
	return inst, nil
}
