package iface

import (
	"fmt"
	"path/filepath"

	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// Register adds everything f declares to r.
func Register(r *symbols.MapResolver, f *File) error {
	d, err := newDecoder(f)
	if err != nil {
		return err
	}
	r.AddModule(f.Module)
	for i := range f.Values {
		decl, err := d.value(&f.Values[i])
		if err != nil {
			return fmt.Errorf("%s: value %d: %w", f.Module, i, err)
		}
		r.AddValue(decl)
	}
	for i := range f.Types {
		decl, err := d.typeDecl(&f.Types[i])
		if err != nil {
			return fmt.Errorf("%s: type %d: %w", f.Module, i, err)
		}
		r.AddType(decl)
	}
	for _, inst := range f.Instances {
		class, err := d.sym(inst.Class)
		if err != nil {
			return fmt.Errorf("%s: instance: %w", f.Module, err)
		}
		head, err := d.sym(inst.Head)
		if err != nil {
			return fmt.Errorf("%s: instance: %w", f.Module, err)
		}
		r.AddInstance(symbols.Instance{Class: class, Head: head, Module: f.Module})
	}
	return nil
}

// LoadDir registers every interface file found directly in dir and returns
// the files in path order.
func LoadDir(r *symbols.MapResolver, dir string) ([]*File, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return nil, fmt.Errorf("list interfaces in %s: %w", dir, err)
	}
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		if err := Register(r, f); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		files = append(files, f)
	}
	return files, nil
}

type decoder struct {
	module  string
	strings *source.Interner
}

func newDecoder(f *File) (*decoder, error) {
	in, err := source.FromSnapshot(f.Strings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Module, err)
	}
	return &decoder{module: f.Module, strings: in}, nil
}

func (d *decoder) str(id uint32) (string, error) {
	s, ok := d.strings.Lookup(source.StringID(id))
	if !ok {
		return "", fmt.Errorf("string %d out of range", id)
	}
	return s, nil
}

func (d *decoder) sym(s Sym) (ident.Symbol, error) {
	module, err := d.str(s.Module)
	if err != nil {
		return ident.Symbol{}, err
	}
	member, err := d.str(s.Member)
	if err != nil {
		return ident.Symbol{}, err
	}
	return ident.Symbol{Module: module, Member: member}, nil
}

func (d *decoder) own(member uint32) (ident.Symbol, error) {
	name, err := d.str(member)
	if err != nil {
		return ident.Symbol{}, err
	}
	return ident.Qualified(d.module, name), nil
}

func (d *decoder) value(v *Value) (symbols.Declaration, error) {
	sym, err := d.own(v.Member)
	if err != nil {
		return symbols.Declaration{}, err
	}
	t, err := d.typ(v.Type)
	if err != nil {
		return symbols.Declaration{}, fmt.Errorf("%s: %w", sym, err)
	}
	decl := symbols.Declaration{Symbol: sym, Type: t}
	if op := v.Operator; op != nil {
		if op.Fixity > uint8(ast.FixityRightInfix) {
			return decl, fmt.Errorf("%s: unknown fixity %d", sym, op.Fixity)
		}
		decl.Operator = &ast.Operator{Fixity: ast.Fixity(op.Fixity), Precedence: op.Precedence}
	}
	if c := v.Class; c != nil {
		class, err := d.sym(c.Class)
		if err != nil {
			return decl, err
		}
		param, ok := findVar(t, types.VarID(c.Param))
		if !ok {
			return decl, fmt.Errorf("%s: class parameter %d does not occur in its type", sym, c.Param)
		}
		decl.Class = &symbols.ClassRef{Class: class, Param: param}
	}
	if c := v.Constructor; c != nil {
		data, err := d.sym(c.Data)
		if err != nil {
			return decl, err
		}
		decl.Constructor = &symbols.ConstructorRef{Data: data, Arity: c.Arity}
	}
	return decl, nil
}

func findVar(t types.Type, id types.VarID) (types.Variable, bool) {
	for _, v := range types.FreeVars(t) {
		if v.ID == id {
			return v, true
		}
	}
	return types.Variable{}, false
}

func (d *decoder) typeDecl(td *TypeDecl) (symbols.TypeDeclaration, error) {
	sym, err := d.own(td.Member)
	if err != nil {
		return symbols.TypeDeclaration{}, err
	}
	out := symbols.TypeDeclaration{Symbol: sym, Arity: td.Arity}
	if c := td.Class; c != nil {
		pt, err := d.typ(c.Param)
		if err != nil {
			return out, fmt.Errorf("%s: %w", sym, err)
		}
		param, ok := pt.(types.Variable)
		if !ok {
			return out, fmt.Errorf("%s: class parameter is not a variable", sym)
		}
		info := &symbols.ClassInfo{Param: param}
		for _, m := range c.Members {
			ms, err := d.sym(m)
			if err != nil {
				return out, err
			}
			info.Members = append(info.Members, ms)
		}
		out.Class = info
	}
	for _, k := range td.Constructors {
		ks, err := d.sym(k)
		if err != nil {
			return out, err
		}
		out.Constructors = append(out.Constructors, ks)
	}
	return out, nil
}

func (d *decoder) typ(t Type) (types.Type, error) {
	switch types.Kind(t.Kind) {
	case types.KindVariable:
		if t.Var == 0 {
			return nil, fmt.Errorf("variable without id")
		}
		ctx := make([]ident.Symbol, 0, len(t.Context))
		for _, c := range t.Context {
			s, err := d.sym(c)
			if err != nil {
				return nil, err
			}
			ctx = append(ctx, s)
		}
		return types.Variable{ID: types.VarID(t.Var), Context: ident.NewSet(ctx...)}, nil
	case types.KindFunction:
		if len(t.Params) != 2 {
			return nil, fmt.Errorf("function type with %d parts", len(t.Params))
		}
		arg, err := d.typ(t.Params[0])
		if err != nil {
			return nil, err
		}
		res, err := d.typ(t.Params[1])
		if err != nil {
			return nil, err
		}
		return types.Function{Arg: arg, Result: res}, nil
	case types.KindSum:
		sym, err := d.sym(t.Symbol)
		if err != nil {
			return nil, err
		}
		params := make([]types.Type, 0, len(t.Params))
		for _, p := range t.Params {
			pt, err := d.typ(p)
			if err != nil {
				return nil, err
			}
			params = append(params, pt)
		}
		return types.Sum{Symbol: sym, Params: params}, nil
	}
	return nil, fmt.Errorf("unknown type kind %d", t.Kind)
}
