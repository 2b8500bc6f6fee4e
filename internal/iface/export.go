package iface

import (
	"fmt"
	"slices"

	"tern/internal/ident"
	"tern/internal/sema"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// Export builds the interfaces of every module of a checked graph, in the
// order the modules appear in the unit.
func Export(g *sema.Graph) ([]*File, error) {
	out := make([]*File, 0, len(g.Modules))
	for _, m := range g.Modules {
		f, err := ExportModule(g, m)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ExportModule builds the interface of one module of g. Values whose type
// could not be inferred are left out.
func ExportModule(g *sema.Graph, module string) (*File, error) {
	id, ok := g.Table.ModuleScope(module)
	if !ok {
		return nil, fmt.Errorf("module %s is not part of unit %s", module, g.Unit)
	}
	scope := g.Table.Scopes.MustGet(id)
	e := &exporter{table: g.Table, strings: source.NewInterner()}
	f := &File{Schema: schemaVersion, Module: module, Unit: g.Unit}
	for _, imp := range scope.Imports {
		f.Imports = append(f.Imports, imp.Module)
	}

	for _, sym := range sortedKeys(scope.Values) {
		v, ok := e.value(scope.Values[sym])
		if !ok {
			continue
		}
		f.Values = append(f.Values, v)
	}
	for _, sym := range sortedKeys(scope.Types) {
		f.Types = append(f.Types, e.typeDecl(scope.Types[sym]))
	}
	for _, inst := range scope.Instances {
		f.Instances = append(f.Instances, Instance{Class: e.sym(inst.Class), Head: e.sym(inst.Head)})
	}
	f.Strings = e.strings.Snapshot()
	return f, nil
}

func sortedKeys[V any](m map[ident.Symbol]V) []ident.Symbol {
	keys := make([]ident.Symbol, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, ident.Compare)
	return keys
}

type exporter struct {
	table   *symbols.Table
	strings *source.Interner
	vars    map[types.VarID]uint32
}

func (e *exporter) str(s string) uint32 {
	return uint32(e.strings.Intern(s))
}

func (e *exporter) sym(s ident.Symbol) Sym {
	return Sym{Module: e.str(s.Module), Member: e.str(s.Member)}
}

func (e *exporter) value(entry *symbols.Entry) (Value, bool) {
	t := entry.Signature
	if t == nil {
		t = entry.Value
	}
	if t == nil {
		return Value{}, false
	}
	e.vars = make(map[types.VarID]uint32)
	v := Value{Member: e.str(entry.Symbol.Member), Type: e.typ(e.table.Generate(t))}
	if op := entry.Operator; op != nil {
		v.Operator = &Operator{Fixity: uint8(op.Fixity), Precedence: op.Precedence}
	}
	if c := entry.Class; c != nil {
		v.Class = &ClassRef{Class: e.sym(c.Class), Param: e.varID(c.Param.ID)}
	}
	if c := entry.Constructor; c != nil {
		v.Constructor = &ConstructorRef{Data: e.sym(c.Data), Arity: c.Arity}
	}
	return v, true
}

func (e *exporter) typeDecl(te *symbols.TypeEntry) TypeDecl {
	d := TypeDecl{Member: e.str(te.Symbol.Member), Arity: te.Arity}
	if c := te.Class; c != nil {
		e.vars = make(map[types.VarID]uint32)
		info := &ClassInfo{Param: e.typ(c.Param)}
		for _, m := range c.Members {
			info.Members = append(info.Members, e.sym(m))
		}
		d.Class = info
	}
	for _, k := range te.Constructors {
		d.Constructors = append(d.Constructors, e.sym(k))
	}
	return d
}

// varID renumbers variables densely from 1 in first-occurrence order.
func (e *exporter) varID(id types.VarID) uint32 {
	if n, ok := e.vars[id]; ok {
		return n
	}
	n := uint32(len(e.vars) + 1) //nolint:gosec // bounded by the variables of one type
	e.vars[id] = n
	return n
}

func (e *exporter) typ(t types.Type) Type {
	switch x := t.(type) {
	case types.Variable:
		out := Type{Kind: uint8(types.KindVariable), Var: e.varID(x.ID)}
		for _, c := range x.Context.Items() {
			out.Context = append(out.Context, e.sym(c))
		}
		return out
	case types.Function:
		return Type{Kind: uint8(types.KindFunction), Params: []Type{e.typ(x.Arg), e.typ(x.Result)}}
	case types.Sum:
		out := Type{Kind: uint8(types.KindSum), Symbol: e.sym(x.Symbol)}
		for _, p := range x.Params {
			out.Params = append(out.Params, e.typ(p))
		}
		return out
	}
	// Instance появляется только после связывания методов, в таблице его нет
	panic(fmt.Sprintf("iface: cannot export type %s", types.Format(t)))
}
