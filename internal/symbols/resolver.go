package symbols

import (
	"sort"

	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/types"
)

// Declaration is what the resolver knows about a value defined outside the
// unit. Type is generalised; its variable ids are not meaningful here.
type Declaration struct {
	Symbol      ident.Symbol
	Type        types.Type
	Operator    *ast.Operator
	Class       *ClassRef
	Constructor *ConstructorRef
}

// TypeDeclaration is what the resolver knows about a type or class defined
// outside the unit.
type TypeDeclaration struct {
	Symbol       ident.Symbol
	Arity        int
	Class        *ClassInfo
	Constructors []ident.Symbol
}

// Resolver answers read-only questions about symbols defined outside the
// unit being analysed.
type Resolver interface {
	LookupValue(sym ident.Symbol) (Declaration, bool)
	LookupType(sym ident.Symbol) (TypeDeclaration, bool)
	// Instances lists the instances of class for head across every known module.
	Instances(class, head ident.Symbol) []Instance
	// HasModule reports whether the resolver knows the module at all.
	HasModule(name string) bool
}

// MapResolver is an in-memory Resolver. It is filled from interface files or
// directly by tests.
type MapResolver struct {
	values    map[ident.Symbol]Declaration
	types     map[ident.Symbol]TypeDeclaration
	instances map[instanceKey][]Instance
	modules   map[string]bool
}

type instanceKey struct {
	class ident.Symbol
	head  ident.Symbol
}

func NewMapResolver() *MapResolver {
	return &MapResolver{
		values:    make(map[ident.Symbol]Declaration),
		types:     make(map[ident.Symbol]TypeDeclaration),
		instances: make(map[instanceKey][]Instance),
		modules:   make(map[string]bool),
	}
}

func (r *MapResolver) AddValue(d Declaration) {
	r.values[d.Symbol] = d
	r.modules[d.Symbol.Module] = true
}

func (r *MapResolver) AddType(d TypeDeclaration) {
	r.types[d.Symbol] = d
	r.modules[d.Symbol.Module] = true
}

func (r *MapResolver) AddInstance(inst Instance) {
	key := instanceKey{class: inst.Class, head: inst.Head}
	for _, existing := range r.instances[key] {
		if existing.Module == inst.Module {
			return
		}
	}
	r.instances[key] = append(r.instances[key], inst)
	r.modules[inst.Module] = true
}

// AddModule registers a module that may declare nothing.
func (r *MapResolver) AddModule(name string) {
	r.modules[name] = true
}

func (r *MapResolver) LookupValue(sym ident.Symbol) (Declaration, bool) {
	d, ok := r.values[sym]
	return d, ok
}

func (r *MapResolver) LookupType(sym ident.Symbol) (TypeDeclaration, bool) {
	d, ok := r.types[sym]
	return d, ok
}

func (r *MapResolver) Instances(class, head ident.Symbol) []Instance {
	out := append([]Instance(nil), r.instances[instanceKey{class: class, head: head}]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}

func (r *MapResolver) HasModule(name string) bool {
	return r.modules[name]
}

// Modules lists known module names in sorted order.
func (r *MapResolver) Modules() []string {
	out := make([]string, 0, len(r.modules))
	for m := range r.modules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

type emptyResolver struct{}

func (emptyResolver) LookupValue(ident.Symbol) (Declaration, bool) { return Declaration{}, false }
func (emptyResolver) LookupType(ident.Symbol) (TypeDeclaration, bool) {
	return TypeDeclaration{}, false
}
func (emptyResolver) Instances(ident.Symbol, ident.Symbol) []Instance { return nil }
func (emptyResolver) HasModule(string) bool                           { return false }
