package project

import (
	"tern/internal/ast"
	"tern/internal/source"
)

type ImportMeta struct {
	Module string
	Span   source.Span
}

type ModuleMeta struct {
	Name    string
	Span    source.Span
	Imports []ImportMeta
}

// UnitMeta is what the driver needs to order units before analysing them.
type UnitMeta struct {
	Name        string
	Path        string
	Modules     []ModuleMeta
	ContentHash Digest // хеш документа
	UnitHash    Digest // с учётом зависимостей, заполняет драйвер
}

// DescribeUnit collects module names and imports of a parsed unit.
func DescribeUnit(unit *ast.Unit, path string, content []byte) UnitMeta {
	meta := UnitMeta{Name: unit.Name, Path: path, ContentHash: HashContent(content)}
	for _, m := range unit.Modules {
		mm := ModuleMeta{Name: m.Name, Span: m.Loc}
		for _, imp := range m.Imports {
			mm.Imports = append(mm.Imports, ImportMeta{Module: imp.Module, Span: imp.Loc})
		}
		meta.Modules = append(meta.Modules, mm)
	}
	return meta
}

// Defines reports whether the unit contains module.
func (u *UnitMeta) Defines(module string) bool {
	for _, m := range u.Modules {
		if m.Name == module {
			return true
		}
	}
	return false
}

// ExternalImports lists imports of modules the unit does not define, first
// occurrence of each module only.
func (u *UnitMeta) ExternalImports() []ImportMeta {
	seen := make(map[string]bool)
	var out []ImportMeta
	for _, m := range u.Modules {
		for _, imp := range m.Imports {
			if u.Defines(imp.Module) || seen[imp.Module] {
				continue
			}
			seen[imp.Module] = true
			out = append(out, imp)
		}
	}
	return out
}
