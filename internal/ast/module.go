package ast

import (
	"tern/internal/ident"
	"tern/internal/source"
)

// Import makes another module's definitions visible. A nil Members list
// imports everything; otherwise only the listed members are visible.
type Import struct {
	Module  string
	Members []ident.Symbol
	Loc     source.Span
}

// Exposes reports whether the import makes member visible.
func (i Import) Exposes(member string) bool {
	if i.Members == nil {
		return true
	}
	for _, m := range i.Members {
		if m.Member == member {
			return true
		}
	}
	return false
}

// Module is one module of a unit, as produced by the parser.
type Module struct {
	Name        string
	Imports     []Import
	Definitions []Definition
	Loc         source.Span
}

// Unit is the parser's output for one document: a set of modules.
type Unit struct {
	Name    string
	File    source.FileID
	Modules []*Module
}
