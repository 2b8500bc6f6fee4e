// Package ident holds the symbol model shared by every analysis stage.
package ident

import (
	"strings"
)

// Symbol names a value, type, class or operator. Module is empty for an
// unqualified symbol. Symbols are plain comparable values and serve as map keys.
type Symbol struct {
	Module string
	Member string
}

// Qualified builds a module-qualified symbol.
func Qualified(module, member string) Symbol {
	return Symbol{Module: module, Member: member}
}

// Unqualified builds a bare symbol that still needs scope resolution.
func Unqualified(member string) Symbol {
	return Symbol{Member: member}
}

func (s Symbol) IsQualified() bool {
	return s.Module != ""
}

func (s Symbol) IsZero() bool {
	return s.Module == "" && s.Member == ""
}

// Unqualify drops the module part.
func (s Symbol) Unqualify() Symbol {
	return Symbol{Member: s.Member}
}

// IsSymbolic reports whether the member is spelled with operator characters
// only, like "+" or "==".
func (s Symbol) IsSymbolic() bool {
	if s.Member == "" {
		return false
	}
	return strings.IndexFunc(s.Member, isNameRune) < 0
}

func (s Symbol) String() string {
	if s.Module == "" {
		return s.Member
	}
	return s.Module + "." + s.Member
}

// Compare orders symbols by module, then member.
func Compare(a, b Symbol) int {
	if c := strings.Compare(a.Module, b.Module); c != 0 {
		return c
	}
	return strings.Compare(a.Member, b.Member)
}

// Parse splits "Module.member" at the last dot that is followed by a name or
// operator. A leading dot or no dot gives an unqualified symbol.
func Parse(text string) Symbol {
	for i := len(text) - 1; i > 0; i-- {
		if text[i] != '.' || i == len(text)-1 {
			continue
		}
		module := text[:i]
		if strings.IndexFunc(module, isNameRune) < 0 {
			// operator spelled with dots, e.g. "..", keep it whole
			return Unqualified(text)
		}
		if strings.HasSuffix(module, ".") {
			continue
		}
		return Qualified(module, text[i+1:])
	}
	return Unqualified(text)
}

func isNameRune(r rune) bool {
	return r == '_' || r == '\'' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r > 0x7f
}
