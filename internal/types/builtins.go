package types

import "tern/internal/ident"

// BuiltinModule owns the primitive types every unit can name without imports.
const BuiltinModule = "Builtin"

var (
	IntSymbol    = ident.Qualified(BuiltinModule, "Int")
	FloatSymbol  = ident.Qualified(BuiltinModule, "Float")
	StringSymbol = ident.Qualified(BuiltinModule, "String")
	CharSymbol   = ident.Qualified(BuiltinModule, "Char")
	// FunctionSymbol is the head used for instance lookups on arrow types.
	FunctionSymbol = ident.Qualified(BuiltinModule, "->")
)

var (
	Int    Type = Sum{Symbol: IntSymbol}
	Float  Type = Sum{Symbol: FloatSymbol}
	String Type = Sum{Symbol: StringSymbol}
	Char   Type = Sum{Symbol: CharSymbol}
)

// Builtins lists the primitive type symbols with their arity.
func Builtins() map[ident.Symbol]int {
	return map[ident.Symbol]int{
		IntSymbol:    0,
		FloatSymbol:  0,
		StringSymbol: 0,
		CharSymbol:   0,
	}
}
