package shuffle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/source"
)

var testOperators = map[string]ast.Operator{
	"+":   {Fixity: ast.FixityLeftInfix, Precedence: 7},
	"*":   {Fixity: ast.FixityLeftInfix, Precedence: 8},
	"==":  {Fixity: ast.FixityLeftInfix, Precedence: 4},
	"^":   {Fixity: ast.FixityRightInfix, Precedence: 10},
	"not": {Fixity: ast.FixityPrefix, Precedence: 9},
	"neg": {Fixity: ast.FixityPrefix, Precedence: 7},
}

func lookup(sym ident.Symbol) (ast.Operator, bool) {
	op, ok := testOperators[sym.Member]
	return op, ok
}

// message builds an unshuffled message from words; symbolic words are infix
// lexemes, "(op)" is a quoted operator.
func message(words ...string) *ast.Unshuffled {
	msg := &ast.Unshuffled{}
	var pos uint32
	for _, w := range words {
		span := source.Span{Start: pos, End: pos + uint32(len(w))}
		pos += uint32(len(w)) + 1
		if len(w) > 2 && w[0] == '(' && w[len(w)-1] == ')' {
			msg.Atoms = append(msg.Atoms, &ast.Identifier{Symbol: ident.Unqualified(w[1 : len(w)-1]), Quoted: true, Loc: span})
			continue
		}
		sym := ident.Unqualified(w)
		msg.Atoms = append(msg.Atoms, &ast.Identifier{Symbol: sym, Infix: sym.IsSymbolic(), Loc: span})
	}
	return msg
}

func render(v ast.Value) string {
	switch x := v.(type) {
	case *ast.Identifier:
		return x.Symbol.Member
	case *ast.Apply:
		return "(" + render(x.Func) + " " + render(x.Arg) + ")"
	case *ast.Unshuffled:
		return "<unshuffled>"
	}
	return "?"
}

func identity(v ast.Value) (ast.Value, error) { return v, nil }

func TestValuesPrecedence(t *testing.T) {
	cases := []struct {
		words []string
		want  string
	}{
		{[]string{"a"}, "a"},
		{[]string{"a", "+", "b", "*", "c"}, "((+ a) ((* b) c))"},
		{[]string{"a", "*", "b", "+", "c"}, "((+ ((* a) b)) c)"},
		{[]string{"a", "+", "b", "+", "c"}, "((+ ((+ a) b)) c)"},
		{[]string{"a", "^", "b", "^", "c"}, "((^ a) ((^ b) c))"},
		{[]string{"not", "a", "==", "b"}, "((== (not a)) b)"},
		{[]string{"not", "not", "a"}, "(not (not a))"},
		{[]string{"f", "x", "+", "g", "y", "z"}, "((+ (f x)) ((g y) z))"},
		{[]string{"not", "f", "x"}, "(not (f x))"},
		{[]string{"a", "*", "neg", "b", "+", "c"}, "((+ ((* a) (neg b))) c)"},
		{[]string{"neg", "a", "+", "b"}, "((+ (neg a)) b)"},
		{[]string{"(+)", "a", "b"}, "(((+) a) b)"},
	}
	for _, tc := range cases {
		got, err := Values(message(tc.words...), lookup, identity)
		require.NoError(t, err, "%v", tc.words)
		require.Equal(t, tc.want, renderQuoted(got), "%v", tc.words)
	}
}

// renderQuoted marks quoted operators so they are distinguishable from infix use.
func renderQuoted(v ast.Value) string {
	switch x := v.(type) {
	case *ast.Identifier:
		if x.Quoted {
			return "(" + x.Symbol.Member + ")"
		}
	case *ast.Apply:
		return "(" + renderQuoted(x.Func) + " " + renderQuoted(x.Arg) + ")"
	}
	return render(v)
}

func TestValuesErrors(t *testing.T) {
	cases := []struct {
		words []string
		code  diag.Code
	}{
		{[]string{"+", "a"}, diag.SynUnexpectedBinaryOperator},
		{[]string{"a", "+", "*", "b"}, diag.SynUnexpectedBinaryOperator},
		{[]string{"a", "+"}, diag.SynMissingOperand},
		{[]string{"not"}, diag.SynMissingOperand},
		{[]string{"a", "not", "b"}, diag.SynUnexpectedPrefixOperator},
		{[]string{"a", "<?>", "b"}, diag.SynNotAnOperator},
		{nil, diag.SynEmptyMessage},
	}
	for _, tc := range cases {
		got, err := Values(message(tc.words...), lookup, identity)
		require.Nil(t, got)
		var serr *Error
		require.ErrorAs(t, err, &serr, "%v", tc.words)
		require.Equal(t, tc.code, serr.Code, "%v: %s", tc.words, serr.Message)
	}
}

func TestValuesNestedMessages(t *testing.T) {
	// (a + b) * c
	inner := message("a", "+", "b")
	outer := &ast.Unshuffled{Atoms: []ast.Value{inner, message("*").Atoms[0], message("c").Atoms[0]}}

	var operand func(ast.Value) (ast.Value, error)
	operand = func(v ast.Value) (ast.Value, error) {
		if u, ok := v.(*ast.Unshuffled); ok {
			return Values(u, lookup, operand)
		}
		return v, nil
	}
	got, err := Values(outer, lookup, operand)
	require.NoError(t, err)
	require.Equal(t, "((* ((+ a) b)) c)", render(got))
}

func TestValuesSpans(t *testing.T) {
	got, err := Values(message("a", "+", "b"), lookup, identity)
	require.NoError(t, err)
	require.Equal(t, source.Span{Start: 0, End: 5}, got.Span())
}

func patName(name string) *ast.PatName {
	sym := ident.Unqualified(name)
	return &ast.PatName{Symbol: sym, Infix: sym.IsSymbolic()}
}

func TestPatternsClauseHead(t *testing.T) {
	term, err := Patterns([]ast.PatternAtom{patName("x"), patName("=="), patName("y")}, source.Span{}, lookup)
	require.NoError(t, err)
	name, args, err := ClauseHead(term)
	require.NoError(t, err)
	require.Equal(t, ident.Unqualified("=="), name)
	require.Len(t, args, 2)
	require.Equal(t, "#0", args[0].ArgName())
	require.Equal(t, "y", args[1].(*ast.Capture).Symbol.Member)

	// f (Just x) _ 3
	lit := &ast.Literal{Kind: ast.LitInt, Text: "3"}
	term, err = Patterns([]ast.PatternAtom{
		patName("f"),
		&ast.PatGroup{Atoms: []ast.PatternAtom{patName("Just"), patName("x")}},
		&ast.PatWildcard{},
		&ast.PatLiteral{Literal: lit},
	}, source.Span{}, lookup)
	require.NoError(t, err)
	name, args, err = ClauseHead(term)
	require.NoError(t, err)
	require.Equal(t, "f", name.Member)
	require.Len(t, args, 3)
	just := args[0].(*ast.Deconstruct)
	require.Equal(t, "Just", just.Constructor.Member)
	require.Equal(t, "#0.0", just.Args[0].ArgName())
	require.IsType(t, &ast.Wildcard{}, args[1])
	require.Same(t, lit, args[2].(*ast.Equal).Value)

	// not x = ...
	term, err = Patterns([]ast.PatternAtom{patName("not"), patName("x")}, source.Span{}, lookup)
	require.NoError(t, err)
	name, args, err = ClauseHead(term)
	require.NoError(t, err)
	require.Equal(t, "not", name.Member)
	require.Len(t, args, 1)
}

func TestPatternsErrors(t *testing.T) {
	_, err := Patterns([]ast.PatternAtom{patName("=="), patName("y")}, source.Span{}, lookup)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	require.Equal(t, diag.SynUnexpectedBinaryOperator, serr.Code)

	term, err := Patterns([]ast.PatternAtom{
		patName("f"),
		&ast.PatGroup{Atoms: []ast.PatternAtom{patName("g"), patName("x")}},
	}, source.Span{}, lookup)
	require.NoError(t, err)
	_, _, err = ClauseHead(term)
	require.ErrorAs(t, err, &serr)
	require.Equal(t, diag.SynBadPatternHead, serr.Code)
}
