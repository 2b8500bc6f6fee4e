package unitfile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/ast"
	"tern/internal/source"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		in          string
		want        string
		constraints int
	}{
		{"Int", "Int", 0},
		{"a -> b -> a", "a -> b -> a", 0},
		{"(a -> b) -> List a -> List b", "(a -> b) -> List a -> List b", 0},
		{"Eq a => a -> a -> Bool", "a -> a -> Bool", 1},
		{"(Eq a, Show b) => a -> b", "a -> b", 2},
		{"Maybe (Maybe a)", "Maybe (Maybe a)", 0},
		{"Prelude.Int", "Prelude.Int", 0},
	}
	for _, tc := range cases {
		ts, err := ParseType(tc.in, source.Span{End: uint32(len(tc.in))})
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, ast.FormatTypeExpr(ts.Body), tc.in)
		require.Len(t, ts.Constraints, tc.constraints, tc.in)
	}
}

func TestParseTypeSpans(t *testing.T) {
	text := "a -> Maybe b"
	ts, err := ParseType(text, source.Span{Start: 10, End: 10 + uint32(len(text))})
	require.NoError(t, err)
	fn := ts.Body.(*ast.TypeFunc)
	require.Equal(t, source.Span{Start: 10, End: 11}, fn.Arg.Span())
	require.Equal(t, source.Span{Start: 15, End: 22}, fn.Result.Span())
}

func TestParseTypeErrors(t *testing.T) {
	for _, in := range []string{"", "a ->", "(a", "Eq Int => Int", "a b", "Int $"} {
		_, err := ParseType(in, source.Span{End: uint32(len(in))})
		require.Error(t, err, in)
	}
	_, err := ParseTypeExpr("Eq a => a", source.Span{End: 9})
	require.Error(t, err)
}
