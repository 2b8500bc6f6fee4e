package diag

import (
	"testing"

	"tern/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	unit := fs.Add("testdata/sample.unit.yaml", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     SemaError,
			Message:  "another",
			Primary:  source.Span{File: unit, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SynUnexpectedBinaryOperator,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: unit, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: 42}, Msg: "dangling file is skipped"},
				{Span: source.Span{File: unit, Start: 2, End: 3}, Msg: "note line"},
			},
		},
	}

	expected := "error SYN2001 testdata/sample.unit.yaml:1:1 first line second\n" +
		"note SYN2001 testdata/sample.unit.yaml:2:1 note line\n" +
		"warning SEM3001 testdata/sample.unit.yaml:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagCapAndClone(t *testing.T) {
	bag := NewBag(2)
	for range 3 {
		bag.Add(NewError(SemaTypeMismatch, source.Span{}, "x"))
	}
	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), bag.Dropped())
	}

	clone := bag.Clone()
	clone.Add(NewError(SemaTypeMismatch, source.Span{}, "y"))
	if bag.Len() != 2 {
		t.Fatalf("clone must not share storage, original len=%d", bag.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	span := source.Span{File: 0, Start: 1, End: 4}
	ReportError(r, SemaUnresolvedSymbol, span, "x").Emit()
	ReportError(r, SemaUnresolvedSymbol, span, "x").WithNote(span, "again").Emit()
	ReportError(r, SemaUnresolvedSymbol, span, "y").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	if !bag.HasErrors() || bag.ErrorCount() != 2 {
		t.Fatalf("error accounting broken")
	}
}
