package source

import (
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("demo.unit.yaml", []byte("hello world"), 0)
	id2 := fs.Add("demo.unit.yaml", []byte("hello universe"), 0)
	if id1 != 0 || id2 != 1 {
		t.Fatalf("unexpected ids %d %d", id1, id2)
	}
	latest, ok := fs.GetLatest("./demo.unit.yaml")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v; want %d", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Fatalf("old version lost: %q", got)
	}
}

func TestResolveAndOffset(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("m.yaml", []byte("ab\ncd\n\nxyz"))

	cases := []struct {
		pos LineCol
		off uint32
	}{
		{LineCol{1, 1}, 0},
		{LineCol{1, 3}, 2},
		{LineCol{2, 1}, 3},
		{LineCol{2, 2}, 4},
		{LineCol{3, 1}, 6},
		{LineCol{4, 3}, 9},
	}
	for _, tc := range cases {
		if got := fs.Offset(id, tc.pos); got != tc.off {
			t.Fatalf("Offset(%v) = %d, want %d", tc.pos, got, tc.off)
		}
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.pos {
			t.Fatalf("Resolve(%d) = %v, want %v", tc.off, start, tc.pos)
		}
	}

	if got := fs.Offset(id, LineCol{9, 9}); got != 10 {
		t.Fatalf("Offset past end = %d, want 10", got)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("m.yaml", []byte("first\nsecond\n")))
	for line, want := range map[uint32]string{1: "first", 2: "second", 3: "", 4: "", 0: ""} {
		if got := f.GetLine(line); got != want {
			t.Fatalf("GetLine(%d) = %q, want %q", line, got, want)
		}
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 12}
	b := Span{File: 1, Start: 4, End: 11}
	if got := a.Cover(b); got != (Span{File: 1, Start: 4, End: 12}) {
		t.Fatalf("Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 30}); got != a {
		t.Fatalf("cross-file cover must keep receiver, got %v", got)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed || string(out) != "a\nb\rc" {
		t.Fatalf("normalizeCRLF = %q,%v", out, changed)
	}
	out, had := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'x'})
	if !had || string(out) != "x" {
		t.Fatalf("removeBOM = %q,%v", out, had)
	}
}
