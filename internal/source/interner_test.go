package source

import (
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	// NoStringID зарезервирован под пустую строку
	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID = %q, %v", s, ok)
	}
	id1 := interner.Intern("Prelude")
	if id1 == NoStringID {
		t.Fatalf("non-empty string got NoStringID")
	}
	if id2 := interner.Intern("Prelude"); id1 != id2 {
		t.Fatalf("same string interned twice: %d != %d", id1, id2)
	}
	if s := interner.MustLookup(id1); s != "Prelude" {
		t.Fatalf("Lookup = %q", s)
	}
	if id3 := interner.Intern("map"); id3 == id1 {
		t.Fatalf("different strings share an id")
	}
	if interner.Len() != 3 {
		t.Fatalf("Len = %d, want 3", interner.Len())
	}
	if _, ok := interner.Lookup(StringID(42)); ok {
		t.Fatalf("unknown id resolved")
	}
}

func TestInternerSnapshotRoundTrip(t *testing.T) {
	in := NewInterner()
	a := in.Intern("Main")
	b := in.Intern("+")

	back, err := FromSnapshot(in.Snapshot())
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if back.MustLookup(a) != "Main" || back.MustLookup(b) != "+" {
		t.Fatalf("ids changed after snapshot")
	}
	if back.Intern("+") != b {
		t.Fatalf("index not rebuilt")
	}
}

func TestFromSnapshotRejectsBadTables(t *testing.T) {
	for _, table := range [][]string{nil, {"x"}, {"", "a", "a"}} {
		if _, err := FromSnapshot(table); err == nil {
			t.Fatalf("FromSnapshot(%q) accepted", table)
		}
	}
}
