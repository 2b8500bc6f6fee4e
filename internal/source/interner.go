package source

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// StringID indexes an Interner. Interface files store symbols as pairs of
// StringIDs into their own string table.
type StringID uint32

const NoStringID StringID = 0

// Interner deduplicates strings. It is not safe for concurrent use.
type Interner struct {
	byID  []string            // индекс -> строка (byID[0] = "" для NoStringID)
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// FromSnapshot rebuilds an interner from a table written by Snapshot.
// The first entry must be the empty string.
func FromSnapshot(table []string) (*Interner, error) {
	if len(table) == 0 || table[0] != "" {
		return nil, fmt.Errorf("string table must start with the empty string")
	}
	in := &Interner{
		byID:  slices.Clone(table),
		index: make(map[string]StringID, len(table)),
	}
	for i, s := range table {
		id, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("string table overflow: %w", err)
		}
		if _, dup := in.index[s]; dup {
			return nil, fmt.Errorf("string table repeats %q", s)
		}
		in.index[s] = StringID(id)
	}
	return in, nil
}

// Intern возвращает ID строки, добавляя её при первом появлении.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("interner overflow: %w", err))
	}
	// собственная копия, чтобы не держать чужой буфер
	cpy := string([]byte(s))
	id := StringID(n)
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Lookup returns the string of id, or false when id was never handed out.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics on an unknown id.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid string ID %d", id))
	}
	return s
}

func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len counts NoStringID too, so it is never below 1.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of the table in id order.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
