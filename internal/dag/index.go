// Package dag orders named nodes by their dependencies: Kahn batches for
// unit imports, strongly connected components for value definitions.
package dag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

type NodeID uint32

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// BuildIndex собирает уникальные имена, сортирует их и раздаёт ID по порядку.
func BuildIndex(names []string) Index {
	uniq := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name != "" {
			uniq[name] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(uniq))
	for name := range uniq {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	return NewIndex(sorted)
}

// NewIndex keeps the given order; duplicates keep their first position.
func NewIndex(names []string) Index {
	idx := Index{NameToID: make(map[string]NodeID, len(names))}
	for _, name := range names {
		if _, ok := idx.NameToID[name]; ok {
			continue
		}
		idx.NameToID[name] = toNodeID(len(idx.IDToName))
		idx.IDToName = append(idx.IDToName, name)
	}
	return idx
}

func (idx Index) Len() int { return len(idx.IDToName) }

// Names maps ids back to names.
func (idx Index) Names(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func toNodeID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}
