package diagfmt

import (
	"fmt"
	"io"

	"tern/internal/ast"
	"tern/internal/sema"
)

// Dump prints the definition graph of a unit as a tree: one branch per
// module, declarations in source order, then value groups in dependency
// order once the graph is ordered.
func Dump(w io.Writer, g *sema.Graph) error {
	root := &ast.TreeNode{Label: fmt.Sprintf("unit %s (after %s)", g.Unit, g.Stage)}
	grouped := make(map[sema.DefID]bool)
	for _, grp := range g.Order {
		for _, id := range grp.Defs {
			grouped[id] = true
		}
	}
	for _, module := range g.Modules {
		mod := &ast.TreeNode{Label: "module " + module}
		for _, d := range g.Defs {
			if d.Module != module || grouped[d.ID] {
				continue
			}
			mod.Children = append(mod.Children, ast.DefinitionTree(d.Node))
		}
		for i, grp := range g.Order {
			node := &ast.TreeNode{Label: groupLabel(i, grp)}
			for _, id := range grp.Defs {
				if d := g.Def(id); d.Module == module {
					node.Children = append(node.Children, ast.DefinitionTree(d.Node))
				}
			}
			if len(node.Children) > 0 {
				mod.Children = append(mod.Children, node)
			}
		}
		root.Children = append(root.Children, mod)
	}
	return ast.WriteTree(w, root)
}

func groupLabel(i int, grp sema.Group) string {
	label := fmt.Sprintf("group %d", i)
	switch {
	case grp.Cyclic:
		label += " (cyclic)"
	case grp.Recursive:
		label += " (recursive)"
	}
	return label
}
