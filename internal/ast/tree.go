package ast

import (
	"fmt"
	"io"
	"strings"

	"tern/internal/types"
)

// TreeNode is one line of a printed tree.
type TreeNode struct {
	Label    string
	Children []*TreeNode
}

func (n *TreeNode) add(children ...*TreeNode) *TreeNode {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

func leaf(format string, args ...any) *TreeNode {
	return &TreeNode{Label: fmt.Sprintf(format, args...)}
}

// WriteTree prints n and its descendants with box-drawing connectors.
func WriteTree(w io.Writer, n *TreeNode) error {
	if _, err := fmt.Fprintln(w, n.Label); err != nil {
		return err
	}
	return writeChildren(w, n.Children, "")
}

func writeChildren(w io.Writer, children []*TreeNode, prefix string) error {
	for i, c := range children {
		branch, next := "├─ ", "│  "
		if i == len(children)-1 {
			branch, next = "└─ ", "   "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, c.Label); err != nil {
			return err
		}
		if err := writeChildren(w, c.Children, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

// typed appends ": type" to a label when the type is known.
func typed(label string, t types.Type) string {
	if t == nil {
		return label
	}
	return label + " : " + types.Format(t)
}

// DefinitionTree describes a definition together with whatever the
// semantic stages have attached to it so far.
func DefinitionTree(d Definition) *TreeNode {
	switch x := d.(type) {
	case *OperatorDefinition:
		return leaf("operator %s (%s)", x.Symbol, x.Operator)
	case *ValueSignature:
		return leaf("signature %s : %s", x.Symbol, formatScheme(x.Type))
	case *ClauseDefinition:
		return ClauseTree(x.Clause)
	case *ValueDefinition:
		n := &TreeNode{Label: typed("value "+x.Symbol.String(), x.Type)}
		if len(x.Dictionaries) > 0 {
			n.add(leaf("dictionaries %s", formatInstances(x.Dictionaries)))
		}
		for _, c := range x.Clauses {
			n.add(ClauseTree(c))
		}
		return n
	case *DataDefinition:
		n := leaf("data %s", strings.TrimSpace(x.Symbol.String()+" "+strings.Join(x.Params, " ")))
		for _, c := range x.Constructors {
			args := make([]string, len(c.Args))
			for i, a := range c.Args {
				args[i] = FormatTypeExpr(a)
			}
			n.add(leaf("%s", strings.TrimSpace(c.Symbol.String()+" "+strings.Join(args, " "))))
		}
		return n
	case *ClassDefinition:
		n := leaf("class %s %s", x.Symbol, x.Param)
		for _, m := range x.Members {
			n.add(DefinitionTree(m))
		}
		return n
	case *InstanceDefinition:
		n := leaf("instance %s %s", x.Class, FormatTypeExpr(x.Head))
		for _, m := range x.Members {
			n.add(DefinitionTree(m))
		}
		return n
	case *ForeignDefinition:
		return leaf("foreign %s : %s", x.Symbol, formatScheme(x.Type))
	}
	return leaf("%T", d)
}

// ClauseTree describes one clause: its head, shuffled or not, and its body.
func ClauseTree(c *Clause) *TreeNode {
	n := leaf("clause")
	if c.Invalid {
		n.Label += " (invalid)"
	}
	if len(c.Patterns) > 0 {
		for _, p := range c.Patterns {
			n.add(PatternTree(p))
		}
	} else if len(c.Head) > 0 {
		n.add(leaf("head %s", formatAtoms(c.Head)))
	}
	if c.Body != nil {
		n.add((&TreeNode{Label: "body"}).add(ValueTree(c.Body)))
	}
	return n
}

// PatternTree describes a shuffled pattern.
func PatternTree(p Pattern) *TreeNode {
	arg := func(label, name string) string {
		if name == "" {
			return label
		}
		return label + " as " + name
	}
	switch x := p.(type) {
	case *Capture:
		return &TreeNode{Label: typed(arg("capture "+x.Symbol.String(), x.Arg), x.Type)}
	case *Equal:
		return leaf("%s", arg("equal "+x.Value.Text, x.Arg))
	case *Wildcard:
		return &TreeNode{Label: typed(arg("_", x.Arg), x.Type)}
	case *Deconstruct:
		n := &TreeNode{Label: typed(arg("deconstruct "+x.Constructor.String(), x.Arg), x.Type)}
		for _, a := range x.Args {
			n.add(PatternTree(a))
		}
		return n
	}
	return leaf("%T", p)
}

// ValueTree describes an expression.
func ValueTree(v Value) *TreeNode {
	switch x := v.(type) {
	case *Literal:
		return leaf("%s %s", x.Kind, x.Text)
	case *Identifier:
		n := &TreeNode{Label: typed(x.Symbol.String(), x.Type)}
		for _, d := range x.Dictionaries {
			n.add(leaf("dictionary %s", formatDictionary(d)))
		}
		return n
	case *Apply:
		return (&TreeNode{Label: typed("apply", x.Type)}).add(ValueTree(x.Func), ValueTree(x.Arg))
	case *Lambda:
		n := &TreeNode{Label: typed("lambda", x.Type)}
		for _, c := range x.Cases {
			cn := leaf("case")
			if c.Invalid {
				cn.Label += " (invalid)"
			}
			if len(c.Patterns) > 0 {
				for _, p := range c.Patterns {
					cn.add(PatternTree(p))
				}
			} else {
				cn.add(leaf("args %s", formatAtoms(c.Args)))
			}
			if c.Body != nil {
				cn.add(ValueTree(c.Body))
			}
			n.add(cn)
		}
		return n
	case *Let:
		n := &TreeNode{Label: typed("let", x.Type)}
		for _, b := range x.Bindings {
			n.add((&TreeNode{Label: typed("bind "+b.Name.String(), b.Type)}).add(ValueTree(b.Value)))
		}
		return n.add((&TreeNode{Label: "in"}).add(ValueTree(x.Body)))
	case *Unshuffled:
		n := leaf("unshuffled")
		for _, a := range x.Atoms {
			n.add(ValueTree(a))
		}
		return n
	case *UnboundMethod:
		return &TreeNode{Label: typed(fmt.Sprintf("method %s of %s", x.Member, x.Class), x.Type)}
	case *BoundMethod:
		return &TreeNode{Label: typed(fmt.Sprintf("method %s from %s", x.Member, x.Instance), x.Type)}
	}
	return leaf("%T", v)
}

func formatAtoms(atoms []PatternAtom) string {
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		switch x := a.(type) {
		case *PatName:
			parts[i] = x.Symbol.String()
			if x.Quoted {
				parts[i] = "(" + parts[i] + ")"
			}
		case *PatLiteral:
			parts[i] = x.Literal.Text
		case *PatGroup:
			parts[i] = "(" + formatAtoms(x.Atoms) + ")"
		case *PatWildcard:
			parts[i] = "_"
		}
	}
	return strings.Join(parts, " ")
}

func formatScheme(s *TypeScheme) string {
	if s == nil {
		return "?"
	}
	body := FormatTypeExpr(s.Body)
	if len(s.Constraints) == 0 {
		return body
	}
	cs := make([]string, len(s.Constraints))
	for i, c := range s.Constraints {
		cs[i] = c.Class.String() + " " + c.Var
	}
	if len(cs) == 1 {
		return cs[0] + " => " + body
	}
	return "(" + strings.Join(cs, ", ") + ") => " + body
}

func formatInstances(list []types.Instance) string {
	parts := make([]string, len(list))
	for i, inst := range list {
		parts[i] = types.Format(inst)
	}
	return strings.Join(parts, ", ")
}

func formatDictionary(d Dictionary) string {
	if d.Bound != nil {
		return d.Bound.String()
	}
	return types.Format(d.Param)
}
