package types

import (
	"strconv"
	"strings"
)

// Namer assigns readable names (a, b, ... z, a1, ...) to variables. Sharing one
// Namer between several types keeps their names consistent in one message.
type Namer struct {
	names map[VarID]string
}

func NewNamer() *Namer {
	return &Namer{names: make(map[VarID]string)}
}

func (n *Namer) name(id VarID) string {
	if s, ok := n.names[id]; ok {
		return s
	}
	i := len(n.names)
	s := string(rune('a' + i%26))
	if i >= 26 {
		s += strconv.Itoa(i / 26)
	}
	n.names[id] = s
	return s
}

// Format renders t with its class constraints, e.g. "(Prelude.Eq a) => a -> a".
func Format(t Type) string {
	return NewNamer().Format(t)
}

// FormatPair renders two types with one shared variable naming.
func FormatPair(a, b Type) (string, string) {
	n := NewNamer()
	return n.Format(a), n.Format(b)
}

func (n *Namer) Format(t Type) string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	var constraints []string
	for _, v := range FreeVars(t) {
		for _, class := range v.Context.Items() {
			constraints = append(constraints, class.String()+" "+n.name(v.ID))
		}
	}
	switch len(constraints) {
	case 0:
	case 1:
		b.WriteString(constraints[0])
		b.WriteString(" => ")
	default:
		b.WriteString("(")
		b.WriteString(strings.Join(constraints, ", "))
		b.WriteString(") => ")
	}
	n.write(&b, t, false)
	return b.String()
}

// write renders t; nested marks a position where arrows and applied sums
// need parentheses.
func (n *Namer) write(b *strings.Builder, t Type, nested bool) {
	switch x := t.(type) {
	case Variable:
		b.WriteString(n.name(x.ID))
	case Function:
		if nested {
			b.WriteByte('(')
		}
		_, argIsFunc := x.Arg.(Function)
		n.write(b, x.Arg, argIsFunc)
		b.WriteString(" -> ")
		n.write(b, x.Result, false)
		if nested {
			b.WriteByte(')')
		}
	case Sum:
		if len(x.Params) == 0 {
			b.WriteString(x.Symbol.String())
			return
		}
		if nested {
			b.WriteByte('(')
		}
		b.WriteString(x.Symbol.String())
		for _, p := range x.Params {
			b.WriteByte(' ')
			n.write(b, p, true)
		}
		if nested {
			b.WriteByte(')')
		}
	case Instance:
		b.WriteString("instance(")
		b.WriteString(x.Class.String())
		b.WriteByte(' ')
		b.WriteString(n.name(x.Var.ID))
		b.WriteByte(')')
	default:
		b.WriteString("<?>")
	}
}
