// Package syntax turns pattern text into a syntax tree and back.
package syntax

import (
	"fmt"

	"github.com/rangoo94/object-regexp/pkg/objects"
)

// Kind identifies a syntax tree node type.
type Kind uint8

// Node kinds produced by the parser. Quantifier kinds are rewritten into
// primitive forms by the optimizer.
const (
	Root Kind = iota
	Group
	AtomicGroup
	Alternative
	Object
	NegatedObject
	AnyObject
	EndIndex
	Nothing
	Optional
	OptionalLazy
	OptionalPossessive
	AnyGreedy
	AnyLazy
	AnyPossessive
	ManyGreedy
	ManyLazy
	ManyPossessive
	AmountExact
	AmountAtLeast
	AmountAtMost
	AmountBetween
)

var kindNames = [...]string{
	Root:               "Root",
	Group:              "Group",
	AtomicGroup:        "AtomicGroup",
	Alternative:        "Alternative",
	Object:             "Object",
	NegatedObject:      "NegatedObject",
	AnyObject:          "AnyObject",
	EndIndex:           "EndIndex",
	Nothing:            "Nothing",
	Optional:           "Optional",
	OptionalLazy:       "OptionalLazy",
	OptionalPossessive: "OptionalPossessive",
	AnyGreedy:          "AnyGreedy",
	AnyLazy:            "AnyLazy",
	AnyPossessive:      "AnyPossessive",
	ManyGreedy:         "ManyGreedy",
	ManyLazy:           "ManyLazy",
	ManyPossessive:     "ManyPossessive",
	AmountExact:        "AmountExact",
	AmountAtLeast:      "AmountAtLeast",
	AmountAtMost:       "AmountAtMost",
	AmountBetween:      "AmountBetween",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsQuantifier reports whether the kind wraps a single repeated child.
func (k Kind) IsQuantifier() bool {
	return k >= Optional && k <= AmountBetween
}

// IsSequence reports whether the node runs its children one after another.
func (k Kind) IsSequence() bool {
	return k == Root || k == Group || k == AtomicGroup
}

// Node is a syntax tree node. Parent links are refreshed by Link.
type Node struct {
	Kind     Kind
	Options  []objects.Option
	Name     string
	Min, Max int
	// Possessive marks counted repetitions written with a trailing '+'.
	Possessive bool
	Children   []*Node
	Parent     *Node

	// Straightforward is set by the optimizer on constructs that never
	// need a save-point.
	Straightforward bool
	// LastAtomic is set on nodes whose completion ends their enclosing
	// root or atomic group.
	LastAtomic bool
}

// NewNode creates a node with the given children.
func NewNode(kind Kind, children ...*Node) *Node {
	n := &Node{Kind: kind, Children: children}
	for _, c := range children {
		c.Parent = n
	}
	return n
}

// Child returns the first child, or nil.
func (n *Node) Child() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// Clone returns a deep copy without a parent.
func (n *Node) Clone() *Node {
	c := *n
	c.Parent = nil
	if n.Options != nil {
		c.Options = append([]objects.Option(nil), n.Options...)
	}
	c.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = child.Clone()
		c.Children[i].Parent = &c
	}
	return &c
}

// Link sets the Parent field of every descendant.
func (n *Node) Link() {
	for _, c := range n.Children {
		c.Parent = n
		c.Link()
	}
}

// Walk visits the tree in preorder. Returning false skips the children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Equal reports whether two trees have the same shape, payloads and flags.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Name != b.Name || a.Min != b.Min || a.Max != b.Max ||
		a.Possessive != b.Possessive || a.Straightforward != b.Straightforward ||
		a.LastAtomic != b.LastAtomic || len(a.Options) != len(b.Options) ||
		len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Options {
		if a.Options[i] != b.Options[i] {
			return false
		}
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Dump renders the tree one node per line, for debugging and tests.
func Dump(n *Node) string {
	var out []byte
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		for i := 0; i < depth; i++ {
			out = append(out, "  "...)
		}
		out = append(out, n.Kind.String()...)
		switch {
		case n.Name != "":
			out = append(out, " <"+n.Name+">"...)
		case len(n.Options) > 0:
			out = append(out, " ["+serializeOptions(n.Options)+"]"...)
		case n.Kind >= AmountExact:
			out = fmt.Appendf(out, " {%d,%d}", n.Min, n.Max)
		}
		if n.Straightforward {
			out = append(out, " sf"...)
		}
		out = append(out, '\n')
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(n, 0)
	return string(out)
}
