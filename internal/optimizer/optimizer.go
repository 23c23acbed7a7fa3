// Package optimizer rewrites parsed syntax trees into the primitive forms
// understood by the instruction builder.
package optimizer

import (
	"github.com/rangoo94/object-regexp/internal/syntax"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

// Optimize rewrites the tree in place and returns its root. Running it again
// on its own output leaves the tree unchanged.
func Optimize(root *syntax.Node) *syntax.Node {
	rewrite(root, possessiveToAtomic)
	rewrite(root, desugarAtLeast)
	rewrite(root, desugarBetween)
	rewrite(root, desugarManyGreedy)
	rewrite(root, desugarExact)
	rewrite(root, desugarAtMost)
	rewrite(root, desugarLazy)

	simplify(root)
	rewrite(root, removeObjectRedundancy)

	for convertLazyLoops(root) {
		simplify(root)
	}
	markStraightforward(root)

	root.Link()
	return root
}

// rewriteFunc returns the nodes replacing n inside parent. Returning nil
// removes n; quantifiers and alternatives must always get exactly one node
// back for each child.
type rewriteFunc func(n, parent *syntax.Node) []*syntax.Node

// rewrite applies fn to every node below n, children first.
func rewrite(n *syntax.Node, fn rewriteFunc) bool {
	changed := false
	out := make([]*syntax.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if rewrite(c, fn) {
			changed = true
		}
		replaced := fn(c, n)
		if len(replaced) != 1 || replaced[0] != c {
			changed = true
		}
		out = append(out, replaced...)
	}
	n.Children = out
	for _, c := range out {
		c.Parent = n
	}
	return changed
}

func keep(n *syntax.Node) []*syntax.Node {
	return []*syntax.Node{n}
}

// possessiveToAtomic turns X++, X*+, X?+ and possessive counted forms into
// an atomic group around the greedy form.
func possessiveToAtomic(n, _ *syntax.Node) []*syntax.Node {
	var greedy syntax.Kind
	switch n.Kind {
	case syntax.OptionalPossessive:
		greedy = syntax.Optional
	case syntax.AnyPossessive:
		greedy = syntax.AnyGreedy
	case syntax.ManyPossessive:
		greedy = syntax.ManyGreedy
	case syntax.AmountExact, syntax.AmountAtLeast, syntax.AmountAtMost, syntax.AmountBetween:
		if !n.Possessive {
			return keep(n)
		}
		greedy = n.Kind
	default:
		return keep(n)
	}

	n.Kind = greedy
	n.Possessive = false
	return keep(syntax.NewNode(syntax.AtomicGroup, n))
}

// desugarAtLeast: X{n,} -> (X{n} X*)
func desugarAtLeast(n, _ *syntax.Node) []*syntax.Node {
	if n.Kind != syntax.AmountAtLeast {
		return keep(n)
	}
	exact := &syntax.Node{Kind: syntax.AmountExact, Min: n.Min, Max: n.Min}
	exact.Children = []*syntax.Node{n.Child()}
	return keep(syntax.NewNode(syntax.Group, exact, syntax.NewNode(syntax.AnyGreedy, n.Child().Clone())))
}

// desugarBetween: X{n,m} -> (X{n} X{,m-n})
func desugarBetween(n, _ *syntax.Node) []*syntax.Node {
	if n.Kind != syntax.AmountBetween {
		return keep(n)
	}
	exact := &syntax.Node{Kind: syntax.AmountExact, Min: n.Min, Max: n.Min}
	exact.Children = []*syntax.Node{n.Child()}
	atMost := &syntax.Node{Kind: syntax.AmountAtMost, Max: n.Max - n.Min}
	atMost.Children = []*syntax.Node{n.Child().Clone()}
	return keep(syntax.NewNode(syntax.Group, exact, atMost))
}

// desugarManyGreedy: X+ -> (X X*)
func desugarManyGreedy(n, _ *syntax.Node) []*syntax.Node {
	if n.Kind != syntax.ManyGreedy {
		return keep(n)
	}
	return keep(syntax.NewNode(syntax.Group, n.Child(), syntax.NewNode(syntax.AnyGreedy, n.Child().Clone())))
}

// desugarExact unrolls X{n} into n copies.
func desugarExact(n, _ *syntax.Node) []*syntax.Node {
	if n.Kind != syntax.AmountExact {
		return keep(n)
	}
	if n.Min == 0 {
		return keep(syntax.NewNode(syntax.Nothing))
	}
	copies := make([]*syntax.Node, n.Min)
	copies[0] = n.Child()
	for i := 1; i < n.Min; i++ {
		copies[i] = n.Child().Clone()
	}
	return keep(syntax.NewNode(syntax.Group, copies...))
}

// desugarAtMost: X{,m} -> (X(X(X)?)?)? with m levels.
func desugarAtMost(n, _ *syntax.Node) []*syntax.Node {
	if n.Kind != syntax.AmountAtMost {
		return keep(n)
	}
	if n.Max == 0 {
		return keep(syntax.NewNode(syntax.Nothing))
	}
	inner := syntax.NewNode(syntax.Optional, n.Child().Clone())
	for i := 1; i < n.Max; i++ {
		inner = syntax.NewNode(syntax.Optional, syntax.NewNode(syntax.Group, n.Child().Clone(), inner))
	}
	return keep(inner)
}

// desugarLazy: X*? -> (|X+?) and X?? -> (|X)
func desugarLazy(n, _ *syntax.Node) []*syntax.Node {
	switch n.Kind {
	case syntax.AnyLazy:
		return keep(syntax.NewNode(syntax.Alternative,
			syntax.NewNode(syntax.Nothing),
			syntax.NewNode(syntax.ManyLazy, n.Child())))
	case syntax.OptionalLazy:
		return keep(syntax.NewNode(syntax.Alternative, syntax.NewNode(syntax.Nothing), n.Child()))
	}
	return keep(n)
}

// simplify prunes dead nodes and merges object alternatives until the tree
// stops changing.
func simplify(root *syntax.Node) {
	for {
		changed := rewrite(root, removeRedundantNodes)
		if rewrite(root, mergeObjectAlternatives) {
			changed = true
		}
		if !changed {
			return
		}
	}
}

// removeRedundantNodes drops Nothing from sequences and unpacks unnamed
// groups that do not change the meaning of the pattern.
func removeRedundantNodes(n, parent *syntax.Node) []*syntax.Node {
	inSequence := parent.Kind.IsSequence()

	if n.Kind == syntax.Nothing {
		if inSequence {
			return nil
		}
		return keep(n)
	}
	if n.Kind != syntax.Group || n.Name != "" {
		return keep(n)
	}

	switch {
	case len(n.Children) == 0 && inSequence:
		return nil
	case len(n.Children) == 0:
		return keep(syntax.NewNode(syntax.Nothing))
	case inSequence || len(n.Children) == 1:
		return n.Children
	}
	return keep(n)
}

// mergeObjectAlternatives: ([A]|[B]) -> [A|B]
func mergeObjectAlternatives(n, _ *syntax.Node) []*syntax.Node {
	if n.Kind != syntax.Alternative {
		return keep(n)
	}
	left, right := n.Children[0], n.Children[1]
	if left.Kind != syntax.Object || right.Kind != syntax.Object {
		return keep(n)
	}

	options := make([]objects.Option, 0, len(left.Options)+len(right.Options))
	options = append(options, left.Options...)
	options = append(options, right.Options...)
	return keep(&syntax.Node{Kind: syntax.Object, Options: options})
}

// removeObjectRedundancy drops repeated options, keeping the first one.
func removeObjectRedundancy(n, _ *syntax.Node) []*syntax.Node {
	if n.Kind != syntax.Object && n.Kind != syntax.NegatedObject {
		return keep(n)
	}

	seen := make(map[objects.Option]struct{}, len(n.Options))
	options := n.Options[:0:0]
	for _, o := range n.Options {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		options = append(options, o)
	}
	n.Options = options
	return keep(n)
}
