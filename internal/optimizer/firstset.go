package optimizer

import (
	"github.com/rangoo94/object-regexp/internal/syntax"
)

// firstSet describes which objects may be consumed first by a node.
type firstSet struct {
	types map[string]struct{}
	// any is set when a wildcard or a negated class may be consumed first.
	any bool
	// nullable is set when the node may succeed without consuming anything.
	nullable bool
}

func (f *firstSet) add(o firstSet) {
	if o.any {
		f.any = true
	}
	for t := range o.types {
		if f.types == nil {
			f.types = make(map[string]struct{}, len(o.types))
		}
		f.types[t] = struct{}{}
	}
}

func (f firstSet) intersects(o firstSet) bool {
	if f.any && (o.any || len(o.types) > 0) || o.any && len(f.types) > 0 {
		return true
	}
	for t := range f.types {
		if _, ok := o.types[t]; ok {
			return true
		}
	}
	return false
}

// analysis caches first sets for a single pass over the tree.
type analysis struct {
	first map[*syntax.Node]firstSet
}

func newAnalysis() *analysis {
	return &analysis{first: make(map[*syntax.Node]firstSet)}
}

func (a *analysis) firstOf(n *syntax.Node) firstSet {
	if f, ok := a.first[n]; ok {
		return f
	}

	var f firstSet
	switch n.Kind {
	case syntax.Object:
		f.types = make(map[string]struct{}, len(n.Options))
		for _, o := range n.Options {
			f.types[o.Type] = struct{}{}
		}
	case syntax.NegatedObject, syntax.AnyObject:
		f.any = true
	case syntax.EndIndex:
	case syntax.Nothing:
		f.nullable = true
	case syntax.Root, syntax.Group, syntax.AtomicGroup:
		f.nullable = true
		for _, c := range n.Children {
			cf := a.firstOf(c)
			f.add(cf)
			if !cf.nullable {
				f.nullable = false
				break
			}
		}
	case syntax.Alternative:
		left, right := a.firstOf(n.Children[0]), a.firstOf(n.Children[1])
		f.add(left)
		f.add(right)
		f.nullable = left.nullable || right.nullable
	case syntax.ManyGreedy, syntax.ManyLazy, syntax.ManyPossessive:
		cf := a.firstOf(n.Child())
		f.add(cf)
		f.nullable = cf.nullable
	default:
		cf := a.firstOf(n.Child())
		f.add(cf)
		f.nullable = true
	}

	a.first[n] = f
	return f
}

// followOf collects what may be consumed right after n completes. The
// boolean is true when the walk stopped at a node that always consumes,
// and false when it reached the end of the root or of an atomic group.
func (a *analysis) followOf(n *syntax.Node) (firstSet, bool) {
	var follow firstSet
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		p := cur.Parent
		switch p.Kind {
		case syntax.Root, syntax.Group, syntax.AtomicGroup:
			for _, s := range p.Children[indexOf(p, cur)+1:] {
				sf := a.firstOf(s)
				follow.add(sf)
				if !sf.nullable {
					return follow, true
				}
			}
			if p.Kind != syntax.Group {
				return follow, false
			}
		case syntax.AnyGreedy, syntax.ManyLazy:
			follow.add(a.firstOf(p.Child()))
		}
	}
	return follow, false
}

func indexOf(parent, child *syntax.Node) int {
	for i, c := range parent.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// deterministic reports whether entering body can be decided by the next
// object alone: body always consumes, never starts with a wildcard, and
// nothing after it can start with the same object.
func (a *analysis) deterministic(body *syntax.Node, follow firstSet) bool {
	bf := a.firstOf(body)
	if bf.any || bf.nullable || follow.any {
		return false
	}
	return !bf.intersects(follow)
}

// convertLazyLoops rewrites X+? into X X* when the lazy loop could never
// stop at a different place than the greedy one. It reports whether the
// tree changed.
func convertLazyLoops(root *syntax.Node) bool {
	root.Link()
	a := newAnalysis()
	return rewrite(root, func(n, parent *syntax.Node) []*syntax.Node {
		if n.Kind != syntax.ManyLazy || !parent.Kind.IsSequence() {
			return keep(n)
		}
		follow, consumed := a.followOf(n)
		if !consumed || !a.deterministic(n.Child(), follow) {
			return keep(n)
		}
		return []*syntax.Node{n.Child(), syntax.NewNode(syntax.AnyGreedy, n.Child().Clone())}
	})
}

// markStraightforward sets the LastAtomic and Straightforward flags.
func markStraightforward(root *syntax.Node) {
	root.Link()
	a := newAnalysis()

	root.Walk(func(n *syntax.Node) bool {
		n.LastAtomic = isLastAtomic(n)
		return true
	})
	root.Walk(func(n *syntax.Node) bool {
		n.Straightforward = a.straightforward(n)
		return true
	})
}

func isLastAtomic(n *syntax.Node) bool {
	p := n.Parent
	if p == nil {
		return false
	}
	switch p.Kind {
	case syntax.Root, syntax.AtomicGroup:
		return p.LastChild() == n
	case syntax.Group:
		// A named group still has to record its span.
		return p.Name == "" && p.LastAtomic && p.LastChild() == n
	case syntax.Alternative:
		return p.LastAtomic
	}
	return false
}

func (a *analysis) straightforward(n *syntax.Node) bool {
	switch n.Kind {
	case syntax.Object, syntax.NegatedObject, syntax.AnyObject, syntax.EndIndex, syntax.Nothing:
		return true
	case syntax.Alternative, syntax.ManyLazy:
		return n.LastAtomic
	case syntax.Optional, syntax.AnyGreedy:
		if n.LastAtomic {
			return true
		}
		if n.Parent == nil || !n.Parent.Kind.IsSequence() {
			return false
		}
		follow, _ := a.followOf(n)
		return a.deterministic(n.Child(), follow)
	}
	return false
}
