package compiler

import (
	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/internal/syntax"
)

// stats summarizes a program for logging and analysis.
type stats struct {
	Instructions       int
	BacktrackingPoints int
	Straightforward    int
	Atomic             bool
}

func programStats(p *program.Program) stats {
	s := stats{
		Instructions:       len(p.Instructions),
		BacktrackingPoints: len(p.Backtrackable()),
	}
	for i := range p.Instructions {
		in := &p.Instructions[i]
		switch in.Kind {
		case program.OpAlternative, program.OpOptional, program.OpAnyGreedy, program.OpManyLazy:
			if in.Straightforward {
				s.Straightforward++
			}
		case program.OpAtomic:
			s.Atomic = true
		}
	}
	return s
}

// hasKind reports whether any node of the tree satisfies fn.
func hasKind(root *syntax.Node, fn func(*syntax.Node) bool) bool {
	found := false
	root.Walk(func(n *syntax.Node) bool {
		if found {
			return false
		}
		found = fn(n)
		return !found
	})
	return found
}

func isLazy(n *syntax.Node) bool {
	switch n.Kind {
	case syntax.OptionalLazy, syntax.AnyLazy, syntax.ManyLazy:
		return true
	}
	return false
}

func isPossessive(n *syntax.Node) bool {
	switch n.Kind {
	case syntax.OptionalPossessive, syntax.AnyPossessive, syntax.ManyPossessive:
		return true
	}
	return n.Kind.IsQuantifier() && n.Possessive
}
