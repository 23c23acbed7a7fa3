package compiler

import "github.com/rangoo94/object-regexp/internal/program"

// layout assigns the per-node locals of the generated matcher. A node is
// never open twice at the same time, so one slot per node is enough and a
// save-point can snapshot all of them by value.
type layout struct {
	start []int32 // locals slot with the start position, or None
	point []int32 // locals slot with the save-point stack index, or None
	mark  []int32 // locals slot with the atomic stack mark, or None
	group []int32 // saved slot with the groups at entry, or None

	locals int
	saved  int
	// backtracks is set when the program pushes save-points at all.
	backtracks bool
}

func newLayout(p *program.Program) layout {
	n := len(p.Instructions)
	l := layout{
		start: filled(n),
		point: filled(n),
		mark:  filled(n),
		group: filled(n),
	}
	l.backtracks = len(p.Backtrackable()) > 0
	hasGroups := len(p.GroupNames) > 0

	for i := range p.Instructions {
		in := &p.Instructions[i]
		switch in.Kind {
		case program.OpGroup:
			if in.Name != "" {
				l.start[i] = l.local()
			}
		case program.OpAtomic:
			if l.backtracks {
				l.mark[i] = l.local()
			}
		case program.OpAlternative:
			l.start[i] = l.local()
			if hasGroups {
				l.group[i] = l.snapshot()
			}
		case program.OpOptional, program.OpAnyGreedy:
			l.start[i] = l.local()
			if hasGroups {
				l.group[i] = l.snapshot()
			}
			if !in.Straightforward {
				l.point[i] = l.local()
			}
		case program.OpManyLazy:
			if !in.Straightforward {
				l.start[i] = l.local()
			}
		}
	}
	return l
}

func (l *layout) local() int32 {
	l.locals++
	return int32(l.locals - 1)
}

func (l *layout) snapshot() int32 {
	l.saved++
	return int32(l.saved - 1)
}

func filled(n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = program.None
	}
	return out
}
