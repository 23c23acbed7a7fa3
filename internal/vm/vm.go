// Package vm runs compiled programs with a backtracking interpreter.
package vm

import (
	"sync"

	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

// Machine matches object sequences against one program. It is safe for
// concurrent use.
type Machine struct {
	prog *program.Program
	pool sync.Pool
}

// New returns a machine for p. The program must not be modified afterwards.
func New(p *program.Program) *Machine {
	m := &Machine{prog: p}
	m.pool.New = func() any {
		return &state{}
	}
	return m
}

// Program returns the program run by the machine.
func (m *Machine) Program() *program.Program {
	return m.prog
}

// state is the per-call scratch space.
type state struct {
	input        []objects.Object
	pos          int
	groups       captures
	frames       *frame
	top          *savePoint
	expectations []objects.Expectation
}

func (s *state) reset() {
	s.input = nil
	s.groups = nil
	s.frames = nil
	s.top = nil
	s.expectations = s.expectations[:0]
}

// Match tests whether input, starting at startIndex, begins with a match.
// It returns nil when no match is possible, an unfinished result when the
// input ended too early, and a finished result on success.
func (m *Machine) Match(input []objects.Object, startIndex int) *objects.Result {
	if startIndex < 0 {
		panic("vm: negative start index")
	}
	if m.prog.Empty() {
		return &objects.Result{Finished: true, Index: startIndex, Groups: objects.Groups{}}
	}

	s := m.pool.Get().(*state)
	defer func() {
		s.reset()
		m.pool.Put(s)
	}()

	s.input = input
	s.pos = startIndex
	return m.run(s, startIndex)
}

func (m *Machine) run(s *state, start int) *objects.Result {
	ins := m.prog.Instructions

	act, node := enter, int32(0)
	for {
		in := &ins[node]

		switch act {
		case enter:
			act, node = m.enter(s, in)

		case complete:
			if in.Parent == program.None {
				return m.success(s, start)
			}
			act, node = m.completeChild(s, in)

		case fail:
			if in.Parent == program.None {
				var ok bool
				act, node, ok = m.backtrack(s)
				if !ok {
					return m.failure(s)
				}
				continue
			}
			act, node = m.failChild(s, in)
		}
	}
}

// enter starts an instruction and returns what to do next.
func (m *Machine) enter(s *state, in *program.Instruction) (action, int32) {
	switch in.Kind {
	case program.OpObject, program.OpNegated, program.OpAny:
		if s.pos >= len(s.input) {
			s.expectations = append(s.expectations, m.prog.Expectation(in.Index))
			return fail, in.Index
		}
		if !accepts(in, s.input[s.pos]) {
			return fail, in.Index
		}
		s.pos++
		return complete, in.Index

	case program.OpEnd:
		if s.pos >= len(s.input) {
			return complete, in.Index
		}
		return fail, in.Index

	case program.OpNothing:
		return complete, in.Index

	case program.OpFinish:
		s.groups = s.groups.with(in.Slot, objects.Span{From: s.frames.start, To: s.pos}, len(m.prog.GroupNames))
		return complete, in.Index

	case program.OpRoot, program.OpGroup, program.OpAtomic:
		f := &frame{node: in.Index, start: s.pos, parent: s.frames}
		if in.Kind == program.OpAtomic {
			f.mark = s.top
		}
		s.frames = f
		if in.FirstChild == program.None {
			return m.finishSequence(s, in)
		}
		return enter, in.FirstChild

	case program.OpAlternative:
		s.frames = &frame{node: in.Index, start: s.pos, groups: s.groups, parent: s.frames}
		return enter, in.FirstChild

	case program.OpOptional, program.OpAnyGreedy:
		f := &frame{node: in.Index, start: s.pos, groups: s.groups, parent: s.frames}
		if !in.Straightforward {
			f.point = m.push(s, complete, in.Index, s.frames)
		}
		s.frames = f
		return enter, in.FirstChild

	case program.OpManyLazy:
		s.frames = &frame{node: in.Index, start: s.pos, groups: s.groups, parent: s.frames}
		return enter, in.FirstChild
	}
	panic("vm: unknown instruction " + in.Kind.String())
}

// completeChild continues after child succeeded.
func (m *Machine) completeChild(s *state, child *program.Instruction) (action, int32) {
	parent := &m.prog.Instructions[child.Parent]
	f := s.frames

	switch parent.Kind {
	case program.OpRoot, program.OpGroup, program.OpAtomic:
		if child.NextSibling != program.None {
			return enter, child.NextSibling
		}
		return m.finishSequence(s, parent)

	case program.OpAlternative:
		s.frames = f.parent
		if child.Index == parent.FirstChild && !parent.Straightforward {
			m.pushAt(s, enter, parent.Children[1], f.start, f.groups, f)
		}
		return complete, parent.Index

	case program.OpOptional:
		s.frames = f.parent
		return complete, parent.Index

	case program.OpAnyGreedy:
		if s.pos == f.start {
			if f.point != nil {
				f.point.ignored = true
			}
			s.frames = f.parent
			return complete, parent.Index
		}
		next := &frame{node: parent.Index, start: s.pos, groups: s.groups, parent: f.parent}
		if !parent.Straightforward {
			next.point = m.push(s, complete, parent.Index, f.parent)
		}
		s.frames = next
		return enter, parent.FirstChild

	case program.OpManyLazy:
		s.frames = f.parent
		if !parent.Straightforward && s.pos != f.start {
			m.push(s, enter, parent.Index, f.parent)
		}
		return complete, parent.Index
	}
	panic("vm: unexpected parent " + parent.Kind.String())
}

// failChild continues after child failed.
func (m *Machine) failChild(s *state, child *program.Instruction) (action, int32) {
	parent := &m.prog.Instructions[child.Parent]
	f := s.frames

	switch parent.Kind {
	case program.OpRoot:
		return fail, parent.Index

	case program.OpGroup, program.OpAtomic, program.OpManyLazy:
		s.frames = f.parent
		return fail, parent.Index

	case program.OpAlternative:
		if child.Index == parent.FirstChild {
			s.pos = f.start
			s.groups = f.groups
			return enter, parent.Children[1]
		}
		s.frames = f.parent
		return fail, parent.Index

	case program.OpOptional, program.OpAnyGreedy:
		s.pos = f.start
		s.groups = f.groups
		if f.point != nil {
			f.point.ignored = true
		}
		s.frames = f.parent
		return complete, parent.Index
	}
	panic("vm: unexpected parent " + parent.Kind.String())
}

// finishSequence closes a group whose children all succeeded.
func (m *Machine) finishSequence(s *state, in *program.Instruction) (action, int32) {
	f := s.frames
	if in.Kind == program.OpAtomic {
		s.top = f.mark
	}
	if in.Kind != program.OpRoot {
		s.frames = f.parent
	}
	return complete, in.Index
}

func (m *Machine) push(s *state, act action, node int32, frames *frame) *savePoint {
	return m.pushAt(s, act, node, s.pos, s.groups, frames)
}

func (m *Machine) pushAt(s *state, act action, node int32, pos int, groups captures, frames *frame) *savePoint {
	p := &savePoint{
		action: act,
		node:   node,
		pos:    pos,
		groups: groups,
		frames: frames,
		prev:   s.top,
	}
	s.top = p
	return p
}

// backtrack resumes the newest save-point that was not ignored.
func (m *Machine) backtrack(s *state) (action, int32, bool) {
	for p := s.top; p != nil; p = p.prev {
		if p.ignored {
			continue
		}
		s.top = p.prev
		s.pos = p.pos
		s.groups = p.groups
		s.frames = p.frames
		return p.action, p.node, true
	}
	s.top = nil
	return 0, 0, false
}

func (m *Machine) success(s *state, start int) *objects.Result {
	r := &objects.Result{
		Finished: true,
		Index:    start,
		Length:   s.pos - start,
		Groups:   s.groups.groups(m.prog.GroupNames),
	}
	if len(s.expectations) > 0 {
		r.Expectations = append([]objects.Expectation(nil), s.expectations...)
	}
	return r
}

func (m *Machine) failure(s *state) *objects.Result {
	if len(s.expectations) == 0 {
		return nil
	}
	return &objects.Result{Expectations: append([]objects.Expectation(nil), s.expectations...)}
}

func accepts(in *program.Instruction, o objects.Object) bool {
	switch in.Kind {
	case program.OpAny:
		return true
	case program.OpNegated:
		return !objects.MatchOptions(o, in.Options)
	}
	return objects.MatchOptions(o, in.Options)
}
