package program

import (
	"fmt"

	"github.com/rangoo94/object-regexp/internal/syntax"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

// Mode selects how the instruction arena is materialized.
type Mode uint8

const (
	// Direct builds the arena in memory.
	Direct Mode = iota
	// Literal renders the arena as a Go composite literal and evaluates it
	// back.
	Literal
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Literal:
		return "literal"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Build flattens an optimized tree. The tree must not contain quantifiers
// other than Optional, AnyGreedy and ManyLazy.
func Build(root *syntax.Node, mode Mode) (*Program, error) {
	if root == nil || root.Kind != syntax.Root {
		return nil, fmt.Errorf("program needs a root node")
	}

	b := &builder{}
	if err := b.add(root, None); err != nil {
		return nil, err
	}
	instructions := b.instructions

	if mode == Literal {
		var err error
		instructions, err = EvalLiteral(EmitLiteral(instructions))
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate program literal: %w", err)
		}
	}

	return assemble(instructions), nil
}

type builder struct {
	instructions []Instruction
	slots        map[string]int32
}

func (b *builder) slot(name string) int32 {
	if b.slots == nil {
		b.slots = make(map[string]int32)
	}
	if s, ok := b.slots[name]; ok {
		return s
	}
	s := int32(len(b.slots))
	b.slots[name] = s
	return s
}

func (b *builder) push(in Instruction) int32 {
	in.Index = int32(len(b.instructions))
	in.FirstChild = None
	in.NextSibling = None
	if in.Slot == 0 && in.Name == "" {
		in.Slot = None
	}
	in.Expectation = None
	b.instructions = append(b.instructions, in)
	return in.Index
}

func (b *builder) add(n *syntax.Node, parent int32) error {
	op, err := opOf(n)
	if err != nil {
		return err
	}

	in := Instruction{
		Kind:            op,
		Options:         n.Options,
		Parent:          parent,
		Straightforward: n.Straightforward,
		LastAtomic:      n.LastAtomic,
		Loop:            op == OpAnyGreedy || op == OpManyLazy,
	}
	if op == OpGroup && n.Name != "" {
		in.Name = n.Name
		in.Slot = b.slot(n.Name)
	}
	idx := b.push(in)

	children := make([]int32, 0, len(n.Children)+1)
	for _, c := range n.Children {
		children = append(children, int32(len(b.instructions)))
		if err := b.add(c, idx); err != nil {
			return err
		}
	}
	if in.Name != "" {
		children = append(children, b.push(Instruction{
			Kind:            OpFinish,
			Name:            in.Name,
			Slot:            in.Slot,
			Parent:          idx,
			Straightforward: true,
		}))
		b.instructions[len(b.instructions)-1].NextIndex = int32(len(b.instructions))
	}

	self := &b.instructions[idx]
	self.Children = children
	if len(children) > 0 {
		self.FirstChild = children[0]
	}
	for i := 0; i+1 < len(children); i++ {
		b.instructions[children[i]].NextSibling = children[i+1]
	}
	self.NextIndex = int32(len(b.instructions))
	for j := idx + 1; j < self.NextIndex; j++ {
		self.InnerIndexes = append(self.InnerIndexes, j)
	}
	return nil
}

func opOf(n *syntax.Node) (Op, error) {
	switch n.Kind {
	case syntax.Root:
		return OpRoot, nil
	case syntax.Group:
		return OpGroup, nil
	case syntax.AtomicGroup:
		return OpAtomic, nil
	case syntax.Alternative:
		if len(n.Children) != 2 {
			return 0, fmt.Errorf("alternative needs two branches, got %d", len(n.Children))
		}
		return OpAlternative, nil
	case syntax.Object:
		return OpObject, nil
	case syntax.NegatedObject:
		return OpNegated, nil
	case syntax.AnyObject:
		return OpAny, nil
	case syntax.EndIndex:
		return OpEnd, nil
	case syntax.Nothing:
		return OpNothing, nil
	case syntax.Optional:
		return OpOptional, nil
	case syntax.AnyGreedy:
		return OpAnyGreedy, nil
	case syntax.ManyLazy:
		return OpManyLazy, nil
	}
	return 0, fmt.Errorf("%v is not supported by the instruction builder, optimize the tree first", n.Kind)
}

// assemble derives the group table and the expectation descriptors.
func assemble(instructions []Instruction) *Program {
	p := &Program{Instructions: instructions}

	for i := range instructions {
		in := &instructions[i]
		if in.Kind == OpGroup && in.Name != "" && int(in.Slot) == len(p.GroupNames) {
			p.GroupNames = append(p.GroupNames, in.Name)
		}
	}

	for i := range instructions {
		in := &instructions[i]
		var kind objects.ExpectationKind
		switch in.Kind {
		case OpObject:
			kind = objects.OneOf
		case OpNegated:
			kind = objects.NotOneOf
		case OpAny:
			kind = objects.Any
		default:
			continue
		}
		in.Expectation = int32(len(p.Expectations))
		p.Expectations = append(p.Expectations, objects.Expectation{
			Kind:    kind,
			Step:    int(in.Index),
			Head:    p.Head(in.Index),
			Options: in.Options,
		})
	}
	return p
}
