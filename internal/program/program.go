// Package program flattens optimized syntax trees into an instruction arena
// shared by the interpreter and the code generator.
package program

import (
	"fmt"

	"github.com/rangoo94/object-regexp/pkg/objects"
)

// Op is the instruction operation.
type Op uint8

// Operations left after optimization, plus OpFinish which closes a named
// group.
const (
	OpRoot Op = iota
	OpGroup
	OpAtomic
	OpAlternative
	OpObject
	OpNegated
	OpAny
	OpEnd
	OpNothing
	OpOptional
	OpAnyGreedy
	OpManyLazy
	OpFinish
)

var opNames = [...]string{
	OpRoot:        "OpRoot",
	OpGroup:       "OpGroup",
	OpAtomic:      "OpAtomic",
	OpAlternative: "OpAlternative",
	OpObject:      "OpObject",
	OpNegated:     "OpNegated",
	OpAny:         "OpAny",
	OpEnd:         "OpEnd",
	OpNothing:     "OpNothing",
	OpOptional:    "OpOptional",
	OpAnyGreedy:   "OpAnyGreedy",
	OpManyLazy:    "OpManyLazy",
	OpFinish:      "OpFinish",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// IsSequence reports whether the instruction runs its children in order.
func (o Op) IsSequence() bool {
	return o == OpRoot || o == OpGroup || o == OpAtomic
}

// IsConsuming reports whether the instruction tests a single object.
func (o Op) IsConsuming() bool {
	return o == OpObject || o == OpNegated || o == OpAny
}

// None marks a missing handle.
const None int32 = -1

// Instruction is one node of the program. Handles index Program.Instructions.
type Instruction struct {
	Kind    Op
	Index   int32
	Options []objects.Option
	// Name is set on named groups and their OpFinish instruction.
	Name string
	// Slot is the group slot of Name, or None.
	Slot int32

	Parent      int32
	FirstChild  int32
	NextSibling int32
	Children    []int32
	// NextIndex is one past the last descendant.
	NextIndex int32
	// InnerIndexes lists every descendant, in order.
	InnerIndexes []int32

	Straightforward bool
	LastAtomic      bool
	// Loop is set on instructions that may run their child again.
	Loop bool
	// Expectation indexes Program.Expectations, or None.
	Expectation int32
}

// Program is an immutable instruction arena. Index 0 is the root.
type Program struct {
	Instructions []Instruction
	// Expectations holds one frozen descriptor per consuming instruction.
	Expectations []objects.Expectation
	// GroupNames maps group slots to names, in order of first appearance.
	GroupNames []string
}

// Root returns the root instruction.
func (p *Program) Root() *Instruction {
	return &p.Instructions[0]
}

// Empty reports whether the pattern matches nothing but the empty prefix.
func (p *Program) Empty() bool {
	return len(p.Root().Children) == 0
}

// Head returns the name of the innermost named group enclosing i.
func (p *Program) Head(i int32) string {
	for j := p.Instructions[i].Parent; j != None; j = p.Instructions[j].Parent {
		in := &p.Instructions[j]
		if in.Kind == OpGroup && in.Name != "" {
			return in.Name
		}
	}
	return ""
}

// Backtrackable returns the instructions that may push a save-point.
func (p *Program) Backtrackable() []int32 {
	var out []int32
	for i := range p.Instructions {
		in := &p.Instructions[i]
		switch in.Kind {
		case OpAlternative, OpOptional, OpAnyGreedy, OpManyLazy:
			if !in.Straightforward {
				out = append(out, in.Index)
			}
		}
	}
	return out
}

// Expectation returns a copy of the descriptor recorded when i fails at the
// end of input.
func (p *Program) Expectation(i int32) objects.Expectation {
	e := p.Expectations[p.Instructions[i].Expectation]
	if e.Options != nil {
		e.Options = append([]objects.Option(nil), e.Options...)
	}
	return e
}

// Equal reports whether two programs have identical instructions.
func Equal(a, b *Program) bool {
	if len(a.Instructions) != len(b.Instructions) {
		return false
	}
	for i := range a.Instructions {
		if !equalInstruction(&a.Instructions[i], &b.Instructions[i]) {
			return false
		}
	}
	return true
}

func equalInstruction(a, b *Instruction) bool {
	if a.Kind != b.Kind || a.Index != b.Index || a.Name != b.Name || a.Slot != b.Slot ||
		a.Parent != b.Parent || a.FirstChild != b.FirstChild || a.NextSibling != b.NextSibling ||
		a.NextIndex != b.NextIndex || a.Straightforward != b.Straightforward ||
		a.LastAtomic != b.LastAtomic || a.Loop != b.Loop || a.Expectation != b.Expectation {
		return false
	}
	if len(a.Options) != len(b.Options) || len(a.Children) != len(b.Children) ||
		len(a.InnerIndexes) != len(b.InnerIndexes) {
		return false
	}
	for i := range a.Options {
		if a.Options[i] != b.Options[i] {
			return false
		}
	}
	for i := range a.Children {
		if a.Children[i] != b.Children[i] {
			return false
		}
	}
	for i := range a.InnerIndexes {
		if a.InnerIndexes[i] != b.InnerIndexes[i] {
			return false
		}
	}
	return true
}
