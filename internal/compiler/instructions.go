package compiler

import (
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/rangoo94/object-regexp/internal/codegen"
	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

// action is what a label does with its instruction, mirroring the
// interpreter's enter, complete and fail steps.
type action uint8

const (
	enter action = iota
	done
	fail
	// retry pops the newest live save-point.
	retry
	// resume dispatches on the popped save-point's step.
	resume
)

type target struct {
	act  action
	node int32
}

// machine builds the goto blocks of one Match function. Blocks are created
// on demand, starting from the root, so every emitted label is the target of
// some goto.
type machine struct {
	c      *Compiler
	prog   *program.Program
	lay    *layout
	blocks map[target][]jen.Code
	queued map[target]bool
	queue  []target
	// resumes maps save-point steps to the label they continue at.
	resumes map[int32]target
	usesLen bool
}

// generateMatchFunction generates the body of MatchGroups.
func (c *Compiler) generateMatchFunction() ([]jen.Code, error) {
	p := c.config.Program
	code := []jen.Code{
		jen.If(jen.Id(codegen.StartName).Op("<").Lit(0)).Block(
			jen.Panic(jen.Lit("objectregexp: negative start index")),
		),
	}

	if p.Empty() {
		c.logger.Log("Empty pattern, generating constant success")
		return append(code, jen.Return(
			jen.Op("&").Qual(objectsPkg, "Result").Values(jen.Dict{
				jen.Id("Finished"): jen.True(),
				jen.Id("Index"):    jen.Id(codegen.StartName),
				jen.Id("Groups"):   jen.Id(c.groupsType()).Values().Dot("Map").Call(),
			}),
			jen.Id(c.groupsType()).Values(),
		)), nil
	}

	m := &machine{
		c:       c,
		prog:    p,
		lay:     &c.layout,
		blocks:  map[target][]jen.Code{},
		queued:  map[target]bool{},
		resumes: map[int32]target{},
	}

	entry := m.resolve(target{act: enter, node: 0})
	m.want(entry)
	selector := target{act: resume, node: program.None}
	for {
		for len(m.queue) > 0 {
			t := m.queue[0]
			m.queue = m.queue[1:]
			if t == selector {
				// Needs every save-point step, so it is built last.
				continue
			}
			block, err := m.block(t)
			if err != nil {
				return nil, err
			}
			m.blocks[t] = block
		}
		// Resume labels are only reachable through StepSelect.
		if !m.queued[selector] {
			break
		}
		for _, to := range m.resumes {
			m.want(to)
		}
		if len(m.queue) == 0 {
			break
		}
	}
	if m.queued[selector] {
		m.blocks[selector] = m.stepSelect()
	}
	c.logger.Log("Generated %d labeled blocks, %d resume steps", len(m.blocks), len(m.resumes))

	code = append(code, m.prologue()...)
	code = append(code, jen.Goto().Id(m.label(entry)))
	for _, t := range m.order() {
		code = append(code, jen.Id(m.label(t)).Op(":"), jen.Block(m.blocks[t]...))
	}
	return code, nil
}

// prologue declares every variable before the first goto.
func (m *machine) prologue() []jen.Code {
	c := m.c
	var code []jen.Code
	if m.usesLen {
		code = append(code, jen.Id(codegen.InputLenName).Op(":=").Len(jen.Id(codegen.InputName)))
	}
	code = append(code,
		jen.Id(codegen.PositionName).Op(":=").Id(codegen.StartName),
		jen.Var().Id(codegen.GroupsName).Id(c.groupsType()),
		jen.Var().Id(codegen.ExpectedName).Index().Qual(objectsPkg, "Expectation"),
	)
	if m.lay.locals > 0 {
		code = append(code, jen.Var().Id(codegen.LocalsName).Index(jen.Lit(m.lay.locals)).Int())
	}
	if m.lay.saved > 0 {
		code = append(code, jen.Var().Id(codegen.SavedName).Index(jen.Lit(m.lay.saved)).Id(c.groupsType()))
	}
	if m.lay.backtracks {
		code = append(code, c.generatePooledStackInit()...)
		if _, ok := m.blocks[target{act: retry, node: program.None}]; ok {
			code = append(code, jen.Var().Id(codegen.FallbackVarName).Id(c.prefix()+"Fallback"))
		}
	}
	return code
}

func (m *machine) label(t target) string {
	switch t.act {
	case enter:
		return codegen.InstructionName(uint32(t.node))
	case done:
		return codegen.DoneName(uint32(t.node))
	case fail:
		return codegen.FailName(uint32(t.node))
	case retry:
		return codegen.TryFallbackName
	default:
		return codegen.StepSelectName
	}
}

// order sorts blocks by instruction, then action; TryFallback and
// StepSelect come last.
func (m *machine) order() []target {
	out := make([]target, 0, len(m.blocks))
	for t := range m.blocks {
		out = append(out, t)
	}
	key := func(t target) int {
		if t.act >= retry {
			return (len(m.prog.Instructions)+int(t.act))*4 + int(t.act)
		}
		return int(t.node)*4 + int(t.act)
	}
	sort.Slice(out, func(i, j int) bool {
		return key(out[i]) < key(out[j])
	})
	return out
}

func (m *machine) want(t target) {
	if m.queued[t] {
		return
	}
	m.queued[t] = true
	m.queue = append(m.queue, t)
}

// jump returns a goto to t, skipping labels that would only jump again.
func (m *machine) jump(act action, node int32) jen.Code {
	t := m.resolve(target{act: act, node: node})
	m.want(t)
	return jen.Goto().Id(m.label(t))
}

func (m *machine) resolve(t target) target {
	for {
		next, ok := m.alias(t)
		if !ok {
			return t
		}
		t = next
	}
}

// alias reports the label t can be replaced with when its block would be
// a single goto.
func (m *machine) alias(t target) (target, bool) {
	if t.act == retry || t.act == resume {
		return t, false
	}
	in := &m.prog.Instructions[t.node]

	switch t.act {
	case enter:
		switch in.Kind {
		case program.OpRoot:
			return target{act: enter, node: in.FirstChild}, true
		case program.OpGroup, program.OpAtomic:
			if in.Name != "" || m.lay.mark[in.Index] != program.None {
				break
			}
			if in.FirstChild == program.None {
				return target{act: done, node: in.Index}, true
			}
			return target{act: enter, node: in.FirstChild}, true
		case program.OpNothing:
			return target{act: done, node: in.Index}, true
		case program.OpManyLazy:
			if m.lay.start[in.Index] == program.None {
				return target{act: enter, node: in.FirstChild}, true
			}
		}

	case done:
		if in.Parent == program.None {
			break
		}
		parent := &m.prog.Instructions[in.Parent]
		up := target{act: done, node: parent.Index}
		switch parent.Kind {
		case program.OpRoot, program.OpGroup, program.OpAtomic:
			if in.NextSibling != program.None {
				return target{act: enter, node: in.NextSibling}, true
			}
			if m.lay.mark[parent.Index] == program.None {
				return up, true
			}
		case program.OpAlternative:
			if in.Index != parent.FirstChild || parent.Straightforward {
				return up, true
			}
		case program.OpOptional:
			return up, true
		case program.OpManyLazy:
			if parent.Straightforward {
				return up, true
			}
		}

	case fail:
		if in.Parent == program.None {
			return target{act: retry, node: program.None}, true
		}
		parent := &m.prog.Instructions[in.Parent]
		up := target{act: fail, node: parent.Index}
		switch parent.Kind {
		case program.OpRoot, program.OpGroup, program.OpAtomic, program.OpManyLazy:
			return up, true
		case program.OpAlternative:
			if in.Index != parent.FirstChild {
				return up, true
			}
		}
	}
	return t, false
}

func (m *machine) block(t target) ([]jen.Code, error) {
	if t.act == retry {
		return m.tryFallback(), nil
	}
	in := &m.prog.Instructions[t.node]
	var code []jen.Code
	switch t.act {
	case enter:
		code = m.enter(in)
	case done:
		code = m.done(in)
	case fail:
		code = m.fail(in)
	}
	if code == nil {
		return nil, fmt.Errorf("unexpected %v at instruction %d", in.Kind, in.Index)
	}
	return code, nil
}

func (m *machine) enter(in *program.Instruction) []jen.Code {
	switch in.Kind {
	case program.OpObject, program.OpNegated, program.OpAny:
		m.usesLen = true
		code := []jen.Code{
			jen.If(jen.Id(codegen.PositionName).Op(">=").Id(codegen.InputLenName)).Block(
				jen.Id(codegen.ExpectedName).Op("=").Append(
					jen.Id(codegen.ExpectedName),
					jen.Id(m.c.prefix()+"Expectation").Call(jen.Lit(int(in.Expectation))),
				),
				m.jump(fail, in.Index),
			),
		}
		switch in.Kind {
		case program.OpObject:
			code = append(code, jen.If(jen.Op("!").Parens(optionsCheck(in.Options))).Block(m.jump(fail, in.Index)))
		case program.OpNegated:
			code = append(code, jen.If(optionsCheck(in.Options)).Block(m.jump(fail, in.Index)))
		}
		return append(code, jen.Id(codegen.PositionName).Op("++"), m.jump(done, in.Index))

	case program.OpEnd:
		m.usesLen = true
		return []jen.Code{
			jen.If(jen.Id(codegen.PositionName).Op("<").Id(codegen.InputLenName)).Block(m.jump(fail, in.Index)),
			m.jump(done, in.Index),
		}

	case program.OpFinish:
		return []jen.Code{
			jen.Id(codegen.GroupsName).Dot(m.c.fields[in.Slot]).Op("=").Op("&").Qual(objectsPkg, "Span").Values(jen.Dict{
				jen.Id("From"): local(m.lay.start[in.Parent]),
				jen.Id("To"):   jen.Id(codegen.PositionName),
			}),
			m.jump(done, in.Index),
		}

	case program.OpGroup:
		return []jen.Code{
			local(m.lay.start[in.Index]).Op("=").Id(codegen.PositionName),
			m.jump(enter, in.FirstChild),
		}

	case program.OpAtomic:
		code := []jen.Code{
			local(m.lay.mark[in.Index]).Op("=").Len(jen.Id(codegen.StackName)),
		}
		if in.FirstChild == program.None {
			return append(code, m.jump(done, in.Index))
		}
		return append(code, m.jump(enter, in.FirstChild))

	case program.OpAlternative:
		code := m.open(in)
		return append(code, m.jump(enter, in.FirstChild))

	case program.OpOptional, program.OpAnyGreedy:
		code := m.open(in)
		if p := m.lay.point[in.Index]; p != program.None {
			code = append(code,
				local(p).Op("=").Len(jen.Id(codegen.StackName)),
				m.push(in.Index, jen.Id(codegen.PositionName), jen.Id(codegen.GroupsName), target{act: done, node: in.Index}),
			)
		}
		return append(code, m.jump(enter, in.FirstChild))

	case program.OpManyLazy:
		return []jen.Code{
			local(m.lay.start[in.Index]).Op("=").Id(codegen.PositionName),
			m.jump(enter, in.FirstChild),
		}
	}
	return nil
}

// open records where a construct started, for restoring on failure.
func (m *machine) open(in *program.Instruction) []jen.Code {
	code := []jen.Code{
		local(m.lay.start[in.Index]).Op("=").Id(codegen.PositionName),
	}
	if g := m.lay.group[in.Index]; g != program.None {
		code = append(code, saved(g).Op("=").Id(codegen.GroupsName))
	}
	return code
}

// restore rewinds position and groups to where in started.
func (m *machine) restore(in *program.Instruction) []jen.Code {
	code := []jen.Code{
		jen.Id(codegen.PositionName).Op("=").Add(local(m.lay.start[in.Index])),
	}
	if g := m.lay.group[in.Index]; g != program.None {
		code = append(code, jen.Id(codegen.GroupsName).Op("=").Add(saved(g)))
	}
	return code
}

func (m *machine) done(child *program.Instruction) []jen.Code {
	if child.Parent == program.None {
		return []jen.Code{m.success()}
	}
	parent := &m.prog.Instructions[child.Parent]

	switch parent.Kind {
	case program.OpAtomic:
		return []jen.Code{
			jen.Id(codegen.StackName).Op("=").Id(codegen.StackName).Index(jen.Empty(), local(m.lay.mark[parent.Index])),
			m.jump(done, parent.Index),
		}

	case program.OpAlternative:
		groups := jen.Id(codegen.GroupsName)
		if g := m.lay.group[parent.Index]; g != program.None {
			groups = saved(g)
		}
		return []jen.Code{
			m.push(parent.Index, local(m.lay.start[parent.Index]), groups, target{act: enter, node: parent.Children[1]}),
			m.jump(done, parent.Index),
		}

	case program.OpAnyGreedy:
		// An iteration that consumed nothing ends the loop.
		empty := []jen.Code{}
		if p := m.lay.point[parent.Index]; p != program.None {
			empty = append(empty, ignore(p))
		}
		empty = append(empty, m.jump(done, parent.Index))

		code := []jen.Code{
			jen.If(jen.Id(codegen.PositionName).Op("==").Add(local(m.lay.start[parent.Index]))).Block(empty...),
		}
		code = append(code, m.open(parent)...)
		if p := m.lay.point[parent.Index]; p != program.None {
			code = append(code,
				local(p).Op("=").Len(jen.Id(codegen.StackName)),
				m.push(parent.Index, jen.Id(codegen.PositionName), jen.Id(codegen.GroupsName), target{act: done, node: parent.Index}),
			)
		}
		return append(code, m.jump(enter, parent.FirstChild))

	case program.OpManyLazy:
		return []jen.Code{
			jen.If(jen.Id(codegen.PositionName).Op("!=").Add(local(m.lay.start[parent.Index]))).Block(
				m.push(parent.Index, jen.Id(codegen.PositionName), jen.Id(codegen.GroupsName), target{act: enter, node: parent.Index}),
			),
			m.jump(done, parent.Index),
		}
	}
	return nil
}

func (m *machine) fail(child *program.Instruction) []jen.Code {
	parent := &m.prog.Instructions[child.Parent]

	switch parent.Kind {
	case program.OpAlternative:
		code := m.restore(parent)
		return append(code, m.jump(enter, parent.Children[1]))

	case program.OpOptional, program.OpAnyGreedy:
		code := m.restore(parent)
		if p := m.lay.point[parent.Index]; p != program.None {
			code = append(code, ignore(p))
		}
		return append(code, m.jump(done, parent.Index))
	}
	return nil
}

func (m *machine) success() jen.Code {
	return jen.Return(
		jen.Op("&").Qual(objectsPkg, "Result").Values(jen.Dict{
			jen.Id("Finished"):     jen.True(),
			jen.Id("Index"):        jen.Id(codegen.StartName),
			jen.Id("Length"):       jen.Id(codegen.PositionName).Op("-").Id(codegen.StartName),
			jen.Id("Expectations"): jen.Id(codegen.ExpectedName),
			jen.Id("Groups"):       jen.Id(codegen.GroupsName).Dot("Map").Call(),
		}),
		jen.Id(codegen.GroupsName),
	)
}

func (m *machine) failure() []jen.Code {
	return []jen.Code{
		jen.If(jen.Len(jen.Id(codegen.ExpectedName)).Op("==").Lit(0)).Block(
			jen.Return(jen.Nil(), jen.Id(m.c.groupsType()).Values()),
		),
		jen.Return(
			jen.Op("&").Qual(objectsPkg, "Result").Values(jen.Dict{
				jen.Id("Expectations"): jen.Id(codegen.ExpectedName),
			}),
			jen.Id(m.c.groupsType()).Values(),
		),
	}
}

// optionsCheck returns a condition that holds when the current object is
// accepted by one of the options.
func optionsCheck(options []objects.Option) *jen.Statement {
	if len(options) == 0 {
		return jen.False()
	}
	var cond *jen.Statement
	for _, o := range options {
		check := current().Dot("Type").Op("==").Lit(o.Type)
		if o.HasValue {
			check = jen.Parens(check.Op("&&").Qual(objectsPkg, "ValueEquals").Call(current().Dot("Value"), jen.Lit(o.Value)))
		}
		if cond == nil {
			cond = check
		} else {
			cond = cond.Op("||").Add(check)
		}
	}
	return cond
}

func current() *jen.Statement {
	return jen.Id(codegen.InputName).Index(jen.Id(codegen.PositionName))
}

func local(slot int32) *jen.Statement {
	return jen.Id(codegen.LocalsName).Index(jen.Lit(int(slot)))
}

func saved(slot int32) *jen.Statement {
	return jen.Id(codegen.SavedName).Index(jen.Lit(int(slot)))
}
