package compiler

import (
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/rangoo94/object-regexp/internal/codegen"
	"github.com/rangoo94/object-regexp/internal/program"
)

// push appends a save-point that continues at to. The step identifies the
// construct that pushed it; every construct resumes at one place only.
func (m *machine) push(step int32, index, groups jen.Code, to target) jen.Code {
	m.resumes[step] = m.resolve(to)

	d := jen.Dict{
		jen.Id("step"):  jen.Lit(int(step)),
		jen.Id("index"): index,
	}
	if len(m.c.fields) > 0 {
		d[jen.Id("groups")] = groups
	}
	if m.lay.locals > 0 {
		d[jen.Id("locals")] = jen.Id(codegen.LocalsName)
	}
	if m.lay.saved > 0 {
		d[jen.Id("saved")] = jen.Id(codegen.SavedName)
	}
	return jen.Id(codegen.StackName).Op("=").Append(
		jen.Id(codegen.StackName),
		jen.Id(m.c.prefix()+"Fallback").Values(d),
	)
}

// ignore marks the save-point whose stack index is held in slot so that
// TryFallback skips it.
func ignore(slot int32) jen.Code {
	return jen.Id(codegen.StackName).Index(local(slot)).Dot("ignored").Op("=").True()
}

// tryFallback generates the TryFallback block: drop ignored save-points,
// then restore the newest one or give up.
func (m *machine) tryFallback() []jen.Code {
	if !m.lay.backtracks {
		return m.failure()
	}

	last := func() *jen.Statement {
		return jen.Len(jen.Id(codegen.StackName)).Op("-").Lit(1)
	}

	code := []jen.Code{
		jen.For(
			jen.Len(jen.Id(codegen.StackName)).Op(">").Lit(0).Op("&&").
				Id(codegen.StackName).Index(last()).Dot("ignored"),
		).Block(
			jen.Id(codegen.StackName).Op("=").Id(codegen.StackName).Index(jen.Empty(), last()),
		),
		jen.If(jen.Len(jen.Id(codegen.StackName)).Op("==").Lit(0)).Block(m.failure()...),
		jen.Id(codegen.FallbackVarName).Op("=").Id(codegen.StackName).Index(last()),
		jen.Id(codegen.StackName).Op("=").Id(codegen.StackName).Index(jen.Empty(), last()),
		jen.Id(codegen.PositionName).Op("=").Id(codegen.FallbackVarName).Dot("index"),
	}
	if len(m.c.fields) > 0 {
		code = append(code, jen.Id(codegen.GroupsName).Op("=").Id(codegen.FallbackVarName).Dot("groups"))
	}
	if m.lay.locals > 0 {
		code = append(code, jen.Id(codegen.LocalsName).Op("=").Id(codegen.FallbackVarName).Dot("locals"))
	}
	if m.lay.saved > 0 {
		code = append(code, jen.Id(codegen.SavedName).Op("=").Id(codegen.FallbackVarName).Dot("saved"))
	}
	m.want(target{act: resume, node: program.None})
	return append(code, jen.Goto().Id(codegen.StepSelectName))
}

// stepSelect generates the dispatch from a restored save-point to the label
// it continues at.
func (m *machine) stepSelect() []jen.Code {
	steps := make([]int32, 0, len(m.resumes))
	for step := range m.resumes {
		steps = append(steps, step)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i] < steps[j] })

	switch len(steps) {
	case 0:
		return []jen.Code{jen.Panic(jen.Lit("objectregexp: no save-point to resume"))}
	case 1:
		return []jen.Code{jen.Goto().Id(m.label(m.resumes[steps[0]]))}
	}

	cases := []jen.Code{}
	for i, step := range steps {
		to := jen.Goto().Id(m.label(m.resumes[step]))
		if i == len(steps)-1 {
			cases = append(cases, jen.Default().Block(to))
			continue
		}
		cases = append(cases, jen.Case(jen.Lit(int(step))).Block(to))
	}
	return []jen.Code{
		jen.Switch(jen.Id(codegen.FallbackVarName).Dot("step")).Block(cases...),
	}
}
