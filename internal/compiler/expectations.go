package compiler

import (
	"github.com/dave/jennifer/jen"

	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

// generateExpectations generates the frozen expectation descriptors and the
// accessor that copies them into results.
func (c *Compiler) generateExpectations() {
	exps := c.config.Program.Expectations
	if len(exps) == 0 {
		return
	}
	name := c.prefix() + "Expectations"

	c.file.Var().Id(name).Op("=").Index(jen.Op("...")).Qual(objectsPkg, "Expectation").ValuesFunc(func(g *jen.Group) {
		for _, e := range exps {
			g.Line().Add(expectationCode(e))
		}
		g.Line()
	})
	c.file.Line()

	c.file.Func().Id(c.prefix()+"Expectation").Params(jen.Id("i").Int()).Qual(objectsPkg, "Expectation").Block(
		jen.Id("e").Op(":=").Id(name).Index(jen.Id("i")),
		jen.If(jen.Id("e").Dot("Options").Op("!=").Nil()).Block(
			jen.Id("e").Dot("Options").Op("=").Append(jen.Index().Qual(objectsPkg, "Option").Parens(jen.Nil()), jen.Id("e").Dot("Options").Op("...")),
		),
		jen.Return(jen.Id("e")),
	)
	c.file.Line()
}

func expectationCode(e objects.Expectation) jen.Code {
	d := jen.Dict{
		jen.Id("Kind"): jen.Qual(objectsPkg, kindName(e.Kind)),
		jen.Id("Step"): jen.Lit(e.Step),
	}
	if e.Head != "" {
		d[jen.Id("Head")] = jen.Lit(e.Head)
	}
	if len(e.Options) > 0 {
		d[jen.Id("Options")] = program.OptionsCode(e.Options)
	}
	return jen.Values(d)
}

func kindName(k objects.ExpectationKind) string {
	switch k {
	case objects.NotOneOf:
		return "NotOneOf"
	case objects.Any:
		return "Any"
	default:
		return "OneOf"
	}
}
