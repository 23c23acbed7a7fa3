package compiler

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/rangoo94/object-regexp/internal/vm"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

// TestInput is an object sequence replayed by the generated test file.
type TestInput struct {
	Name    string
	Objects []objects.Object
	Start   int
}

// TestFilePath returns where the test file for output is written.
func TestFilePath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + "_test.go"
}

// generateTestFile writes a test file that checks the generated matcher
// against results recorded from the interpreter.
func (c *Compiler) generateTestFile() error {
	src, err := c.TestSource()
	if err != nil {
		return err
	}
	return os.WriteFile(TestFilePath(c.config.OutputFile), src, 0644)
}

// TestSource renders the generated test file.
func (c *Compiler) TestSource() ([]byte, error) {
	machine := vm.New(c.config.Program)
	name := c.config.Name
	casesName := c.prefix() + "TestCases"

	f := jen.NewFile(c.config.Package)
	f.HeaderComment(fmt.Sprintf("Code generated by objectregexp for pattern %q. DO NOT EDIT.", c.config.Pattern))

	f.Var().Id(casesName).Op("=").Index().Struct(
		jen.Id("name").String(),
		jen.Id("input").Index().Qual(objectsPkg, "Object"),
		jen.Id("start").Int(),
		jen.Id("want").Op("*").Qual(objectsPkg, "Result"),
	).ValuesFunc(func(g *jen.Group) {
		for i, in := range c.config.TestInputs {
			caseName := in.Name
			if caseName == "" {
				caseName = fmt.Sprintf("input_%d", i)
			}
			want := machine.Match(in.Objects, in.Start)
			g.Line().Values(jen.Dict{
				jen.Id("name"):  jen.Lit(caseName),
				jen.Id("input"): objectsCode(in.Objects),
				jen.Id("start"): jen.Lit(in.Start),
				jen.Id("want"):  resultCode(want),
			})
		}
		g.Line()
	})
	f.Line()

	f.Func().Id(fmt.Sprintf("Test%sMatch", name)).Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("tt")).Op(":=").Range().Id(casesName)).Block(
			jen.Id("t").Dot("Run").Call(jen.Id("tt").Dot("name"), jen.Func().Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
				jen.Id("got").Op(":=").Id("Compiled"+name).Dot("Match").Call(jen.Id("tt").Dot("input"), jen.Id("tt").Dot("start")),
				jen.If(jen.Op("!").Qual("reflect", "DeepEqual").Call(jen.Id("got"), jen.Id("tt").Dot("want"))).Block(
					jen.Id("t").Dot("Errorf").Call(jen.Lit("Match() = %+v, want %+v"), jen.Id("got"), jen.Id("tt").Dot("want")),
				),
			)),
		),
	)
	f.Line()

	f.Func().Id(fmt.Sprintf("Benchmark%sMatch", name)).Params(jen.Id("b").Op("*").Qual("testing", "B")).Block(
		jen.Id("b").Dot("ReportAllocs").Call(),
		jen.For(jen.Id("i").Op(":=").Lit(0), jen.Id("i").Op("<").Id("b").Dot("N"), jen.Id("i").Op("++")).Block(
			jen.For(jen.List(jen.Id("_"), jen.Id("tt")).Op(":=").Range().Id(casesName)).Block(
				jen.Id("Compiled"+name).Dot("Match").Call(jen.Id("tt").Dot("input"), jen.Id("tt").Dot("start")),
			),
		),
	)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render test file: %w", err)
	}
	return format.Source(buf.Bytes())
}

func objectsCode(input []objects.Object) jen.Code {
	return jen.Index().Qual(objectsPkg, "Object").ValuesFunc(func(g *jen.Group) {
		for _, o := range input {
			d := jen.Dict{jen.Id("Type"): jen.Lit(o.Type)}
			if o.Value != nil {
				d[jen.Id("Value")] = valueCode(o.Value)
			}
			g.Values(d)
		}
	})
}

func valueCode(v any) jen.Code {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return jen.Lit(v)
	}
	return jen.Lit(fmt.Sprint(v))
}

func resultCode(r *objects.Result) jen.Code {
	if r == nil {
		return jen.Nil()
	}
	d := jen.Dict{}
	if r.Finished {
		d[jen.Id("Finished")] = jen.True()
		d[jen.Id("Index")] = jen.Lit(r.Index)
		d[jen.Id("Length")] = jen.Lit(r.Length)
	}
	if r.Expectations != nil {
		d[jen.Id("Expectations")] = jen.Index().Qual(objectsPkg, "Expectation").ValuesFunc(func(g *jen.Group) {
			for _, e := range r.Expectations {
				g.Add(expectationCode(e))
			}
		})
	}
	if r.Groups != nil {
		d[jen.Id("Groups")] = jen.Qual(objectsPkg, "Groups").Values(jen.DictFunc(func(d jen.Dict) {
			for name, span := range r.Groups {
				d[jen.Lit(name)] = jen.Values(jen.Dict{
					jen.Id("From"): jen.Lit(span.From),
					jen.Id("To"):   jen.Lit(span.To),
				})
			}
		}))
	}
	return jen.Op("&").Qual(objectsPkg, "Result").Values(d)
}
