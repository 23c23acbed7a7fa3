package compiler

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/rangoo94/object-regexp/internal/codegen"
)

// groupFields maps group slots to exported struct field names. Names that
// collide after conversion, or with the Map method, get a numeric suffix.
func groupFields(names []string) []string {
	taken := map[string]bool{"Map": true}
	fields := make([]string, len(names))
	for i, name := range names {
		field := codegen.ExportedName(name)
		for n := 2; taken[field]; n++ {
			field = fmt.Sprintf("%s%d", codegen.ExportedName(name), n)
		}
		taken[field] = true
		fields[i] = field
	}
	return fields
}

// generateGroupsStruct generates the typed groups struct and its Map method.
func (c *Compiler) generateGroupsStruct() {
	names := c.config.Program.GroupNames
	structName := c.groupsType()

	fields := make([]jen.Code, len(names))
	for i, name := range names {
		fields[i] = jen.Id(c.fields[i]).Op("*").Qual(objectsPkg, "Span").Comment(fmt.Sprintf("(?<%s>...)", name))
	}

	c.file.Comment(fmt.Sprintf("%s holds the spans captured by named groups; unmatched groups are nil.", structName))
	c.file.Type().Id(structName).Struct(fields...)
	c.file.Line()

	body := []jen.Code{
		jen.Id("m").Op(":=").Qual(objectsPkg, "Groups").Values(),
	}
	for i, name := range names {
		body = append(body,
			jen.If(jen.Id("g").Dot(c.fields[i]).Op("!=").Nil()).Block(
				jen.Id("m").Index(jen.Lit(name)).Op("=").Op("*").Id("g").Dot(c.fields[i]),
			),
		)
	}
	body = append(body, jen.Return(jen.Id("m")))

	c.file.Comment("Map returns the captured groups keyed by name.")
	c.file.Func().Params(jen.Id("g").Id(structName)).Id("Map").Params().Qual(objectsPkg, "Groups").Block(body...)
	c.file.Line()
}
