package compiler

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/rangoo94/object-regexp/internal/codegen"
)

func (c *Compiler) stackPoolName() string {
	return fmt.Sprintf("%sStackPool", c.prefix())
}

// generateStackPool generates a sync.Pool for save-point stack reuse.
func (c *Compiler) generateStackPool() {
	c.file.Var().Id(c.stackPoolName()).Op("=").Qual("sync", "Pool").Values(jen.Dict{
		jen.Id("New"): jen.Func().Params().Interface().Block(
			jen.Id("stack").Op(":=").Make(jen.Index().Id(c.prefix()+"Fallback"), jen.Lit(0), jen.Lit(32)),
			jen.Return(jen.Op("&").Id("stack")),
		),
	})
	c.file.Line()
}

// generatePooledStackInit generates code to get a stack from the pool.
func (c *Compiler) generatePooledStackInit() []jen.Code {
	poolName := c.stackPoolName()

	return []jen.Code{
		// Get stack from pool
		jen.Id("stackPtr").Op(":=").Id(poolName).Dot("Get").Call().Assert(jen.Op("*").Index().Id(c.prefix() + "Fallback")),
		jen.Id(codegen.StackName).Op(":=").Parens(jen.Op("*").Id("stackPtr")).Index(jen.Empty(), jen.Lit(0)),
		// Defer return to pool
		jen.Defer().Func().Params().Block(
			// Drop group spans held by old entries
			jen.Id("clear").Call(jen.Id(codegen.StackName).Index(jen.Empty(), jen.Cap(jen.Id(codegen.StackName)))),
			jen.Op("*").Id("stackPtr").Op("=").Id(codegen.StackName).Index(jen.Empty(), jen.Lit(0)),
			jen.Id(poolName).Dot("Put").Call(jen.Id("stackPtr")),
		).Call(),
	}
}

// generateFallbackStruct generates the save-point type stored on the stack.
func (c *Compiler) generateFallbackStruct() {
	fields := []jen.Code{
		jen.Id("step").Int(),
		jen.Id("index").Int(),
	}
	if len(c.fields) > 0 {
		fields = append(fields, jen.Id("groups").Id(c.groupsType()))
	}
	if c.layout.locals > 0 {
		fields = append(fields, jen.Id("locals").Index(jen.Lit(c.layout.locals)).Int())
	}
	if c.layout.saved > 0 {
		fields = append(fields, jen.Id("saved").Index(jen.Lit(c.layout.saved)).Id(c.groupsType()))
	}
	fields = append(fields, jen.Id("ignored").Bool())

	c.file.Type().Id(c.prefix() + "Fallback").Struct(fields...)
	c.file.Line()
}
