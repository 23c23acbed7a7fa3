package program

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/rangoo94/object-regexp/pkg/objects"
)

const (
	programPkg = "github.com/rangoo94/object-regexp/internal/program"
	objectsPkg = "github.com/rangoo94/object-regexp/pkg/objects"
)

// EmitLiteral renders instructions as a []program.Instruction composite
// literal.
func EmitLiteral(instructions []Instruction) string {
	return LiteralCode(instructions).GoString()
}

// LiteralCode returns the jennifer statement for the instructions literal.
func LiteralCode(instructions []Instruction) *jen.Statement {
	items := make([]jen.Code, len(instructions))
	for i := range instructions {
		items[i] = instructionCode(&instructions[i])
	}
	return jen.Index().Qual(programPkg, "Instruction").ValuesFunc(func(g *jen.Group) {
		for _, item := range items {
			g.Line().Add(item)
		}
		g.Line()
	})
}

func instructionCode(in *Instruction) jen.Code {
	d := jen.Dict{
		jen.Id("Kind"):        jen.Qual(programPkg, in.Kind.String()),
		jen.Id("Index"):       jen.Lit(int(in.Index)),
		jen.Id("Slot"):        jen.Lit(int(in.Slot)),
		jen.Id("Parent"):      jen.Lit(int(in.Parent)),
		jen.Id("FirstChild"):  jen.Lit(int(in.FirstChild)),
		jen.Id("NextSibling"): jen.Lit(int(in.NextSibling)),
		jen.Id("NextIndex"):   jen.Lit(int(in.NextIndex)),
		jen.Id("Expectation"): jen.Lit(int(in.Expectation)),
	}
	if len(in.Options) > 0 {
		d[jen.Id("Options")] = OptionsCode(in.Options)
	}
	if in.Name != "" {
		d[jen.Id("Name")] = jen.Lit(in.Name)
	}
	if len(in.Children) > 0 {
		d[jen.Id("Children")] = indexesCode(in.Children)
	}
	if len(in.InnerIndexes) > 0 {
		d[jen.Id("InnerIndexes")] = indexesCode(in.InnerIndexes)
	}
	if in.Straightforward {
		d[jen.Id("Straightforward")] = jen.True()
	}
	if in.LastAtomic {
		d[jen.Id("LastAtomic")] = jen.True()
	}
	if in.Loop {
		d[jen.Id("Loop")] = jen.True()
	}
	return jen.Values(d)
}

// OptionsCode renders a []objects.Option literal.
func OptionsCode(options []objects.Option) *jen.Statement {
	return jen.Index().Qual(objectsPkg, "Option").ValuesFunc(func(g *jen.Group) {
		for _, o := range options {
			d := jen.Dict{jen.Id("Type"): jen.Lit(o.Type)}
			if o.HasValue {
				d[jen.Id("Value")] = jen.Lit(o.Value)
				d[jen.Id("HasValue")] = jen.True()
			}
			g.Values(d)
		}
	})
}

func indexesCode(indexes []int32) *jen.Statement {
	return jen.Index().Int32().ValuesFunc(func(g *jen.Group) {
		for _, i := range indexes {
			g.Lit(int(i))
		}
	})
}

// EvalLiteral parses a literal produced by EmitLiteral.
func EvalLiteral(src string) ([]Instruction, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, err
	}
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected composite literal, got %T", expr)
	}

	instructions := make([]Instruction, len(lit.Elts))
	for i, elt := range lit.Elts {
		fields, ok := elt.(*ast.CompositeLit)
		if !ok {
			return nil, fmt.Errorf("instruction %d: expected composite literal, got %T", i, elt)
		}
		if err := evalInstruction(&instructions[i], fields); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return instructions, nil
}

func evalInstruction(in *Instruction, lit *ast.CompositeLit) error {
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return fmt.Errorf("expected key: value, got %T", elt)
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			return fmt.Errorf("expected field name, got %T", kv.Key)
		}

		var err error
		switch key.Name {
		case "Kind":
			in.Kind, err = evalOp(kv.Value)
		case "Index":
			in.Index, err = evalInt(kv.Value)
		case "Slot":
			in.Slot, err = evalInt(kv.Value)
		case "Parent":
			in.Parent, err = evalInt(kv.Value)
		case "FirstChild":
			in.FirstChild, err = evalInt(kv.Value)
		case "NextSibling":
			in.NextSibling, err = evalInt(kv.Value)
		case "NextIndex":
			in.NextIndex, err = evalInt(kv.Value)
		case "Expectation":
			in.Expectation, err = evalInt(kv.Value)
		case "Name":
			in.Name, err = evalString(kv.Value)
		case "Options":
			in.Options, err = evalOptions(kv.Value)
		case "Children":
			in.Children, err = evalIndexes(kv.Value)
		case "InnerIndexes":
			in.InnerIndexes, err = evalIndexes(kv.Value)
		case "Straightforward":
			in.Straightforward, err = evalBool(kv.Value)
		case "LastAtomic":
			in.LastAtomic, err = evalBool(kv.Value)
		case "Loop":
			in.Loop, err = evalBool(kv.Value)
		default:
			err = fmt.Errorf("unknown field")
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key.Name, err)
		}
	}
	return nil
}

func evalOp(expr ast.Expr) (Op, error) {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return 0, fmt.Errorf("expected program.Op, got %T", expr)
	}
	for op, name := range opNames {
		if name == sel.Sel.Name {
			return Op(op), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", sel.Sel.Name)
}

func evalInt(expr ast.Expr) (int32, error) {
	sign := int64(1)
	if u, ok := expr.(*ast.UnaryExpr); ok && u.Op == token.SUB {
		sign = -1
		expr = u.X
	}
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, fmt.Errorf("expected integer, got %T", expr)
	}
	v, err := strconv.ParseInt(lit.Value, 0, 32)
	if err != nil {
		return 0, err
	}
	return int32(sign * v), nil
}

func evalString(expr ast.Expr) (string, error) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", fmt.Errorf("expected string, got %T", expr)
	}
	return strconv.Unquote(lit.Value)
}

func evalBool(expr ast.Expr) (bool, error) {
	id, ok := expr.(*ast.Ident)
	if !ok || (id.Name != "true" && id.Name != "false") {
		return false, fmt.Errorf("expected boolean, got %T", expr)
	}
	return id.Name == "true", nil
}

func evalIndexes(expr ast.Expr) ([]int32, error) {
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected []int32, got %T", expr)
	}
	out := make([]int32, len(lit.Elts))
	for i, elt := range lit.Elts {
		v, err := evalInt(elt)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalOptions(expr ast.Expr) ([]objects.Option, error) {
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected []objects.Option, got %T", expr)
	}
	out := make([]objects.Option, len(lit.Elts))
	for i, elt := range lit.Elts {
		fields, ok := elt.(*ast.CompositeLit)
		if !ok {
			return nil, fmt.Errorf("option %d: expected composite literal, got %T", i, elt)
		}
		for _, f := range fields.Elts {
			kv, ok := f.(*ast.KeyValueExpr)
			if !ok {
				return nil, fmt.Errorf("option %d: expected key: value", i)
			}
			key, ok := kv.Key.(*ast.Ident)
			if !ok {
				return nil, fmt.Errorf("option %d: expected field name", i)
			}
			var err error
			switch key.Name {
			case "Type":
				out[i].Type, err = evalString(kv.Value)
			case "Value":
				out[i].Value, err = evalString(kv.Value)
			case "HasValue":
				out[i].HasValue, err = evalBool(kv.Value)
			}
			if err != nil {
				return nil, fmt.Errorf("option %d: %w", i, err)
			}
		}
	}
	return out, nil
}
