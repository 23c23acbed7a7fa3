// Package compiler generates Go matchers from compiled object patterns.
package compiler

import (
	"bytes"
	"fmt"
	"go/format"
	"os"

	"github.com/dave/jennifer/jen"

	"github.com/rangoo94/object-regexp/internal/codegen"
	"github.com/rangoo94/object-regexp/internal/program"
)

const objectsPkg = "github.com/rangoo94/object-regexp/pkg/objects"

// Config holds the configuration for code generation.
type Config struct {
	Pattern          string
	Name             string
	OutputFile       string
	Package          string
	Program          *program.Program
	GenerateTestFile bool        // Generate test file with tests and benchmarks
	TestInputs       []TestInput // Inputs replayed by the generated test file
	Verbose          bool        // Enable verbose logging of analysis decisions
}

// Compiler generates Go code for one program.
type Compiler struct {
	config Config
	file   *jen.File
	logger *Logger
	fields []string // Groups struct field per group slot
	layout layout   // Per-instruction local slots
}

// New creates a new compiler instance.
func New(config Config) *Compiler {
	compiler := &Compiler{
		config: config,
		file:   jen.NewFile(config.Package),
		logger: NewLogger(config.Verbose),
	}

	if config.Program != nil {
		compiler.fields = groupFields(config.Program.GroupNames)
		compiler.layout = newLayout(config.Program)
	}

	compiler.analyzeAndLog()

	return compiler
}

// Logger returns the compiler's verbose logger.
func (c *Compiler) Logger() *Logger {
	return c.logger
}

func (c *Compiler) analyzeAndLog() {
	c.logger.Section("Pattern Analysis")
	c.logger.Log("Pattern: %s", c.config.Pattern)

	p := c.config.Program
	if p == nil {
		return
	}

	stats := programStats(p)
	c.logger.Log("Instructions: %d", stats.Instructions)
	c.logger.Log("Named groups: %d", len(p.GroupNames))
	c.logger.Log("Expectations: %d", len(p.Expectations))

	c.logger.Section("Engine Selection")
	switch {
	case p.Empty():
		c.logger.Log("Match engine: constant success (empty pattern)")
	case stats.BacktrackingPoints == 0:
		c.logger.Log("Match engine: straightforward state machine (no save-points)")
	default:
		c.logger.Log("Match engine: backtracking state machine with %d save-point sites", stats.BacktrackingPoints)
	}
	c.logger.Log("Straightforward constructs: %d", stats.Straightforward)
	c.logger.Log("Local slots: %d, saved group slots: %d", c.layout.locals, c.layout.saved)
}

// SetOutputFile sets the output file path.
func (c *Compiler) SetOutputFile(path string) {
	c.config.OutputFile = path
}

// method returns a jen.Statement for declaring a method on the generated struct.
func (c *Compiler) method(name string) *jen.Statement {
	return c.file.Func().
		Params(jen.Id(c.config.Name)).
		Id(name)
}

// prefix is the lower-case name used for unexported generated identifiers.
func (c *Compiler) prefix() string {
	return codegen.LowerFirst(c.config.Name)
}

func (c *Compiler) groupsType() string {
	return c.config.Name + "Groups"
}

// Source renders the generated file, formatted with go/format.
func (c *Compiler) Source() ([]byte, error) {
	if c.config.Program == nil {
		return nil, fmt.Errorf("program is required")
	}

	c.file = jen.NewFile(c.config.Package)
	c.file.HeaderComment(fmt.Sprintf("Code generated by objectregexp for pattern %q. DO NOT EDIT.", c.config.Pattern))

	if c.layout.backtracks {
		c.generateStackPool()
	}

	// Generate the main struct type
	c.file.Type().Id(c.config.Name).Struct()
	c.file.Line()

	// Generate convenience variable for direct usage
	c.file.Var().Id(fmt.Sprintf("Compiled%s", c.config.Name)).Op("=").Id(c.config.Name).Values()
	c.file.Line()

	c.generateGroupsStruct()
	c.generateExpectations()
	if c.layout.backtracks {
		c.generateFallbackStruct()
	}

	c.method("Pattern").Params().String().Block(
		jen.Return(jen.Lit(c.config.Pattern)),
	)
	c.file.Line()

	c.file.Comment("Match tests whether input, starting at startIndex, begins with a match.")
	c.method("Match").
		Params(jen.Id(codegen.InputName).Index().Qual(objectsPkg, "Object"), jen.Id(codegen.StartName).Int()).
		Op("*").Qual(objectsPkg, "Result").
		Block(
			jen.List(jen.Id("r"), jen.Id("_")).Op(":=").Id(c.config.Name).Values().Dot("MatchGroups").Call(
				jen.Id(codegen.InputName), jen.Id(codegen.StartName),
			),
			jen.Return(jen.Id("r")),
		)
	c.file.Line()

	body, err := c.generateMatchFunction()
	if err != nil {
		return nil, fmt.Errorf("failed to generate match function: %w", err)
	}
	c.file.Comment("MatchGroups is Match that also returns the typed group spans.")
	c.method("MatchGroups").
		Params(jen.Id(codegen.InputName).Index().Qual(objectsPkg, "Object"), jen.Id(codegen.StartName).Int()).
		Params(jen.Op("*").Qual(objectsPkg, "Result"), jen.Id(c.groupsType())).
		Block(body...)

	var buf bytes.Buffer
	if err := c.file.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render file: %w", err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format file: %w", err)
	}
	return formatted, nil
}

// Generate generates the Go code and writes it to the output file.
func (c *Compiler) Generate() error {
	src, err := c.Source()
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.config.OutputFile, src, 0644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	// Generate test file if requested
	if c.config.GenerateTestFile {
		if err := c.generateTestFile(); err != nil {
			return fmt.Errorf("failed to generate test file: %w", err)
		}
	}

	return nil
}
