package objectregexp

import (
	"fmt"
	"go/token"

	"github.com/rangoo94/object-regexp/internal/compiler"
	"github.com/rangoo94/object-regexp/internal/macro"
	"github.com/rangoo94/object-regexp/internal/optimizer"
	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/internal/syntax"
)

// TestInput is an input sequence replayed by the generated test file.
type TestInput = compiler.TestInput

// Options configures code generation.
type Options struct {
	// Pattern is the object pattern to compile. An empty pattern matches
	// the empty prefix of every input.
	Pattern string

	// Name is the generated type name (e.g., "Declaration" generates
	// "Declaration", "DeclarationGroups" and "CompiledDeclaration")
	Name string

	// OutputFile is the path where generated code will be written
	OutputFile string

	// Package is the Go package name for the generated code
	Package string

	// Macros are expanded, in order, before the pattern is parsed
	Macros []MacroRule

	// GenerateTestFile generates a test file replaying TestInputs (default: true if TestInputs provided)
	GenerateTestFile bool

	// TestInputs are matched by the interpreter and the recorded results become the generated test cases
	TestInputs []TestInput

	// Verbose logs analysis decisions to stderr
	Verbose bool
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !token.IsIdentifier(o.Name) || !token.IsExported(o.Name) {
		return fmt.Errorf("name %q is not an exported Go identifier", o.Name)
	}
	if o.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	if !token.IsIdentifier(o.Package) {
		return fmt.Errorf("package %q is not a Go identifier", o.Package)
	}
	for i, r := range o.Macros {
		if r.From == "" || r.To == "" {
			return fmt.Errorf("macro %d: `from` and `to` are required", i)
		}
	}
	return nil
}

// Generate writes a Go matcher for the pattern to OutputFile.
// It returns an error if the pattern is invalid or code generation fails.
func Generate(opts Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	expression := opts.Pattern
	if len(opts.Macros) > 0 {
		var err error
		expression, err = macro.Apply(opts.Pattern, opts.Macros)
		if err != nil {
			return fmt.Errorf("failed to apply macros: %w", err)
		}
	}

	root, err := syntax.Parse(expression)
	if err != nil {
		return fmt.Errorf("failed to parse pattern: %w", err)
	}
	prog, err := program.Build(optimizer.Optimize(root), program.Direct)
	if err != nil {
		return fmt.Errorf("failed to build program: %w", err)
	}

	// Set default for GenerateTestFile
	generateTestFile := opts.GenerateTestFile
	testInputs := opts.TestInputs
	if len(testInputs) > 0 {
		generateTestFile = true
	} else if generateTestFile {
		// Test file explicitly requested but no inputs - use default
		testInputs = []TestInput{{Name: "empty"}}
	}

	c := compiler.New(compiler.Config{
		Pattern:          expression,
		Name:             opts.Name,
		Package:          opts.Package,
		Program:          prog,
		GenerateTestFile: generateTestFile,
		TestInputs:       testInputs,
		Verbose:          opts.Verbose,
	})
	c.SetOutputFile(opts.OutputFile)

	if err := c.Generate(); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	return nil
}
