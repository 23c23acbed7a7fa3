// Package objectregexp compiles regular-expression-like patterns over
// sequences of typed objects. A compiled Matcher is interpreted at run time;
// Generate emits an equivalent Go matcher at build time.
package objectregexp

import (
	"fmt"
	"io"

	"github.com/rangoo94/object-regexp/internal/compiler"
	"github.com/rangoo94/object-regexp/internal/macro"
	"github.com/rangoo94/object-regexp/internal/optimizer"
	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/internal/syntax"
	"github.com/rangoo94/object-regexp/internal/vm"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

// MacroRule replaces every match of the From regular expression in a pattern
// with To, where $name, ${name} and $1 refer to groups of From.
type MacroRule = macro.Rule

// Option configures Compile.
type Option func(*settings)

type settings struct {
	macros  []MacroRule
	mode    program.Mode
	verbose io.Writer
}

// WithMacros expands the rules, in order, before the pattern is parsed.
func WithMacros(rules ...MacroRule) Option {
	return func(s *settings) {
		s.macros = append(s.macros, rules...)
	}
}

// WithLiteralProgram builds the instructions through a generated Go
// literal instead of constructing them directly. Both produce the same
// program.
func WithLiteralProgram() Option {
	return func(s *settings) {
		s.mode = program.Literal
	}
}

// WithVerbose logs compilation steps to w.
func WithVerbose(w io.Writer) Option {
	return func(s *settings) {
		s.verbose = w
	}
}

// Matcher is a compiled pattern. It is safe for concurrent use.
type Matcher struct {
	pattern    string
	expression string
	machine    *vm.Machine
}

// Compile parses the pattern and returns a matcher for it.
func Compile(pattern string, opts ...Option) (*Matcher, error) {
	s := settings{mode: program.Direct}
	for _, opt := range opts {
		opt(&s)
	}

	logger := compiler.NewLogger(s.verbose != nil)
	if s.verbose != nil {
		logger.SetOutput(s.verbose)
	}
	logger.Section("Compile")
	logger.Log("Pattern: %s", pattern)

	expanded := pattern
	if len(s.macros) > 0 {
		var err error
		expanded, err = macro.Apply(pattern, s.macros)
		if err != nil {
			return nil, fmt.Errorf("failed to apply macros: %w", err)
		}
		logger.Log("Expanded %d macros: %s", len(s.macros), expanded)
	}

	root, err := syntax.Parse(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}
	root = optimizer.Optimize(root)
	expression := syntax.Serialize(root)
	logger.Log("Optimized: %s", expression)

	prog, err := program.Build(root, s.mode)
	if err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}
	logger.Log("Built %d instructions (%s mode), %d save-point sites, %d named groups",
		len(prog.Instructions), s.mode, len(prog.Backtrackable()), len(prog.GroupNames))

	return &Matcher{
		pattern:    pattern,
		expression: expression,
		machine:    vm.New(prog),
	}, nil
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
func MustCompile(pattern string, opts ...Option) *Matcher {
	m, err := Compile(pattern, opts...)
	if err != nil {
		panic(fmt.Sprintf("objectregexp: Compile(%q): %v", pattern, err))
	}
	return m
}

// Match tests whether input, starting at startIndex, begins with a match.
// It returns nil when no match is possible, a result with Finished unset
// when more input could still produce a match, and a finished result
// otherwise. It panics if startIndex is negative.
func (m *Matcher) Match(input []objects.Object, startIndex int) *objects.Result {
	return m.machine.Match(input, startIndex)
}

// String returns the pattern the matcher was compiled from.
func (m *Matcher) String() string {
	return m.pattern
}

// Expression returns the optimized pattern, after macro expansion.
func (m *Matcher) Expression() string {
	return m.expression
}

// GroupNames returns the named groups in order of first appearance.
func (m *Matcher) GroupNames() []string {
	return append([]string(nil), m.machine.Program().GroupNames...)
}
