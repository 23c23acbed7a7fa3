package objectregexp

import (
	"fmt"

	"github.com/rangoo94/object-regexp/internal/compiler"
	"github.com/rangoo94/object-regexp/internal/macro"
	"github.com/rangoo94/object-regexp/internal/optimizer"
	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/internal/syntax"
)

// AnalysisResult contains the results of pattern analysis without code generation.
type AnalysisResult = compiler.AnalysisResult

// Analyze performs pattern analysis and returns labels without generating code.
// This function validates that the pattern is valid and returns an error if not.
//
// The analysis returns:
//   - FeatureLabels: derived from the pattern as written (e.g., "Captures", "Lazy")
//   - EngineLabels: derived from the compiled program (e.g., "Backtracking")
//
// Both label arrays are sorted alphabetically for deterministic comparison.
//
// Example:
//
//	result, err := objectregexp.Analyze("(?<value>[Number]+)[Unit]?")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.FeatureLabels) // ["Captures", "Quantifiers"]
func Analyze(pattern string) (*AnalysisResult, error) {
	return compiler.AnalyzePattern(pattern)
}

// Serialize parses and optimizes the pattern and renders it back as text.
// The result compiles to a matcher that behaves like the original.
func Serialize(pattern string) (string, error) {
	root, err := syntax.Parse(pattern)
	if err != nil {
		return "", fmt.Errorf("failed to parse pattern: %w", err)
	}
	return syntax.Serialize(optimizer.Optimize(root)), nil
}

// ApplyMacros expands the rules over the expression, in order.
func ApplyMacros(expression string, rules []MacroRule) (string, error) {
	return macro.Apply(expression, rules)
}

// ProgramLiteral returns the Go composite literal of the pattern's
// instructions, as built by WithLiteralProgram.
func ProgramLiteral(pattern string) (string, error) {
	root, err := syntax.Parse(pattern)
	if err != nil {
		return "", fmt.Errorf("failed to parse pattern: %w", err)
	}
	prog, err := program.Build(optimizer.Optimize(root), program.Direct)
	if err != nil {
		return "", fmt.Errorf("failed to build program: %w", err)
	}
	return program.EmitLiteral(prog.Instructions), nil
}
