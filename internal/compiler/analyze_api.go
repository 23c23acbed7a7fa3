package compiler

import (
	"sort"

	"github.com/rangoo94/object-regexp/internal/optimizer"
	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/internal/syntax"
)

// AnalysisResult contains the results of pattern analysis without code generation.
type AnalysisResult struct {
	// FeatureLabels are derived from pattern structure (sorted alphabetically)
	FeatureLabels []string `json:"feature_labels"`

	// EngineLabels are derived from the compiled program (sorted alphabetically)
	EngineLabels []string `json:"engine_labels"`

	// Detailed analysis info
	GroupNames         []string `json:"group_names"`
	Instructions       int      `json:"instructions"`
	BacktrackingPoints int      `json:"backtracking_points"`
	Straightforward    int      `json:"straightforward"`
	Expectations       int      `json:"expectations"`
}

// AnalyzePattern performs pattern analysis and returns labels without generating code.
// It returns an error if the pattern is invalid.
func AnalyzePattern(pattern string) (*AnalysisResult, error) {
	root, err := syntax.Parse(pattern)
	if err != nil {
		return nil, err
	}
	// Labels describe what was written, so take them before optimizing.
	features := deriveFeatureLabels(root)

	prog, err := program.Build(optimizer.Optimize(root), program.Direct)
	if err != nil {
		return nil, err
	}
	return analyzeProgram(features, prog), nil
}

func analyzeProgram(features []string, p *program.Program) *AnalysisResult {
	s := programStats(p)
	return &AnalysisResult{
		FeatureLabels:      features,
		EngineLabels:       deriveEngineLabels(p, s),
		GroupNames:         append([]string{}, p.GroupNames...),
		Instructions:       s.Instructions,
		BacktrackingPoints: s.BacktrackingPoints,
		Straightforward:    s.Straightforward,
		Expectations:       len(p.Expectations),
	}
}

// deriveFeatureLabels extracts feature labels from the pattern structure.
// Labels are sorted alphabetically.
func deriveFeatureLabels(root *syntax.Node) []string {
	checks := []struct {
		label string
		fn    func(*syntax.Node) bool
	}{
		{"Alternation", func(n *syntax.Node) bool { return n.Kind == syntax.Alternative }},
		{"Atomic", func(n *syntax.Node) bool { return n.Kind == syntax.AtomicGroup }},
		{"Captures", func(n *syntax.Node) bool { return n.Kind == syntax.Group && n.Name != "" }},
		{"EndAnchor", func(n *syntax.Node) bool { return n.Kind == syntax.EndIndex }},
		{"Lazy", isLazy},
		{"Negated", func(n *syntax.Node) bool { return n.Kind == syntax.NegatedObject }},
		{"Possessive", isPossessive},
		{"Quantifiers", func(n *syntax.Node) bool { return n.Kind.IsQuantifier() }},
		{"Wildcard", func(n *syntax.Node) bool { return n.Kind == syntax.AnyObject }},
	}

	labels := []string{}
	for _, check := range checks {
		if hasKind(root, check.fn) {
			labels = append(labels, check.label)
		}
	}
	sort.Strings(labels)
	return labels
}

// deriveEngineLabels describes how the generated matcher runs.
// Labels are sorted alphabetically.
func deriveEngineLabels(p *program.Program, s stats) []string {
	var labels []string
	switch {
	case p.Empty():
		labels = append(labels, "ConstantSuccess")
	case s.BacktrackingPoints > 0:
		labels = append(labels, "Backtracking")
		if s.Atomic {
			labels = append(labels, "AtomicCut")
		}
	default:
		labels = append(labels, "Straightforward")
	}
	if len(p.GroupNames) > 0 {
		labels = append(labels, "GroupSlots")
	}
	sort.Strings(labels)
	return labels
}
