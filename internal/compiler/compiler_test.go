package compiler

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rangoo94/object-regexp/internal/optimizer"
	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/internal/syntax"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

func compile(t *testing.T, pattern string) *program.Program {
	t.Helper()
	root, err := syntax.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", pattern, err)
	}
	p, err := program.Build(optimizer.Optimize(root), program.Direct)
	if err != nil {
		t.Fatalf("Build(%q) returned error: %v", pattern, err)
	}
	return p
}

func TestCompilerSource(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		contains []string
		excludes []string
	}{
		{
			name:     "straightforward",
			pattern:  "[A][B]*[C]",
			contains: []string{"type Test struct{}", "var CompiledTest = Test{}", "func (Test) MatchGroups(", "testExpectations"},
			excludes: []string{"testStackPool", "testFallback", "StepSelect"},
		},
		{
			name:     "backtracking",
			pattern:  "[A]*[A]",
			contains: []string{"testStackPool", "type testFallback struct", "TryFallback:", "StepSelect:"},
		},
		{
			name:     "named groups",
			pattern:  "(?<name>[A])(?<value>([B][C])+)(?<other>[B][C])",
			contains: []string{"type TestGroups struct", "Name  *objects.Span", "Value *objects.Span", "Other *objects.Span", "func (g TestGroups) Map() objects.Groups"},
		},
		{
			name:     "end anchor and negation",
			pattern:  "[^A|B=x].$",
			contains: []string{"objects.NotOneOf", "objects.Any", `objects.ValueEquals(input[pos].Value, "x")`},
		},
		{
			name:     "empty pattern",
			pattern:  "",
			contains: []string{"Finished: true", "return &objects.Result{"},
			excludes: []string{"testExpectations", "goto"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Config{
				Pattern: tt.pattern,
				Name:    "Test",
				Package: "generated",
				Program: compile(t, tt.pattern),
			})
			src, err := c.Source()
			if err != nil {
				t.Fatalf("Source() returned error: %v", err)
			}
			out := string(src)
			if !strings.HasPrefix(out, "// Code generated by objectregexp") {
				t.Errorf("Source() is missing the generated header")
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("Source() does not contain %q\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("Source() should not contain %q\n%s", s, out)
				}
			}
		})
	}
}

func TestCompilerSourceRequiresProgram(t *testing.T) {
	c := New(Config{Pattern: "[A]", Name: "Test", Package: "generated"})
	if _, err := c.Source(); err == nil {
		t.Errorf("Source() without program should fail")
	}
}

func TestCompilerGenerate(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "matcher.go")

	c := New(Config{
		Pattern:          "[A]+?[B]",
		Name:             "Matcher",
		OutputFile:       output,
		Package:          "generated",
		Program:          compile(t, "[A]+?[B]"),
		GenerateTestFile: true,
		TestInputs: []TestInput{
			{Name: "match", Objects: []objects.Object{{Type: "A"}, {Type: "A"}, {Type: "B"}}},
			{Objects: []objects.Object{{Type: "A", Value: "x"}}},
			{Name: "no match", Objects: []objects.Object{{Type: "B"}}},
		},
	})
	if err := c.Generate(); err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	src, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output file was not written: %v", err)
	}
	if !bytes.Contains(src, []byte("package generated")) {
		t.Errorf("output has wrong package:\n%s", src)
	}

	testSrc, err := os.ReadFile(filepath.Join(dir, "matcher_test.go"))
	if err != nil {
		t.Fatalf("test file was not written: %v", err)
	}
	for _, s := range []string{"func TestMatcherMatch(", "func BenchmarkMatcherMatch(", `"match"`, `"input_1"`, `"no match"`} {
		if !bytes.Contains(testSrc, []byte(s)) {
			t.Errorf("test file does not contain %q\n%s", s, testSrc)
		}
	}
}

func TestTestFilePath(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"matcher.go", "matcher_test.go"},
		{"dir/foo.go", "dir/foo_test.go"},
		{"noext", "noext_test.go"},
	}

	for _, tt := range tests {
		if got := TestFilePath(tt.output); got != tt.want {
			t.Errorf("TestFilePath(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestGroupFields(t *testing.T) {
	tests := []struct {
		names []string
		want  []string
	}{
		{nil, []string{}},
		{[]string{"name", "value"}, []string{"Name", "Value"}},
		{[]string{"map"}, []string{"Map2"}},
		{[]string{"user-id", "user_id", "userId"}, []string{"UserId", "UserId2", "UserId3"}},
	}

	for _, tt := range tests {
		got := groupFields(tt.names)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("groupFields(%v) = %v, want %v", tt.names, got, tt.want)
		}
	}
}

func TestLayout(t *testing.T) {
	l := newLayout(compile(t, "(?<name>[A])(?<value>([B][C])+)(?<other>[B][C])"))

	if !l.backtracks {
		t.Fatalf("layout should backtrack")
	}
	if l.locals != 5 || l.saved != 1 {
		t.Errorf("locals, saved = %d, %d, want 5, 1", l.locals, l.saved)
	}
	if l.start[1] != 0 || l.start[4] != 1 || l.start[7] != 2 || l.point[7] != 3 || l.start[12] != 4 {
		t.Errorf("unexpected slots: start %v point %v", l.start, l.point)
	}
	if l.group[7] != 0 {
		t.Errorf("group[7] = %d, want 0", l.group[7])
	}

	flat := newLayout(compile(t, "[A][B]"))
	if flat.backtracks || flat.locals != 0 || flat.saved != 0 {
		t.Errorf("flat layout = %+v, want no slots", flat)
	}
}

func TestLogger(t *testing.T) {
	t.Run("disabled logger produces no output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(false)
		logger.SetOutput(&buf)

		logger.Log("test message")
		logger.Section("test section")

		if buf.Len() != 0 {
			t.Errorf("disabled logger produced output: %s", buf.String())
		}
	})

	t.Run("enabled logger produces output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(true)
		logger.SetOutput(&buf)

		logger.Log("test %s", "message")
		logger.Section("test section")

		output := buf.String()
		if !strings.Contains(output, "[objectregexp] test message") {
			t.Errorf("output missing 'test message': %s", output)
		}
		if !strings.Contains(output, "=== test section ===") {
			t.Errorf("output missing 'test section': %s", output)
		}
	})
}

func TestCompilerVerboseLogging(t *testing.T) {
	var buf bytes.Buffer
	c := New(Config{
		Pattern: "[A]*[A]",
		Name:    "Test",
		Package: "generated",
		Program: compile(t, "[A]*[A]"),
		Verbose: true,
	})
	c.Logger().SetOutput(&buf)

	// Re-run analysis to capture output
	c.analyzeAndLog()

	output := buf.String()
	for _, s := range []string{"Pattern Analysis", "Engine Selection", "backtracking state machine"} {
		if !strings.Contains(output, s) {
			t.Errorf("verbose output is missing %q:\n%s", s, output)
		}
	}
}

func TestAnalyzePattern(t *testing.T) {
	tests := []struct {
		pattern  string
		features []string
		engine   []string
	}{
		{"", []string{}, []string{"ConstantSuccess"}},
		{"[A][B]", []string{}, []string{"Straightforward"}},
		{"[A]*[A]", []string{"Quantifiers"}, []string{"Backtracking"}},
		{"(?<x>[A]|[B][C])$", []string{"Alternation", "Captures", "EndAnchor"}, []string{"Backtracking", "GroupSlots"}},
		{"[A]++[A]", []string{"Possessive", "Quantifiers"}, nil},
		{"[^A].*?", []string{"Lazy", "Negated", "Quantifiers", "Wildcard"}, nil},
		{"(?>[A])", []string{"Atomic"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := AnalyzePattern(tt.pattern)
			if err != nil {
				t.Fatalf("AnalyzePattern() returned error: %v", err)
			}
			if strings.Join(got.FeatureLabels, ",") != strings.Join(tt.features, ",") {
				t.Errorf("FeatureLabels = %v, want %v", got.FeatureLabels, tt.features)
			}
			if tt.engine != nil && strings.Join(got.EngineLabels, ",") != strings.Join(tt.engine, ",") {
				t.Errorf("EngineLabels = %v, want %v", got.EngineLabels, tt.engine)
			}
		})
	}

	if _, err := AnalyzePattern("[A"); err == nil {
		t.Errorf("AnalyzePattern() should fail on invalid pattern")
	}
}
