package objectregexp

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rangoo94/object-regexp/internal/fixture"
	"github.com/rangoo94/object-regexp/internal/syntax"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

func seq(types ...string) []objects.Object {
	out := make([]objects.Object, len(types))
	for i, t := range types {
		out[i] = objects.Object{Type: t}
	}
	return out
}

func repeat(n int, types ...string) []objects.Object {
	var out []objects.Object
	for i := 0; i < n; i++ {
		out = append(out, seq(types...)...)
	}
	return out
}

func TestFixtures(t *testing.T) {
	cases, err := fixture.Load("../../testdata/cases.json")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			input, err := c.Objects(nil)
			if err != nil {
				t.Fatalf("Objects() returned error: %v", err)
			}
			direct, err := Compile(c.Pattern, WithMacros(c.Macros...))
			if err != nil {
				t.Fatalf("Compile() returned error: %v", err)
			}
			literal, err := Compile(c.Pattern, WithMacros(c.Macros...), WithLiteralProgram())
			if err != nil {
				t.Fatalf("Compile(WithLiteralProgram) returned error: %v", err)
			}
			got := direct.Match(input, c.Start)
			if err := c.Check(got); err != nil {
				t.Error(err)
			}
			if lit := literal.Match(input, c.Start); !reflect.DeepEqual(lit, got) {
				t.Errorf("literal Match() = %s, direct Match() = %s", fixture.Describe(lit), fixture.Describe(got))
			}
		})
	}
}

func TestAtomicGroupCommits(t *testing.T) {
	m := MustCompile("(?>[A][B]+)[B]")
	for n := 1; n <= 10; n++ {
		input := append(seq("A"), repeat(n, "B")...)
		if got := m.Match(input, 0); got != nil && got.Finished {
			t.Errorf("Match(A B*%d) = %s, want no finished match", n, fixture.Describe(got))
		}
	}
}

func TestPossessiveEqualsAtomic(t *testing.T) {
	possessive := MustCompile("([A][B])++[A]")
	atomic := MustCompile("(?>([A][B])+)[A]")

	inputs := [][]objects.Object{
		nil,
		seq("A"),
		seq("A", "B"),
		seq("A", "B", "A"),
		append(repeat(5, "A", "B"), seq("A")...),
		seq("A", "B", "B"),
	}
	for _, input := range inputs {
		p, a := possessive.Match(input, 0), atomic.Match(input, 0)
		if !reflect.DeepEqual(p, a) {
			t.Errorf("input %v: possessive = %s, atomic = %s", input, fixture.Describe(p), fixture.Describe(a))
		}
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	m := MustCompile("(?<name>[A])(?<value>([B][C])+)(?<other>[B][C])")
	input := append(seq("A"), repeat(10, "B", "C")...)
	first := m.Match(input, 0)
	for i := 0; i < 5; i++ {
		if got := m.Match(input, 0); !reflect.DeepEqual(got, first) {
			t.Fatalf("Match() = %s, want %s", fixture.Describe(got), fixture.Describe(first))
		}
	}
	if want := []string{"name", "value", "other"}; !reflect.DeepEqual(m.GroupNames(), want) {
		t.Errorf("GroupNames() = %v, want %v", m.GroupNames(), want)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		opts    []Option
		syntax  bool
	}{
		{"unknown token", "[A]%", nil, true},
		{"quantifier without node", "*", nil, true},
		{"unclosed group", "([A]", nil, true},
		{"invalid macro", "[A]", []Option{WithMacros(MacroRule{From: "(", To: "x"})}, false},
		{"empty macro", "[A]", []Option{WithMacros(MacroRule{From: "A"})}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pattern, tt.opts...)
			if err == nil {
				t.Fatalf("Compile(%q) should fail", tt.pattern)
			}
			var serr *syntax.Error
			if errors.As(err, &serr) != tt.syntax {
				t.Errorf("Compile(%q) error = %v, syntax error = %v", tt.pattern, err, !tt.syntax)
			}
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("MustCompile() should panic on invalid pattern")
		}
	}()
	MustCompile("(")
}

func TestWithVerbose(t *testing.T) {
	var buf bytes.Buffer
	m, err := Compile("$X[B]", WithVerbose(&buf), WithMacros(MacroRule{From: `\$X`, To: "[A]"}))
	if err != nil {
		t.Fatalf("Compile() returned error: %v", err)
	}
	if got := m.Expression(); got != "[A][B]" {
		t.Errorf("Expression() = %q, want %q", got, "[A][B]")
	}
	if got := m.String(); got != "$X[B]" {
		t.Errorf("String() = %q, want %q", got, "$X[B]")
	}
	out := buf.String()
	for _, s := range []string{"=== Compile ===", "Expanded 1 macros: [A][B]", "Built"} {
		if !strings.Contains(out, s) {
			t.Errorf("verbose output is missing %q:\n%s", s, out)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	patterns := []string{
		"[A][B]*[C]",
		"([A]|[A][B])[C]",
		"(?<x>[A=1|B])+?[^C]",
		"(?>[A]*)[A]",
		"[A]{2,4}[B]{,2}$",
		"[A]++.",
		"",
	}
	inputs := [][]objects.Object{
		nil,
		seq("A"),
		seq("A", "B", "C"),
		seq("A", "A", "A", "B"),
		seq("B", "C"),
		seq("A", "A", "B", "B"),
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			serialized, err := Serialize(pattern)
			if err != nil {
				t.Fatalf("Serialize() returned error: %v", err)
			}
			original := MustCompile(pattern)
			again := MustCompile(serialized)
			for _, input := range inputs {
				a, b := original.Match(input, 0), again.Match(input, 0)
				if fixture.Compare(b, a) != nil {
					t.Errorf("input %v: %q = %s, %q = %s", input, pattern, fixture.Describe(a), serialized, fixture.Describe(b))
				}
			}
		})
	}

	if _, err := Serialize("[A"); err == nil {
		t.Errorf("Serialize() should fail on invalid pattern")
	}
}

func TestApplyMacros(t *testing.T) {
	got, err := ApplyMacros("$VALUE+", []MacroRule{{From: `\$VALUE`, To: "[Number|Literal]"}})
	if err != nil {
		t.Fatalf("ApplyMacros() returned error: %v", err)
	}
	if want := "[Number|Literal]+"; got != want {
		t.Errorf("ApplyMacros() = %q, want %q", got, want)
	}
}

func TestProgramLiteral(t *testing.T) {
	got, err := ProgramLiteral("(?<x>[A])")
	if err != nil {
		t.Fatalf("ProgramLiteral() returned error: %v", err)
	}
	for _, s := range []string{"program.OpRoot", "program.OpGroup", "program.OpObject", "program.OpFinish", `Name: "x"`} {
		if !strings.Contains(got, s) {
			t.Errorf("ProgramLiteral() does not contain %q:\n%s", s, got)
		}
	}
	if _, err := ProgramLiteral("("); err == nil {
		t.Errorf("ProgramLiteral() should fail on invalid pattern")
	}
}

func TestAnalyze(t *testing.T) {
	got, err := Analyze("(?<value>[Number]+)[Unit]?")
	if err != nil {
		t.Fatalf("Analyze() returned error: %v", err)
	}
	if want := []string{"Captures", "Quantifiers"}; !reflect.DeepEqual(got.FeatureLabels, want) {
		t.Errorf("FeatureLabels = %v, want %v", got.FeatureLabels, want)
	}
	if want := []string{"value"}; !reflect.DeepEqual(got.GroupNames, want) {
		t.Errorf("GroupNames = %v, want %v", got.GroupNames, want)
	}
}

func TestOptionsValidate(t *testing.T) {
	valid := Options{Name: "Decl", OutputFile: "decl.go", Package: "gen"}

	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{"valid", func(*Options) {}, false},
		{"empty pattern is valid", func(o *Options) { o.Pattern = "" }, false},
		{"no name", func(o *Options) { o.Name = "" }, true},
		{"unexported name", func(o *Options) { o.Name = "decl" }, true},
		{"invalid name", func(o *Options) { o.Name = "De-cl" }, true},
		{"no output", func(o *Options) { o.OutputFile = "" }, true},
		{"no package", func(o *Options) { o.Package = "" }, true},
		{"invalid package", func(o *Options) { o.Package = "my pkg" }, true},
		{"incomplete macro", func(o *Options) { o.Macros = []MacroRule{{From: "x"}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.modify(&opts)
			if err := opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "decl.go")

	err := Generate(Options{
		Pattern:          "$NAME[Colon][Whitespace]?(?<value>[Literal|Number]+)[Separator]",
		Name:             "Declaration",
		OutputFile:       output,
		Package:          "generated",
		Macros:           []MacroRule{{From: `\$NAME`, To: "(?<name>[Literal])"}},
		GenerateTestFile: true,
	})
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}

	src, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output file was not written: %v", err)
	}
	for _, s := range []string{"type DeclarationGroups struct", "func (Declaration) Match(", "(?<name>[Literal])"} {
		if !bytes.Contains(src, []byte(s)) {
			t.Errorf("generated code does not contain %q", s)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "decl_test.go")); err != nil {
		t.Errorf("test file was not written: %v", err)
	}

	err = Generate(Options{Pattern: "[A", Name: "Broken", OutputFile: output, Package: "generated"})
	var serr *syntax.Error
	if !errors.As(err, &serr) {
		t.Errorf("Generate() error = %v, want a syntax error", err)
	}
	if err := Generate(Options{Pattern: "[A]"}); err == nil || !strings.HasPrefix(err.Error(), "invalid options:") {
		t.Errorf("Generate() error = %v, want invalid options", err)
	}
}
