// Command objectregexp compiles object patterns, matches them against
// tokenized text and generates Go matchers.
//
// Usage:
//
//	objectregexp generate -pattern '[Literal][Colon]' -name Decl -output decl.go -package decl
//	objectregexp match -pattern '[Literal][Colon]' -input 'color: red'
//	objectregexp test -cases testdata/cases.json -run 'atomic/*'
//	objectregexp analyze -pattern '([A]|[B])+'
//	objectregexp serialize -pattern '[A]{2,}'
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rangoo94/object-regexp/internal/fixture"
	"github.com/rangoo94/object-regexp/internal/lexicon"
	"github.com/rangoo94/object-regexp/internal/macro"
	"github.com/rangoo94/object-regexp/pkg/objectregexp"
)

const (
	appVersion = "1.0.0"
	appName    = "objectregexp"
)

// arrayFlags collects a repeated string flag.
type arrayFlags []string

func (a *arrayFlags) String() string {
	return strings.Join(*a, ", ")
}

func (a *arrayFlags) Set(value string) error {
	*a = append(*a, value)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printHelp(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "generate":
		err = runGenerate(args[1:], stdout, stderr)
	case "match":
		err = runMatch(args[1:], stdout, stderr)
	case "test":
		err = runTest(args[1:], stdout, stderr)
	case "analyze":
		err = runAnalyze(args[1:], stdout, stderr)
	case "serialize":
		err = runSerialize(args[1:], stdout, stderr)
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "%s version %s\n", appName, appVersion)
		return 0
	case "help", "-help", "--help", "-h":
		printHelp(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command '%s'\n\n", args[0])
		printHelp(stderr)
		return 2
	}

	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `%s compiles patterns over sequences of typed objects.

Commands:
  generate   write a Go matcher for a pattern
  match      match a pattern against tokenized text
  test       run JSON match fixtures
  analyze    print pattern analysis labels as JSON
  serialize  print the optimized pattern
  version    print version information

Run '%s <command> -help' for the flags of a command.
`, appName, appName)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(appName+" "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseMacros(values []string) ([]objectregexp.MacroRule, error) {
	rules := make([]objectregexp.MacroRule, 0, len(values))
	for _, v := range values {
		r, err := macro.ParseRule(v)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default(), nil
	}
	return lexicon.Load(path)
}

func runGenerate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("generate", stderr)
	pattern := fs.String("pattern", "", "Object pattern to compile")
	name := fs.String("name", "", "Name of the generated matcher type")
	output := fs.String("output", "", "Output file")
	pkg := fs.String("package", "main", "Package of the generated file")
	lexiconPath := fs.String("lexicon", "", "JSON lexicon used to tokenize -input (default: built-in)")
	testFile := fs.Bool("test-file", false, "Also generate a test file")
	verbose := fs.Bool("verbose", false, "Log analysis decisions")
	literal := fs.Bool("literal", false, "Print the instruction literal instead of generating a matcher")
	var macros, inputs arrayFlags
	fs.Var(&macros, "macro", "Macro rule 'from=>to' (repeatable)")
	fs.Var(&inputs, "input", "Text tokenized into a test input (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rules, err := parseMacros(macros)
	if err != nil {
		return err
	}
	if *literal {
		expanded, err := objectregexp.ApplyMacros(*pattern, rules)
		if err != nil {
			return err
		}
		src, err := objectregexp.ProgramLiteral(expanded)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, src)
		return nil
	}
	lex, err := loadLexicon(*lexiconPath)
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}

	testInputs := make([]objectregexp.TestInput, 0, len(inputs))
	for i, text := range inputs {
		objs, err := lex.Tokenize(text)
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		testInputs = append(testInputs, objectregexp.TestInput{Name: fmt.Sprintf("input_%d", i), Objects: objs})
	}

	err = objectregexp.Generate(objectregexp.Options{
		Pattern:          *pattern,
		Name:             *name,
		OutputFile:       *output,
		Package:          *pkg,
		Macros:           rules,
		GenerateTestFile: *testFile,
		TestInputs:       testInputs,
		Verbose:          *verbose,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Generated %s\n", *output)
	return nil
}

func runMatch(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("match", stderr)
	pattern := fs.String("pattern", "", "Object pattern to match")
	lexiconPath := fs.String("lexicon", "", "JSON lexicon used to tokenize input (default: built-in)")
	start := fs.Int("start", 0, "Index of the first object to match")
	asJSON := fs.Bool("json", false, "Print results as JSON")
	verbose := fs.Bool("verbose", false, "Log compilation steps")
	var macros, inputs arrayFlags
	fs.Var(&macros, "macro", "Macro rule 'from=>to' (repeatable)")
	fs.Var(&inputs, "input", "Text to tokenize and match (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	inputs = append(inputs, fs.Args()...)
	if len(inputs) == 0 {
		return fmt.Errorf("at least one -input is required")
	}
	if *start < 0 {
		return fmt.Errorf("start index cannot be negative")
	}

	rules, err := parseMacros(macros)
	if err != nil {
		return err
	}
	opts := []objectregexp.Option{objectregexp.WithMacros(rules...)}
	if *verbose {
		opts = append(opts, objectregexp.WithVerbose(stderr))
	}
	m, err := objectregexp.Compile(*pattern, opts...)
	if err != nil {
		return err
	}
	lex, err := loadLexicon(*lexiconPath)
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}

	enc := json.NewEncoder(stdout)
	for _, text := range inputs {
		objs, err := lex.Tokenize(text)
		if err != nil {
			return err
		}
		result := m.Match(objs, *start)
		if *asJSON {
			if err := enc.Encode(result); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(stdout, "%q: %s\n", text, fixture.Describe(result))
	}
	return nil
}

func runTest(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("test", stderr)
	casesPath := fs.String("cases", "testdata/cases.json", "JSON fixture file")
	glob := fs.String("run", "", "Only run cases whose name matches the wildcard")
	lexiconPath := fs.String("lexicon", "", "JSON lexicon for text inputs (default: built-in)")
	literal := fs.Bool("literal", false, "Build programs through the literal mode")
	verbose := fs.Bool("verbose", false, "Print passing cases too")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cases, err := fixture.Load(*casesPath)
	if err != nil {
		return err
	}
	lex, err := loadLexicon(*lexiconPath)
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}

	cases = fixture.Filter(cases, *glob)
	failed := 0
	for _, c := range cases {
		if err := runCase(c, lex, *literal); err != nil {
			failed++
			fmt.Fprintf(stdout, "FAIL %s: %v\n", c.Name, err)
			continue
		}
		if *verbose {
			fmt.Fprintf(stdout, "ok   %s\n", c.Name)
		}
	}
	fmt.Fprintf(stdout, "%d passed, %d failed\n", len(cases)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(cases))
	}
	return nil
}

func runCase(c fixture.Case, lex *lexicon.Lexicon, literal bool) error {
	opts := []objectregexp.Option{objectregexp.WithMacros(c.Macros...)}
	if literal {
		opts = append(opts, objectregexp.WithLiteralProgram())
	}
	m, err := objectregexp.Compile(c.Pattern, opts...)
	if err != nil {
		return err
	}
	input, err := c.Objects(lex)
	if err != nil {
		return err
	}
	return c.Check(m.Match(input, c.Start))
}

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("analyze", stderr)
	pattern := fs.String("pattern", "", "Object pattern to analyze")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := objectregexp.Analyze(*pattern)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runSerialize(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("serialize", stderr)
	pattern := fs.String("pattern", "", "Object pattern to serialize")
	var macros arrayFlags
	fs.Var(&macros, "macro", "Macro rule 'from=>to' (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rules, err := parseMacros(macros)
	if err != nil {
		return err
	}
	expression, err := objectregexp.ApplyMacros(*pattern, rules)
	if err != nil {
		return err
	}
	out, err := objectregexp.Serialize(expression)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}
