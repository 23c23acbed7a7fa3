// Package fixture loads JSON match fixtures shared by package tests, the
// end-to-end suite and the command line test runner.
package fixture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/IGLOU-EU/go-wildcard/v2"

	"github.com/rangoo94/object-regexp/internal/lexicon"
	"github.com/rangoo94/object-regexp/internal/macro"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

// Case is one pattern matched against one input.
type Case struct {
	Name    string       `json:"name"`
	Pattern string       `json:"pattern"`
	Macros  []macro.Rule `json:"macros,omitempty"`
	// Input lists objects as "Type", "Type=value" or {"type", "value"}.
	Input Sequence `json:"input,omitempty"`
	// Text is tokenized with the default lexicon when Input is empty.
	Text  string `json:"text,omitempty"`
	Start int    `json:"start,omitempty"`
	// Want is the expected result; null means no match.
	Want *objects.Result `json:"want"`
}

// Sequence is an object list with a compact JSON form.
type Sequence []objects.Object

// UnmarshalJSON implements json.Unmarshaler.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(Sequence, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var short string
			if err := json.Unmarshal(item, &short); err != nil {
				return err
			}
			typ, value, ok := strings.Cut(short, "=")
			out[i].Type = typ
			if ok {
				out[i].Value = value
			}
			continue
		}
		var full struct {
			Type  string `json:"type"`
			Value any    `json:"value"`
		}
		if err := json.Unmarshal(item, &full); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
		if full.Type == "" {
			return fmt.Errorf("object %d: type is required", i)
		}
		out[i] = objects.Object{Type: full.Type, Value: full.Value}
	}
	*s = out
	return nil
}

// Load reads a JSON array of cases.
func Load(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i, c := range cases {
		if c.Name == "" {
			return nil, fmt.Errorf("%s: case %d has no name", path, i)
		}
	}
	return cases, nil
}

// Filter keeps the cases whose name matches the glob. An empty glob keeps
// everything.
func Filter(cases []Case, glob string) []Case {
	if glob == "" {
		return cases
	}
	var out []Case
	for _, c := range cases {
		if wildcard.Match(glob, c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// Expression returns the pattern after macro expansion.
func (c Case) Expression() (string, error) {
	if len(c.Macros) == 0 {
		return c.Pattern, nil
	}
	return macro.Apply(c.Pattern, c.Macros)
}

// Objects returns the input sequence, tokenizing Text with lex when no
// objects are listed. A nil lex means the default lexicon.
func (c Case) Objects(lex *lexicon.Lexicon) ([]objects.Object, error) {
	if len(c.Input) > 0 || c.Text == "" {
		return c.Input, nil
	}
	if lex == nil {
		lex = lexicon.Default()
	}
	return lex.Tokenize(c.Text)
}

// Check compares got with the expected result.
func (c Case) Check(got *objects.Result) error {
	return Compare(got, c.Want)
}

// Compare reports how got differs from want. Empty and nil collections are
// treated as equal.
func Compare(got, want *objects.Result) error {
	switch {
	case got == nil && want == nil:
		return nil
	case got == nil:
		return fmt.Errorf("got no match, want %s", Describe(want))
	case want == nil:
		return fmt.Errorf("got %s, want no match", Describe(got))
	}

	if got.Finished != want.Finished || got.Index != want.Index || got.Length != want.Length {
		return fmt.Errorf("got %s, want %s", Describe(got), Describe(want))
	}
	if len(got.Expectations) != len(want.Expectations) {
		return fmt.Errorf("got expectations %v, want %v", got.Expectations, want.Expectations)
	}
	for i := range got.Expectations {
		if !reflect.DeepEqual(normalize(got.Expectations[i]), normalize(want.Expectations[i])) {
			return fmt.Errorf("expectation %d: got %v, want %v", i, got.Expectations[i], want.Expectations[i])
		}
	}
	if len(got.Groups) != len(want.Groups) {
		return fmt.Errorf("got groups %v, want %v", got.Groups, want.Groups)
	}
	for name, span := range want.Groups {
		if g, ok := got.Groups[name]; !ok || g != span {
			return fmt.Errorf("group %q: got %v, want %v", name, got.Groups[name], span)
		}
	}
	return nil
}

func normalize(e objects.Expectation) objects.Expectation {
	if len(e.Options) == 0 {
		e.Options = nil
	}
	return e
}

// Describe renders a result on one line.
func Describe(r *objects.Result) string {
	if r == nil {
		return "no match"
	}
	var sb strings.Builder
	if r.Finished {
		fmt.Fprintf(&sb, "match [%d, %d)", r.Index, r.Index+r.Length)
	} else {
		sb.WriteString("unfinished")
	}
	for _, name := range r.Groups.Names() {
		span := r.Groups[name]
		fmt.Fprintf(&sb, " %s=[%d, %d)", name, span.From, span.To)
	}
	for _, e := range r.Expectations {
		fmt.Fprintf(&sb, "; expected %s", e)
	}
	return sb.String()
}
