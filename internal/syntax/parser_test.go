package syntax

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTree(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{
			name:    "sequence",
			pattern: "[A] [B]",
			want:    "Root\n  Object [A]\n  Object [B]\n",
		},
		{
			name:    "quantified group",
			pattern: "([A][B])+",
			want:    "Root\n  ManyGreedy\n    Group\n      Object [A]\n      Object [B]\n",
		},
		{
			name:    "named group",
			pattern: "(?<name>[A])",
			want:    "Root\n  Group <name>\n    Object [A]\n",
		},
		{
			name:    "alternative",
			pattern: "[A][B]|[C]",
			want:    "Root\n  Alternative\n    Group\n      Object [A]\n      Object [B]\n    Object [C]\n",
		},
		{
			name:    "alternative chain",
			pattern: "[A]|[B]|[C]",
			want:    "Root\n  Alternative\n    Group\n      Alternative\n        Object [A]\n        Object [B]\n    Object [C]\n",
		},
		{
			name:    "empty sides",
			pattern: "(|[A])",
			want:    "Root\n  Group\n    Alternative\n      Nothing\n      Object [A]\n",
		},
		{
			name:    "empty right side",
			pattern: "([A]|)",
			want:    "Root\n  Group\n    Alternative\n      Object [A]\n      Nothing\n",
		},
		{
			name:    "counted",
			pattern: "[A]{2,5}+",
			want:    "Root\n  AmountBetween {2,5}\n    Object [A]\n",
		},
		{
			name:    "atomic quantified",
			pattern: "(?>[A])*",
			want:    "Root\n  AnyGreedy\n    AtomicGroup\n      Object [A]\n",
		},
		{
			name:    "empty",
			pattern: "",
			want:    "Root\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.pattern)
			if err != nil {
				t.Fatalf("Parse() returned error: %v", err)
			}
			// Leaves are not marked before optimization.
			if got := Dump(root); got != tt.want {
				t.Errorf("Parse() tree =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestParseLinksParents(t *testing.T) {
	root, err := Parse("([A]|[B][C])+")
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	root.Walk(func(n *Node) bool {
		for _, c := range n.Children {
			if c.Parent != n {
				t.Errorf("%v child %v has wrong parent", n.Kind, c.Kind)
			}
		}
		return true
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		pattern string
		message string
		column  int
	}{
		{"+[A][B]", ErrQuantifierWithoutNode, 1},
		{"*[A][B]", ErrQuantifierWithoutNode, 1},
		{"?", ErrQuantifierWithoutNode, 1},
		{"[A][B]+++", ErrUnexpectedQuantifier, 9},
		{"[A][B]{,3}++", ErrUnexpectedQuantifier, 12},
		{"[A]$+", ErrUnexpectedQuantifier, 5},
		{"[A]|+", ErrUnexpectedQuantifier, 5},
		{"[A][B]++)+", ErrUnexpectedGroupClose, 9},
		{"?<name>[xyz]", ErrNamedGroupPlacement, 1},
		{"([xyz]?<name>)", ErrNamedGroupPlacement, 7},
		{"(?<name>?<xyz>[xyz])", ErrNamedGroupRepeated, 9},
		{"(?>?<name>[xyz])", ErrNamedGroupPlacement, 4},
		{"[A]([B]", ErrUnclosedGroup, 4},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := Parse(tt.pattern)
			var synErr *Error
			if !errors.As(err, &synErr) {
				t.Fatalf("Parse() error = %v, want *Error", err)
			}
			if synErr.Message != tt.message || synErr.Column != tt.column {
				t.Errorf("Parse() error = %q at column %d, want %q at column %d", synErr.Message, synErr.Column, tt.message, tt.column)
			}
			if synErr.Line != 1 {
				t.Errorf("Parse() error line = %d, want 1", synErr.Line)
			}
		})
	}
}

func TestParseValidNamedGroup(t *testing.T) {
	if _, err := Parse("(?<name>[xyz])"); err != nil {
		t.Errorf("Parse() returned error: %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	_, err := Parse("[A]#[B]")
	if err == nil {
		t.Fatal("Parse() should fail")
	}
	want := "Syntax error: Unknown token (line: 1, column: 4)\n[A]#[B]\n   ^"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorPosition(t *testing.T) {
	pattern := "[A]\n\t[B]\n  )"
	_, err := Parse(pattern)
	var synErr *Error
	if !errors.As(err, &synErr) {
		t.Fatalf("Parse() error = %v, want *Error", err)
	}
	if synErr.Line != 3 || synErr.Column != 3 {
		t.Errorf("position = %d:%d, want 3:3", synErr.Line, synErr.Column)
	}
	if synErr.Before != "[A]  [B]   " {
		t.Errorf("Before = %q, want flattened context", synErr.Before)
	}
	if !strings.HasSuffix(err.Error(), "\n           ^") {
		t.Errorf("Error() = %q, caret misplaced", err.Error())
	}
}

func TestErrorContextIsClipped(t *testing.T) {
	pattern := strings.Repeat("[A]", 30) + "#" + strings.Repeat("[B]", 30)
	_, err := Parse(pattern)
	var synErr *Error
	if !errors.As(err, &synErr) {
		t.Fatalf("Parse() error = %v, want *Error", err)
	}
	if len(synErr.Before) != contextSize || len(synErr.After) != contextSize {
		t.Errorf("context = %d/%d characters, want %d", len(synErr.Before), len(synErr.After), contextSize)
	}
	if synErr.Column != 91 {
		t.Errorf("Column = %d, want 91", synErr.Column)
	}
}
