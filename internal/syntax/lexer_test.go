package syntax

import (
	"errors"
	"testing"

	"github.com/rangoo94/object-regexp/pkg/objects"
)

func TestLexKinds(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		kinds   []TokenKind
	}{
		{"object", "[A]", []TokenKind{TokenObject}},
		{"negated", "[^A]", []TokenKind{TokenNegatedObject}},
		{"any and end", ". $", []TokenKind{TokenAnyObject, TokenWhitespace, TokenEndIndex}},
		{"groups", "(?>(?<x>[A]))", []TokenKind{
			TokenAtomicGroupOpen, TokenGroupOpen, TokenNamedGroupStart, TokenObject, TokenGroupClose, TokenGroupClose,
		}},
		{"alternative", "[A]|[B]", []TokenKind{TokenObject, TokenAlternative, TokenObject}},
		{"whitespace run", "[A] \n\t [B]", []TokenKind{TokenObject, TokenWhitespace, TokenObject}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.pattern)
			if err != nil {
				t.Fatalf("Lex() returned error: %v", err)
			}
			if len(tokens) != len(tt.kinds) {
				t.Fatalf("Lex() returned %d tokens, want %d", len(tokens), len(tt.kinds))
			}
			for i, tok := range tokens {
				if tok.Kind != tt.kinds[i] {
					t.Errorf("token %d kind = %d, want %d", i, tok.Kind, tt.kinds[i])
				}
			}
		})
	}
}

func TestLexQuantifiers(t *testing.T) {
	tests := []struct {
		text       string
		kind       Kind
		min, max   int
		possessive bool
	}{
		{"?", Optional, 0, 0, false},
		{"??", OptionalLazy, 0, 0, false},
		{"?+", OptionalPossessive, 0, 0, false},
		{"*", AnyGreedy, 0, 0, false},
		{"*?", AnyLazy, 0, 0, false},
		{"*+", AnyPossessive, 0, 0, false},
		{"+", ManyGreedy, 0, 0, false},
		{"+?", ManyLazy, 0, 0, false},
		{"++", ManyPossessive, 0, 0, false},
		{"{3}", AmountExact, 3, 3, false},
		{"{3}+", AmountExact, 3, 3, true},
		{"{2,}", AmountAtLeast, 2, 0, false},
		{"{2,}+", AmountAtLeast, 2, 0, true},
		{"{,10}", AmountAtMost, 0, 10, false},
		{"{,10}+", AmountAtMost, 0, 10, true},
		{"{2,5}", AmountBetween, 2, 5, false},
		{"{2,5}+", AmountBetween, 2, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tokens, err := Lex("[A]" + tt.text)
			if err != nil {
				t.Fatalf("Lex() returned error: %v", err)
			}
			if len(tokens) != 2 {
				t.Fatalf("Lex() returned %d tokens, want 2", len(tokens))
			}
			q := tokens[1]
			if q.Kind != TokenQuantifier || q.Quantifier != tt.kind {
				t.Errorf("quantifier = %v, want %v", q.Quantifier, tt.kind)
			}
			if q.Min != tt.min || q.Max != tt.max || q.Possessive != tt.possessive {
				t.Errorf("quantifier bounds = {%d,%d,%v}, want {%d,%d,%v}", q.Min, q.Max, q.Possessive, tt.min, tt.max, tt.possessive)
			}
			if q.Text != tt.text {
				t.Errorf("quantifier text = %q, want %q", q.Text, tt.text)
			}
		})
	}
}

func TestLexObjectOptions(t *testing.T) {
	tests := []struct {
		pattern string
		want    []objects.Option
	}{
		{"[A]", []objects.Option{{Type: "A"}}},
		{"[A|B]", []objects.Option{{Type: "A"}, {Type: "B"}}},
		{"[A=xyz]", []objects.Option{{Type: "A", Value: "xyz", HasValue: true}}},
		{"[A=|B]", []objects.Option{{Type: "A", Value: "", HasValue: true}, {Type: "B"}}},
		{`[A=a\]b\|c\\]`, []objects.Option{{Type: "A", Value: `a]b|c\`, HasValue: true}}},
		{"[At-Rule_2=for each]", []objects.Option{{Type: "At-Rule_2", Value: "for each", HasValue: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			tokens, err := Lex(tt.pattern)
			if err != nil {
				t.Fatalf("Lex() returned error: %v", err)
			}
			got := tokens[0].Options
			if len(got) != len(tt.want) {
				t.Fatalf("Options = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Options[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		pattern string
		message string
		column  int
	}{
		{"~[A][B]", ErrUnknownToken, 1},
		{"[A]#[B]", ErrUnknownToken, 4},
		{"[A", ErrUnknownToken, 1},
		{"[]", ErrUnknownToken, 1},
		{"[A B]", ErrUnknownToken, 1},
		{"[A]{x}", ErrUnknownToken, 4},
		{"[A]{,}", ErrUnknownToken, 4},
		{"[A]{5,2}", ErrInvalidRange, 4},
		{"(?<>[A])", ErrUnknownToken, 2},
		{"(?<name[A])", ErrUnknownToken, 2},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := Lex(tt.pattern)
			var synErr *Error
			if !errors.As(err, &synErr) {
				t.Fatalf("Lex() error = %v, want *Error", err)
			}
			if synErr.Message != tt.message || synErr.Column != tt.column {
				t.Errorf("Lex() error = %q at column %d, want %q at column %d", synErr.Message, synErr.Column, tt.message, tt.column)
			}
		})
	}
}
