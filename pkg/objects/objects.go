// Package objects holds the runtime types shared by compiled matchers and
// by generated matcher code. It has no dependencies outside the standard
// library so generated files only need to import this package.
package objects

import (
	"fmt"
	"sort"
	"strings"
)

// Object is a single element of a matched sequence.
type Object struct {
	Type  string
	Value any
}

// Option is one alternative of an object class, e.g. `A` or `A=x` in `[A|B=x]`.
type Option struct {
	Type     string `json:"type"`
	Value    string `json:"value,omitempty"`
	HasValue bool   `json:"hasValue,omitempty"`
}

// Accepts reports whether the option matches the object.
func (o Option) Accepts(obj Object) bool {
	if o.Type != obj.Type {
		return false
	}
	if !o.HasValue {
		return true
	}
	return ValueEquals(obj.Value, o.Value)
}

// String returns the option in pattern syntax, without escaping.
func (o Option) String() string {
	if o.HasValue {
		return o.Type + "=" + o.Value
	}
	return o.Type
}

// ValueEquals compares an object value with an option value.
// A nil value never matches.
func ValueEquals(v any, want string) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val == want
	case fmt.Stringer:
		return val.String() == want
	default:
		return fmt.Sprint(val) == want
	}
}

// MatchOptions reports whether any option accepts the object.
func MatchOptions(obj Object, options []Option) bool {
	for i := range options {
		if options[i].Accepts(obj) {
			return true
		}
	}
	return false
}

// Span is a half-open range of input positions.
type Span struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Len returns the number of objects covered by the span.
func (s Span) Len() int {
	return s.To - s.From
}

// Groups maps named group names to the ranges they captured.
type Groups map[string]Span

// Names returns the captured group names in sorted order.
func (g Groups) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExpectationKind describes what kind of object was expected.
type ExpectationKind uint8

const (
	// OneOf expects an object accepted by one of the options.
	OneOf ExpectationKind = iota
	// NotOneOf expects an object accepted by none of the options.
	NotOneOf
	// Any expects any object.
	Any
)

// String returns the kind name used in diagnostics and fixtures.
func (k ExpectationKind) String() string {
	switch k {
	case OneOf:
		return "oneOf"
	case NotOneOf:
		return "notOneOf"
	case Any:
		return "any"
	default:
		return fmt.Sprintf("ExpectationKind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ExpectationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ExpectationKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "oneOf":
		*k = OneOf
	case "notOneOf":
		*k = NotOneOf
	case "any":
		*k = Any
	default:
		return fmt.Errorf("unknown expectation kind %q", text)
	}
	return nil
}

// Expectation describes an object that would have let the match continue.
// Step is the index of the instruction that needed it, Head the innermost
// named group around that instruction.
type Expectation struct {
	Kind    ExpectationKind `json:"type"`
	Step    int             `json:"step"`
	Head    string          `json:"head,omitempty"`
	Options []Option        `json:"options,omitempty"`
}

// String returns a short human readable description.
func (e Expectation) String() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if len(e.Options) > 0 {
		sb.WriteString(" [")
		for i, o := range e.Options {
			if i > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(o.String())
		}
		sb.WriteByte(']')
	}
	fmt.Fprintf(&sb, " at step %d", e.Step)
	if e.Head != "" {
		fmt.Fprintf(&sb, " in %s", e.Head)
	}
	return sb.String()
}

// Result is the outcome of a match call. A nil *Result means the input can
// never match. Finished is false when the input ended before the pattern
// could be satisfied; only Expectations is set then.
type Result struct {
	Finished     bool          `json:"finished"`
	Index        int           `json:"index"`
	Length       int           `json:"length"`
	Expectations []Expectation `json:"expectations"`
	Groups       Groups        `json:"groups,omitempty"`
}

// Span returns the matched range.
func (r *Result) Span() Span {
	return Span{From: r.Index, To: r.Index + r.Length}
}
