// Package macro expands user rules in a pattern before it is parsed.
//
// A rule replaces every match of a regular expression with a template that
// may refer to the match and its groups. Rules run one after another, each
// on the output of the previous one.
package macro

import (
	"fmt"
	"strings"

	"github.com/coregx/coregex"
)

// Rule is one textual substitution.
type Rule struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// String returns the rule in the CLI's from=>to form.
func (r Rule) String() string {
	return r.From + "=>" + r.To
}

// ParseRule parses the CLI's from=>to form.
func ParseRule(s string) (Rule, error) {
	from, to, ok := strings.Cut(s, "=>")
	if !ok {
		return Rule{}, fmt.Errorf("macro %q: expected from=>to", s)
	}
	return Rule{From: from, To: to}, nil
}

type compiled struct {
	re       *coregex.Regex
	template *Template
}

// Set is a validated, ordered list of rules.
type Set struct {
	rules []compiled
}

// Compile validates rules and prepares them for expansion.
func Compile(rules []Rule) (*Set, error) {
	s := &Set{rules: make([]compiled, len(rules))}
	for i, r := range rules {
		if r.From == "" || r.To == "" {
			return nil, fmt.Errorf("macro %d: `from` and `to` are required", i)
		}
		re, err := coregex.Compile(r.From)
		if err != nil {
			return nil, fmt.Errorf("macro %d: invalid expression %q: %w", i, r.From, err)
		}
		parsed, err := ParseTemplate(r.To)
		if err != nil {
			return nil, fmt.Errorf("macro %d: invalid template %q: %w", i, r.To, err)
		}
		resolved, err := parsed.Resolve(re.SubexpNames())
		if err != nil {
			return nil, fmt.Errorf("macro %d: %w", i, err)
		}
		s.rules[i] = compiled{re: re, template: resolved}
	}
	return s, nil
}

// Len returns the number of rules.
func (s *Set) Len() int {
	return len(s.rules)
}

// Apply runs every rule on expression in order.
func (s *Set) Apply(expression string) string {
	for _, r := range s.rules {
		expression = r.apply(expression)
	}
	return expression
}

func (c compiled) apply(src string) string {
	matches := c.re.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(src[last:m[0]])
		c.template.Expand(&sb, src, m)
		last = m[1]
	}
	sb.WriteString(src[last:])
	return sb.String()
}

// Apply validates rules and runs them on expression.
func Apply(expression string, rules []Rule) (string, error) {
	s, err := Compile(rules)
	if err != nil {
		return "", err
	}
	return s.Apply(expression), nil
}
