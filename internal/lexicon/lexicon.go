// Package lexicon turns text into object sequences, so patterns can be
// tried from the command line and from text fixtures.
//
// A lexicon is an ordered list of rules. At every offset the longest match
// wins; on a tie the earlier rule wins. Keyword rules match literal text and
// share one Aho-Corasick automaton, pattern rules are anchored regular
// expressions.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/coregex"

	"github.com/rangoo94/object-regexp/pkg/objects"
)

// Rule produces objects of one type.
type Rule struct {
	Type string `json:"type"`
	// Keyword is literal text. Exactly one of Keyword and Pattern is set.
	Keyword string `json:"keyword,omitempty"`
	// Pattern is a regular expression matched at the current offset.
	Pattern string `json:"pattern,omitempty"`
	// Value names a group of Pattern whose text becomes the object value.
	// The whole match is used when empty.
	Value string `json:"value,omitempty"`
	// Skip drops matched text instead of producing an object.
	Skip bool `json:"skip,omitempty"`
}

type pattern struct {
	rule  int
	re    *coregex.Regex
	group int
}

// Lexicon is a compiled rule list. It is safe for concurrent use.
type Lexicon struct {
	rules     []Rule
	keywords  *ahocorasick.Automaton
	byKeyword map[string]int
	patterns  []pattern
}

// New compiles rules.
func New(rules []Rule) (*Lexicon, error) {
	l := &Lexicon{
		rules:     append([]Rule(nil), rules...),
		byKeyword: map[string]int{},
	}

	var keywords []string
	for i, r := range rules {
		switch {
		case r.Type == "" && !r.Skip:
			return nil, fmt.Errorf("rule %d: type is required", i)
		case (r.Keyword == "") == (r.Pattern == ""):
			return nil, fmt.Errorf("rule %d (%s): exactly one of keyword and pattern is required", i, r.Type)
		case r.Keyword != "":
			if _, ok := l.byKeyword[r.Keyword]; !ok {
				l.byKeyword[r.Keyword] = i
				keywords = append(keywords, r.Keyword)
			}
		default:
			p, err := compilePattern(i, r)
			if err != nil {
				return nil, err
			}
			l.patterns = append(l.patterns, p)
		}
	}

	if len(keywords) > 0 {
		// Longer keywords first, so a leftmost match prefers them.
		sort.SliceStable(keywords, func(i, j int) bool {
			return len(keywords[i]) > len(keywords[j])
		})
		builder := ahocorasick.NewBuilder()
		for _, k := range keywords {
			builder.AddPattern([]byte(k))
		}
		auto, err := builder.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build keyword table: %w", err)
		}
		l.keywords = auto
	}
	return l, nil
}

func compilePattern(i int, r Rule) (pattern, error) {
	re, err := coregex.Compile(`^(?:` + r.Pattern + `)`)
	if err != nil {
		return pattern{}, fmt.Errorf("rule %d (%s): invalid pattern: %w", i, r.Type, err)
	}
	p := pattern{rule: i, re: re}
	if r.Value != "" {
		p.group = -1
		for j, name := range re.SubexpNames() {
			if j > 0 && name == r.Value {
				p.group = j
				break
			}
		}
		if p.group == -1 {
			return pattern{}, fmt.Errorf("rule %d (%s): pattern has no group %q", i, r.Type, r.Value)
		}
	}
	return p, nil
}

// Load reads a JSON array of rules.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return New(rules)
}

// Rules returns a copy of the rule list.
func (l *Lexicon) Rules() []Rule {
	return append([]Rule(nil), l.rules...)
}

// Tokenize splits src into objects.
func (l *Lexicon) Tokenize(src string) ([]objects.Object, error) {
	var out []objects.Object
	data := []byte(src)
	next := -1 // start of the next keyword match, or -1 when unknown
	var kw struct{ start, end int }

	for i := 0; i < len(src); {
		rule, end, value := -1, i, ""

		if l.keywords != nil && (next == -1 || next < i) {
			next = len(src)
			if m := l.keywords.Find(data, i); m != nil {
				next = m.Start
				kw.start, kw.end = m.Start, m.End
			}
		}
		if next == i {
			rule, end, value = l.byKeyword[src[kw.start:kw.end]], kw.end, src[kw.start:kw.end]
		}

		for _, p := range l.patterns {
			pend, pvalue, ok := p.match(src, i)
			if !ok || pend == i {
				continue
			}
			if pend > end || pend == end && p.rule < rule {
				rule, end, value = p.rule, pend, pvalue
			}
		}

		if rule == -1 || end == i {
			return nil, fmt.Errorf("unexpected %q at offset %d", preview(src[i:]), i)
		}
		if r := l.rules[rule]; !r.Skip {
			out = append(out, objects.Object{Type: r.Type, Value: value})
		}
		i = end
	}
	return out, nil
}

// match tries p at offset i and returns where the match ends.
func (p pattern) match(src string, i int) (int, string, bool) {
	rest := src[i:]
	if p.group == 0 {
		loc := p.re.FindStringIndex(rest)
		if loc == nil || loc[0] != 0 {
			return 0, "", false
		}
		return i + loc[1], rest[:loc[1]], true
	}
	loc := p.re.FindStringSubmatchIndex(rest)
	if loc == nil || loc[0] != 0 {
		return 0, "", false
	}
	value := ""
	if from := loc[2*p.group]; from >= 0 {
		value = rest[from:loc[2*p.group+1]]
	}
	return i + loc[1], value, true
}

func preview(s string) string {
	for i := range s {
		if i >= 10 {
			return s[:i]
		}
	}
	return s
}
