package macro

import (
	"fmt"
	"strings"
	"unicode"
)

// SegmentType indicates the type of segment in a macro template.
type SegmentType int

const (
	// SegmentLiteral represents literal text (no group reference).
	SegmentLiteral SegmentType = iota
	// SegmentFullMatch represents a reference to the full match ($0).
	SegmentFullMatch
	// SegmentIndex represents a reference to a group by index ($1, $2, etc.).
	SegmentIndex
	// SegmentName represents a reference to a group by name ($name, ${name}).
	SegmentName
)

// Segment represents a parsed segment of a macro template.
type Segment struct {
	Type    SegmentType
	Literal string // For SegmentLiteral: the literal text
	Index   int    // For SegmentIndex: 1-based index; for SegmentFullMatch: 0
	Name    string // For SegmentName: the group name
}

// Template represents a fully parsed macro template.
type Template struct {
	Original string
	Segments []Segment
}

// ParseTemplate parses the `to` side of a macro into segments.
// Template syntax:
//   - $0 or ${0}: full match
//   - $1, $2, ..., $99 or ${1}, ${2}: group by index
//   - $name or ${name}: group by name
//   - $$: literal dollar sign
//   - Everything else: literal text
//
// References are not checked against the `from` expression; use Validate.
func ParseTemplate(template string) (*Template, error) {
	result := &Template{
		Original: template,
		Segments: make([]Segment, 0),
	}

	i := 0
	literalStart := 0

	for i < len(template) {
		if template[i] != '$' {
			i++
			continue
		}

		// Found a $, flush any accumulated literal
		if i > literalStart {
			result.Segments = append(result.Segments, Segment{
				Type:    SegmentLiteral,
				Literal: template[literalStart:i],
			})
		}

		if i+1 >= len(template) {
			// $ at end of string - treat as literal
			result.Segments = append(result.Segments, Segment{Type: SegmentLiteral, Literal: "$"})
			i++
			literalStart = i
			continue
		}

		next := template[i+1]

		switch {
		case next == '$':
			result.Segments = append(result.Segments, Segment{Type: SegmentLiteral, Literal: "$"})
			i += 2

		case next == '{':
			seg, consumed, err := parseBracedRef(template[i:])
			if err != nil {
				return nil, fmt.Errorf("at position %d: %w", i, err)
			}
			result.Segments = append(result.Segments, seg)
			i += consumed

		case next == '0':
			result.Segments = append(result.Segments, Segment{Type: SegmentFullMatch})
			i += 2

		case next >= '1' && next <= '9':
			seg, consumed := parseIndexedRef(template[i:])
			result.Segments = append(result.Segments, seg)
			i += consumed

		case isNameStart(rune(next)):
			seg, consumed := parseNamedRef(template[i:])
			result.Segments = append(result.Segments, seg)
			i += consumed

		default:
			// A lone $ followed by something that's not a valid reference
			result.Segments = append(result.Segments, Segment{Type: SegmentLiteral, Literal: "$"})
			i++
		}
		literalStart = i
	}

	// Flush any remaining literal
	if i > literalStart {
		result.Segments = append(result.Segments, Segment{
			Type:    SegmentLiteral,
			Literal: template[literalStart:i],
		})
	}

	return result, nil
}

// parseBracedRef parses a ${...} reference starting at s[0]='$', s[1]='{'.
// Returns the segment and the number of bytes consumed.
func parseBracedRef(s string) (Segment, int, error) {
	closeIdx := strings.Index(s, "}")
	if closeIdx == -1 {
		return Segment{}, 0, fmt.Errorf("unclosed ${")
	}

	content := s[2:closeIdx]
	if len(content) == 0 {
		return Segment{}, 0, fmt.Errorf("empty ${}")
	}

	if content[0] >= '0' && content[0] <= '9' {
		index := 0
		for j := 0; j < len(content); j++ {
			if content[j] < '0' || content[j] > '9' {
				return Segment{}, 0, fmt.Errorf("invalid group reference ${%s}: mixed digits and non-digits", content)
			}
			index = index*10 + int(content[j]-'0')
		}

		if index == 0 {
			return Segment{Type: SegmentFullMatch}, closeIdx + 1, nil
		}
		return Segment{Type: SegmentIndex, Index: index}, closeIdx + 1, nil
	}

	if !isValidIdentifier(content) {
		return Segment{}, 0, fmt.Errorf("invalid group name ${%s}", content)
	}

	return Segment{Type: SegmentName, Name: content}, closeIdx + 1, nil
}

// parseIndexedRef parses $N or $NN where N is 1-9 and NN is 10-99.
func parseIndexedRef(s string) (Segment, int) {
	index := int(s[1] - '0')
	consumed := 2

	if len(s) > 2 && s[2] >= '0' && s[2] <= '9' {
		index = index*10 + int(s[2]-'0')
		consumed = 3
	}

	return Segment{Type: SegmentIndex, Index: index}, consumed
}

// parseNamedRef parses $name where name is a valid identifier.
func parseNamedRef(s string) (Segment, int) {
	end := 2
	for end < len(s) && isNameContinue(rune(s[end])) {
		end++
	}
	return Segment{Type: SegmentName, Name: s[1:end]}, end
}

// isNameStart returns true if r can start an identifier (letter or underscore).
func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isNameContinue returns true if r can continue an identifier (letter, digit, or underscore).
func isNameContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isValidIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		if i == 0 && !isNameStart(r) || i > 0 && !isNameContinue(r) {
			return false
		}
	}
	return true
}

// Resolve checks every reference against the groups of the `from`
// expression and returns a template that refers to groups by index only.
// names is the expression's SubexpNames: names[0] is the full match and
// unnamed groups are empty.
func (t *Template) Resolve(names []string) (*Template, error) {
	resolved := &Template{
		Original: t.Original,
		Segments: make([]Segment, len(t.Segments)),
	}
	groups := len(names) - 1

	for i, seg := range t.Segments {
		switch seg.Type {
		case SegmentIndex:
			if seg.Index < 1 || seg.Index > groups {
				return nil, fmt.Errorf("group %d does not exist (expression has %d groups)", seg.Index, groups)
			}
		case SegmentName:
			index := -1
			for j := 1; j < len(names); j++ {
				if names[j] == seg.Name {
					index = j
					break
				}
			}
			if index == -1 {
				return nil, fmt.Errorf("group %q does not exist in expression", seg.Name)
			}
			seg = Segment{Type: SegmentIndex, Index: index}
		}
		resolved.Segments[i] = seg
	}

	return resolved, nil
}

// Expand appends the template to sb for one match of src. match holds
// index pairs as returned by FindAllStringSubmatchIndex; unmatched groups
// expand to nothing.
func (t *Template) Expand(sb *strings.Builder, src string, match []int) {
	for _, seg := range t.Segments {
		switch seg.Type {
		case SegmentLiteral:
			sb.WriteString(seg.Literal)
		case SegmentFullMatch:
			sb.WriteString(src[match[0]:match[1]])
		case SegmentIndex:
			if 2*seg.Index+1 >= len(match) {
				continue
			}
			from, to := match[2*seg.Index], match[2*seg.Index+1]
			if from >= 0 {
				sb.WriteString(src[from:to])
			}
		}
	}
}
