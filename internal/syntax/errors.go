package syntax

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// contextSize is the number of characters of source shown on each side of
// the error position.
const contextSize = 45

// Error messages reported by the lexer and parser.
const (
	ErrUnknownToken          = "Unknown token"
	ErrQuantifierWithoutNode = "Can't apply quantifier without left-side node"
	ErrUnexpectedQuantifier  = "Unexpected quantifier"
	ErrUnexpectedGroupClose  = "Unexpected group closing"
	ErrUnclosedGroup         = "Unclosed group"
	ErrNamedGroupPlacement   = "NamedGroupStart should be after group opening"
	ErrNamedGroupRepeated    = "NamedGroupStart should be only after group opening"
	ErrInvalidRange          = "Invalid repetition range"
)

// Error is a positioned syntax error. Line and Column are 1-based.
type Error struct {
	Message string
	Offset  int
	Line    int
	Column  int
	// Before and After hold up to 45 characters of source around Offset.
	Before string
	After  string
}

func newError(src string, offset int, message string) *Error {
	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	lastLine := before
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		lastLine = before[i+1:]
	}

	return &Error{
		Message: message,
		Offset:  offset,
		Line:    line,
		Column:  utf8.RuneCountInString(lastLine) + 1,
		Before:  lastRunes(flatten(before), contextSize),
		After:   firstRunes(flatten(src[offset:]), contextSize),
	}
}

// Error renders the message, the source context and a caret under the
// offending position.
func (e *Error) Error() string {
	return fmt.Sprintf("Syntax error: %s (line: %d, column: %d)\n%s%s\n%s^",
		e.Message, e.Line, e.Column,
		e.Before, e.After,
		strings.Repeat(" ", utf8.RuneCountInString(e.Before)))
}

var flattener = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")

func flatten(s string) string {
	return flattener.Replace(s)
}

func lastRunes(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	for skip := count - n; skip > 0; skip-- {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	return s
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
