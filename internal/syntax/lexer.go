package syntax

import (
	"strconv"
	"strings"

	"github.com/rangoo94/object-regexp/pkg/objects"
)

// TokenKind identifies a lexical token.
type TokenKind uint8

const (
	TokenWhitespace TokenKind = iota
	TokenObject
	TokenNegatedObject
	TokenAnyObject
	TokenEndIndex
	TokenGroupOpen
	TokenAtomicGroupOpen
	TokenGroupClose
	TokenAlternative
	TokenNamedGroupStart
	TokenQuantifier
)

// Token is a lexed piece of pattern text. Offset is the byte offset of the
// token in the source.
type Token struct {
	Kind    TokenKind
	Text    string
	Offset  int
	Options []objects.Option
	Name    string
	// Quantifier, Min, Max and Possessive describe TokenQuantifier tokens.
	Quantifier Kind
	Min, Max   int
	Possessive bool
}

// Lex splits a pattern into tokens.
func Lex(src string) ([]Token, error) {
	l := &lexer{src: src}
	for l.pos < len(src) {
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

type lexer struct {
	src    string
	pos    int
	tokens []Token
}

func (l *lexer) emit(tok Token, end int) {
	tok.Offset = l.pos
	tok.Text = l.src[l.pos:end]
	l.tokens = append(l.tokens, tok)
	l.pos = end
}

func (l *lexer) peek(i int) byte {
	if l.pos+i < len(l.src) {
		return l.src[l.pos+i]
	}
	return 0
}

func (l *lexer) fail(message string) error {
	return newError(l.src, l.pos, message)
}

func (l *lexer) next() error {
	switch c := l.peek(0); c {
	case ' ', '\t', '\n', '\r':
		end := l.pos
		for end < len(l.src) && isSpace(l.src[end]) {
			end++
		}
		l.emit(Token{Kind: TokenWhitespace}, end)
	case '[':
		return l.lexObject()
	case '.':
		l.emit(Token{Kind: TokenAnyObject}, l.pos+1)
	case '$':
		l.emit(Token{Kind: TokenEndIndex}, l.pos+1)
	case '(':
		if l.peek(1) == '?' && l.peek(2) == '>' {
			l.emit(Token{Kind: TokenAtomicGroupOpen}, l.pos+3)
		} else {
			l.emit(Token{Kind: TokenGroupOpen}, l.pos+1)
		}
	case ')':
		l.emit(Token{Kind: TokenGroupClose}, l.pos+1)
	case '|':
		l.emit(Token{Kind: TokenAlternative}, l.pos+1)
	case '?':
		if l.peek(1) == '<' {
			return l.lexGroupName()
		}
		l.quantifier(Optional, OptionalLazy, OptionalPossessive)
	case '*':
		l.quantifier(AnyGreedy, AnyLazy, AnyPossessive)
	case '+':
		l.quantifier(ManyGreedy, ManyLazy, ManyPossessive)
	case '{':
		return l.lexAmount()
	default:
		return l.fail(ErrUnknownToken)
	}
	return nil
}

// quantifier emits a one-character quantifier or its two-character lazy or
// possessive variant.
func (l *lexer) quantifier(greedy, lazy, possessive Kind) {
	switch l.peek(1) {
	case '?':
		l.emit(Token{Kind: TokenQuantifier, Quantifier: lazy}, l.pos+2)
	case '+':
		l.emit(Token{Kind: TokenQuantifier, Quantifier: possessive}, l.pos+2)
	default:
		l.emit(Token{Kind: TokenQuantifier, Quantifier: greedy}, l.pos+1)
	}
}

func (l *lexer) lexGroupName() error {
	end := l.pos + 2
	for end < len(l.src) && isNameChar(l.src[end]) {
		end++
	}
	if end == l.pos+2 || end >= len(l.src) || l.src[end] != '>' {
		return l.fail(ErrUnknownToken)
	}
	l.emit(Token{Kind: TokenNamedGroupStart, Name: l.src[l.pos+2 : end]}, end+1)
	return nil
}

// lexAmount reads {n}, {n,}, {n,m} and {,m}, optionally followed by '+'.
func (l *lexer) lexAmount() error {
	i := l.pos + 1
	readInt := func() (int, bool) {
		start := i
		for i < len(l.src) && l.src[i] >= '0' && l.src[i] <= '9' {
			i++
		}
		if start == i {
			return 0, false
		}
		n, err := strconv.Atoi(l.src[start:i])
		return n, err == nil
	}

	tok := Token{Kind: TokenQuantifier}
	from, hasFrom := readInt()
	switch {
	case i < len(l.src) && l.src[i] == '}':
		if !hasFrom {
			return l.fail(ErrUnknownToken)
		}
		tok.Quantifier, tok.Min, tok.Max = AmountExact, from, from
	case i < len(l.src) && l.src[i] == ',':
		i++
		to, hasTo := readInt()
		if i >= len(l.src) || l.src[i] != '}' || (!hasFrom && !hasTo) {
			return l.fail(ErrUnknownToken)
		}
		switch {
		case !hasTo:
			tok.Quantifier, tok.Min = AmountAtLeast, from
		case !hasFrom:
			tok.Quantifier, tok.Max = AmountAtMost, to
		default:
			if to < from {
				return l.fail(ErrInvalidRange)
			}
			tok.Quantifier, tok.Min, tok.Max = AmountBetween, from, to
		}
	default:
		return l.fail(ErrUnknownToken)
	}
	i++ // '}'

	if i < len(l.src) && l.src[i] == '+' {
		tok.Possessive = true
		i++
	}
	l.emit(tok, i)
	return nil
}

// lexObject reads [opts] and [^opts] classes.
func (l *lexer) lexObject() error {
	i := l.pos + 1
	tok := Token{Kind: TokenObject}
	if i < len(l.src) && l.src[i] == '^' {
		tok.Kind = TokenNegatedObject
		i++
	}

	for {
		start := i
		for i < len(l.src) && isNameChar(l.src[i]) {
			i++
		}
		if start == i {
			return l.fail(ErrUnknownToken)
		}
		opt := objects.Option{Type: l.src[start:i]}

		if i < len(l.src) && l.src[i] == '=' {
			i++
			var value strings.Builder
			for i < len(l.src) && l.src[i] != '|' && l.src[i] != ']' {
				if l.src[i] == '\\' && i+1 < len(l.src) {
					i++
				}
				value.WriteByte(l.src[i])
				i++
			}
			opt.Value, opt.HasValue = value.String(), true
		}
		tok.Options = append(tok.Options, opt)

		if i >= len(l.src) {
			return l.fail(ErrUnknownToken)
		}
		if l.src[i] == ']' {
			l.emit(tok, i+1)
			return nil
		}
		if l.src[i] != '|' {
			return l.fail(ErrUnknownToken)
		}
		i++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}
