package sexp

import (
	"fmt"
	"strconv"
	"unicode"
)

// Parse reads a single value in the text form produced by String.
// Comments run from ';' to the end of the line.
func Parse(input string) (Sexp, error) {
	p := &parser{lexer: newLexer(input)}
	p.nextToken()

	result, err := p.parseDatum()
	if err != nil {
		return nil, err
	}
	if p.current.typ != tokenEOF {
		return nil, fmt.Errorf("offset %d: expected EOF but got %s", p.current.pos, p.current.typ)
	}
	return result, nil
}

type parser struct {
	lexer   *lexer
	current token
}

func (p *parser) nextToken() {
	p.current = p.lexer.nextToken()
}

func (p *parser) parseDatum() (Sexp, error) {
	switch p.current.typ {
	case tokenAtom:
		atom := Atom(p.current.value)
		p.nextToken()
		return atom, nil
	case tokenLParen:
		return p.parseList()
	case tokenError:
		return nil, fmt.Errorf("offset %d: %s", p.current.pos, p.current.value)
	default:
		return nil, fmt.Errorf("offset %d: unexpected %s", p.current.pos, p.current.typ)
	}
}

func (p *parser) parseList() (Sexp, error) {
	items := List{}
	p.nextToken() // consume '('

	for p.current.typ != tokenRParen {
		if p.current.typ == tokenEOF {
			return nil, fmt.Errorf("offset %d: expected ')' but got EOF", p.current.pos)
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	p.nextToken() // consume ')'

	return items, nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenAtom
	tokenLParen
	tokenRParen
	tokenError
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenAtom:
		return "atom"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenError:
		return "error"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	typ   tokenType
	value string
	pos   int
}

type lexer struct {
	input []rune
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: []rune(input)}
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) nextToken() token {
	for {
		for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
			l.pos++
		}
		if l.peek() != ';' {
			break
		}
		for l.pos < len(l.input) && l.input[l.pos] != '\n' {
			l.pos++
		}
	}

	start := l.pos
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, pos: start}
	}

	switch l.input[l.pos] {
	case '(':
		l.pos++
		return token{typ: tokenLParen, value: "(", pos: start}
	case ')':
		l.pos++
		return token{typ: tokenRParen, value: ")", pos: start}
	case '"':
		return l.readQuoted()
	}

	for l.pos < len(l.input) && isBareChar(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		l.pos++
		return token{typ: tokenError, value: fmt.Sprintf("unexpected character %q", l.input[start]), pos: start}
	}
	return token{typ: tokenAtom, value: string(l.input[start:l.pos]), pos: start}
}

func (l *lexer) readQuoted() token {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) && l.input[l.pos] != '"' {
		if l.input[l.pos] == '\\' {
			l.pos++
		}
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{typ: tokenError, value: "unterminated string", pos: start}
	}
	l.pos++ // closing quote

	s, err := strconv.Unquote(string(l.input[start:l.pos]))
	if err != nil {
		return token{typ: tokenError, value: fmt.Sprintf("invalid quoted atom: %v", err), pos: start}
	}
	return token{typ: tokenAtom, value: s, pos: start}
}

func isBareChar(r rune) bool {
	switch r {
	case '(', ')', '"', ';', '\\':
		return false
	}
	return !unicode.IsSpace(r) && !unicode.IsControl(r)
}
