// Package sexp is the runtime half of sexpmsg: the S-expression value that
// expanded Message calls build, the conversions they apply to each argument
// and the helpers that assemble optional arguments at runtime.
package sexp

import (
	"strconv"
	"strings"
	"unicode"
)

// Sexp is either an Atom or a List.
type Sexp interface {
	String() string
	sexp() // marker method
}

// Atom is an opaque string leaf.
type Atom string

// List is an ordered sequence of values.
type List []Sexp

func (Atom) sexp() {}
func (List) sexp() {}

// String renders the atom, quoting it when it would not read back as a
// single bare atom.
func (a Atom) String() string {
	if needsQuote(string(a)) {
		return strconv.Quote(string(a))
	}
	return string(a)
}

// String renders the list in canonical text form: (a b c).
func (l List) String() string {
	var b strings.Builder
	l.write(&b)
	return b.String()
}

func (l List) write(b *strings.Builder) {
	b.WriteByte('(')
	for i, item := range l {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch v := item.(type) {
		case List:
			v.write(b)
		case nil:
			b.WriteString("()")
		default:
			b.WriteString(v.String())
		}
	}
	b.WriteByte(')')
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		switch r {
		case '(', ')', '"', ';', '\\':
			return true
		}
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// Equal reports whether a and b are structurally identical. A nil value is
// equal to the empty list.
func Equal(a, b Sexp) bool {
	a, b = normalize(a), normalize(b)
	switch av := a.(type) {
	case Atom:
		bv, ok := b.(Atom)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func normalize(s Sexp) Sexp {
	if s == nil {
		return List{}
	}
	if l, ok := s.(List); ok && l == nil {
		return List{}
	}
	return s
}
