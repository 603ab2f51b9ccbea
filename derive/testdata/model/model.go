package model

import "github.com/chazu/sexpmsg/sexp"

type Job struct {
	ID       string `sexp:"id"`
	Attempts int    `sexp:"attempts,omitempty"`
	Owner    *User
	internal bool
}

type User struct {
	Name string
}

// Token is rendered by hand.
type Token struct{ Value string }

func (t Token) Sexp() sexp.Sexp { return sexp.Atom("<redacted>") }

type state int
