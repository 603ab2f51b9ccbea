package sexp

type Sexp interface{ sexp() }

type List []Sexp

func (List) sexp() {}

type Option[T any] struct {
	value T
	ok    bool
}
