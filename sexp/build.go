package sexp

// Cons returns tail with head in front of it. Expanded messages build their
// argument list from right to left with Cons and ConsSome.
func Cons(head Sexp, tail []Sexp) []Sexp {
	out := make([]Sexp, 0, len(tail)+1)
	out = append(out, head)
	return append(out, tail...)
}

// ConsSome is Cons for an optional argument: when o holds a value v it
// prepends wrap(v), otherwise tail is returned as is.
func ConsSome[T any](o Option[T], wrap func(T) Sexp, tail []Sexp) []Sexp {
	if v, ok := o.Get(); ok {
		return Cons(wrap(v), tail)
	}
	return tail
}

// Collapse is the runtime form of the single-value rule: exactly one item is
// returned bare, any other count is returned as a List.
func Collapse(items []Sexp) Sexp {
	if len(items) == 1 {
		return items[0]
	}
	if items == nil {
		return List{}
	}
	return List(items)
}
