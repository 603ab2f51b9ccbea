package a

import (
	"github.com/chazu/sexpmsg"
	"github.com/chazu/sexpmsg/sexp"
)

type point struct{ x, y int }

func (p point) Sexp() sexp.Sexp { return sexp.List{} }

func fine(n int, name string, p point) {
	_ = sexpmsg.Message("request", sexpmsg.Label("n", n), name, sexpmsg.As[point](p), sexpmsg.Here())
	_ = sexpmsg.Message("outer", sexpmsg.As[sexp.Sexp](sexpmsg.Message("inner", n)))
	_ = sexpmsg.Here()
}

func optional(n int) {
	_ = sexpmsg.Message("x", sexpmsg.OptLabel("n", n)) // want `OptLabel is reserved for optional parameters`
}

func badLabel(n int, name string) {
	_ = sexpmsg.Message(sexpmsg.Label(name, n)) // want `label name must be a string literal`
}

func badAnnotation(c chan int) {
	_ = sexpmsg.Message("c", sexpmsg.As[chan int](c)) // want `no conversion for type chan int`
}

func stray(n int) int {
	return sexpmsg.Label("n", n) + sexpmsg.As[int](n) // want `Label outside a Message call has no effect` `As outside a Message call has no effect`
}
