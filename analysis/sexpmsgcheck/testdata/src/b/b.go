package b

import (
	msg "github.com/chazu/sexpmsg"
	"github.com/chazu/sexpmsg/sexp"
)

func renderChan(c chan int) sexp.Sexp { return sexp.List{} }

func site(c chan int) {
	_ = msg.Message("c", msg.As[chan int](c))
	_ = msg.Message(msg.OptLabel("c", c)) // want `OptLabel is reserved`
}
