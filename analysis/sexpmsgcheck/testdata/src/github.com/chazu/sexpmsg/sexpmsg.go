package sexpmsg

import "github.com/chazu/sexpmsg/sexp"

func Message(args ...any) sexp.Sexp { panic("unexpanded") }

func Label[T any](name string, v T) T { return v }

func OptLabel[T any](name string, v T) T { return v }

func As[T any](v T) T { return v }

func Here() string { return "" }
