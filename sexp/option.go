package sexp

// Option is a value that may be absent. Annotating a Message argument as
// Option[T] makes the argument contribute only when the option holds a value.
type Option[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Option[T] { return Option[T]{value: v, ok: true} }

func None[T any]() Option[T] { return Option[T]{} }

// OptionOf returns None for a nil pointer and Some of the pointee otherwise.
func OptionOf[T any](p *T) Option[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

func (o Option[T]) IsSome() bool { return o.ok }

// OfOption converts an option outside of a Message argument list: None is
// the empty list and Some(v) is (v') where v' is conv(v).
func OfOption[T any](conv func(T) Sexp) func(Option[T]) Sexp {
	return func(o Option[T]) Sexp {
		if v, ok := o.Get(); ok {
			return List{conv(v)}
		}
		return List{}
	}
}
